package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/feral-file/ff-social/internal/logger"
)

func setupTestLogger(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := logger.SetLogger(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestInitialize(t *testing.T) {
	t.Cleanup(logger.SetLogger(zap.NewNop()))

	require.NoError(t, logger.Initialize(logger.Config{Debug: true, Tags: map[string]string{"network": "testnet"}}))
	logger.Flush(0)
}

func TestInitialize_InvalidDSN(t *testing.T) {
	t.Cleanup(logger.SetLogger(zap.NewNop()))

	assert.Error(t, logger.Initialize(logger.Config{SentryDSN: "not a dsn"}))
}

func TestOperationFields(t *testing.T) {
	logs := setupTestLogger(t)

	ctx := logger.WithOperation(context.Background(), logger.OperationInfo{
		OperationID: "op-1",
		Action:      "follow",
		Actor:       "0xabc",
	})
	logger.InfoOp(ctx, "Submitted", zap.String("digest", "D1"))
	logger.ErrorOp(ctx, errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "op-1", fields["operation_id"])
	assert.Equal(t, "follow", fields["action"])
	assert.Equal(t, "0xabc", fields["actor"])
	assert.Equal(t, "D1", fields["digest"])
	assert.Equal(t, "boom", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestFromOperation_WithoutOperation(t *testing.T) {
	logs := setupTestLogger(t)

	logger.WarnOp(context.Background(), "No operation")

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "operation_id")
}
