package logger

import (
	"context"

	"go.uber.org/zap"
)

// OperationInfo identifies a single state-changing action (publish, follow, ...)
// so that every log line and sentry event emitted while it runs can be correlated.
type OperationInfo struct {
	OperationID string
	Action      string
	Actor       string
}

type operationKey struct{}

// WithOperation returns a context carrying the operation info
func WithOperation(ctx context.Context, info OperationInfo) context.Context {
	return context.WithValue(ctx, operationKey{}, info)
}

// OperationFromContext returns the operation info stored in ctx, if any
func OperationFromContext(ctx context.Context) (OperationInfo, bool) {
	if ctx == nil {
		return OperationInfo{}, false
	}
	info, ok := ctx.Value(operationKey{}).(OperationInfo)
	return info, ok
}

// FromOperation returns a context logger tagged with the operation info from ctx.
// Falls back to FromContext when no operation is attached.
func FromOperation(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	info, ok := OperationFromContext(ctx)
	if !ok {
		return l
	}
	return l.With(
		zap.String("operation_id", info.OperationID),
		zap.String("action", info.Action),
		zap.String("actor", info.Actor),
	)
}

// InfoOp logs an info message with operation context
func InfoOp(ctx context.Context, msg string, fields ...zap.Field) {
	FromOperation(ctx).Info(msg, fields...)
}

// WarnOp logs a warning message with operation context
func WarnOp(ctx context.Context, msg string, fields ...zap.Field) {
	FromOperation(ctx).Warn(msg, fields...)
}

// ErrorOp logs an error message with operation context
func ErrorOp(ctx context.Context, err error, fields ...zap.Field) {
	if err == nil {
		FromOperation(ctx).Error("error occurred", fields...)
		return
	}
	FromOperation(ctx).Error(err.Error(), fields...)
}
