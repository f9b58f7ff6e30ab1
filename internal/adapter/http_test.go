package adapter_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-social/internal/adapter"
)

var fastRetry = adapter.RetryConfig{
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxElapsedTime:  time.Second,
}

func TestPostWithHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer server.Close()

	client := adapter.NewHTTPClientWithRetry(time.Second, fastRetry)
	headers := http.Header{}
	headers.Set("Authorization", "Bearer k")

	resp, err := client.PostWithHeaders(t.Context(), server.URL, headers, []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", string(resp))
}

func TestPost_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer server.Close()

	client := adapter.NewHTTPClientWithRetry(time.Second, fastRetry)

	resp, err := client.Post(t.Context(), server.URL, "application/json", []byte("payload"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
	assert.Equal(t, int32(3), calls.Load())
}

func TestPost_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("declined"))
	}))
	defer server.Close()

	client := adapter.NewHTTPClientWithRetry(time.Second, fastRetry)

	_, err := client.Post(t.Context(), server.URL, "application/json", nil)
	var statusErr *adapter.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "declined", statusErr.Body)
	assert.Equal(t, int32(1), calls.Load())
}
