package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	f := New(Options{UserAgent: "test-agent", PerHostRPS: 1000})
	body, status, err := f.Get(context.Background(), srv.URL, map[string]string{"X-Extra": "yes"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", string(body))
}

func TestGet_Retries429ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(Options{MaxAttempts: 3, PerHostRPS: 1000})
	body, status, err := f.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_429RetriesExhaust(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := New(Options{MaxAttempts: 2, PerHostRPS: 1000})
	_, status, err := f.Get(context.Background(), srv.URL, nil)

	assert.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_Non429NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := New(Options{MaxAttempts: 3, PerHostRPS: 1000})
	_, status, err := f.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err, "non-429 statuses are returned to the caller, not retried")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	f := New(Options{PerHostRPS: 1000})
	status, err := f.Head(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, status)
}
