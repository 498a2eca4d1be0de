package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "chemcheck-go/")

	for _, bad := range []string{"", "ftp://host", "no-scheme"} {
		_, err := NewClient(bad)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), bad)
	}
}

func TestDo_DecodesEnvelopeData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ping", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"success":true,"data":{"value":"pong"},"request_id":"r1","timestamp":"2024-01-01T00:00:00Z"}`))
	})
	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, c.get(context.Background(), "ping", &out))
	assert.Equal(t, "pong", out.Value)
}

func TestDo_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"code":"CHEM_006","message":"submission not found","details":{"detail":"abc"}},"request_id":"srv-1"}`))
	})
	err := c.get(context.Background(), "/submissions/abc", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "CHEM_006", apiErr.Code)
	assert.Equal(t, "submission not found", apiErr.Message)
	assert.Equal(t, "abc", apiErr.Detail)
	assert.Equal(t, "srv-1", apiErr.RequestID)
}

func TestDo_PlainTextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryMax(0))
	err := c.get(context.Background(), "/x", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestDo_Retries(t *testing.T) {
	tests := []struct {
		name      string
		failures  int32
		status    int
		retryMax  int
		wantCalls int32
		wantErr   bool
	}{
		{"5xx recovers", 2, http.StatusServiceUnavailable, 3, 3, false},
		{"5xx exhausted", 10, http.StatusInternalServerError, 2, 3, true},
		{"4xx not retried", 10, http.StatusBadRequest, 3, 1, true},
		{"429 without Retry-After not retried", 10, http.StatusTooManyRequests, 3, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				w.WriteHeader(http.StatusOK)
			}, WithRetryMax(tt.retryMax))

			err := c.get(context.Background(), "/x", nil)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestDo_RetryKeepsRequestIDAndBody(t *testing.T) {
	var (
		mu     sync.Mutex
		ids    []string
		bodies []int64
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ids = append(ids, r.Header.Get("X-Request-ID"))
		bodies = append(bodies, r.ContentLength)
		n := len(ids)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.post(context.Background(), "/balance", map[string]string{"equation": "H2 + O2 -> H2O"}, nil))

	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, bodies[0], bodies[1])
	assert.Positive(t, bodies[1])
}

func TestDo_RateLimitedWithRetryAfter(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	start := time.Now()
	require.NoError(t, c.get(context.Background(), "/x", nil))
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestDo_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	logger := &testLogger{}
	c, err := NewClient(server.URL, WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond), WithLogger(logger))
	require.NoError(t, err)
	assert.Error(t, c.get(context.Background(), "/x", nil))
	assert.NotEmpty(t, logger.msgs)
}

func TestDo_Context(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
		assert.ErrorIs(t, c.get(ctx, "/x", nil), context.Canceled)
	})
	t.Run("deadline", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, c.get(ctx, "/x", nil), context.DeadlineExceeded)
	})
}

func TestAPIError_Error(t *testing.T) {
	e := &APIError{Code: "CHEM_001", StatusCode: 400, Message: "parse failed", RequestID: "id"}
	assert.Equal(t, "chemcheck: CHEM_001 (HTTP 400): parse failed [request_id=id]", e.Error())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())
}
