package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, mutate func(*RouterConfig)) *gin.Engine {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "routertest"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	svc := checker.NewService(checker.Config{}, nil, checker.WithMetrics(metrics))
	cfg := RouterConfig{
		CheckHandler:  handlers.NewCheckHandler(svc, nil),
		HealthHandler: handlers.NewHealthHandler("test"),
		Logger:        logging.NewNopLogger(),
		Metrics:       metrics,
		Collector:     collector,
		Logging:       middleware.DefaultLoggingConfig(),
		MaxBodySize:   1 << 10,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewRouter(cfg)
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Routes(t *testing.T) {
	r := testRouter(t, nil)

	tests := []struct {
		method, path, body string
		code               int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodGet, "/healthz/detail", "", http.StatusOK},
		{http.MethodPost, "/api/v1/parse", `{"text":"H2O"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/check", `{"target":"H2O","test":"H2O"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/balance", `{"equation":"H2 + O2 -> H2O"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/check", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := testRouter(t, nil)
	serve(r, http.MethodPost, "/api/v1/check", `{"target":"H2O","test":"H2O"}`)

	w := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `routertest_http_requests_total{method="POST",path="/api/v1/check",status="200"} 1`)
}

func TestRouter_BodyLimit(t *testing.T) {
	r := testRouter(t, nil)
	big := `{"text":"` + strings.Repeat("H", 2048) + `"}`

	w := serve(r, http.MethodPost, "/api/v1/parse", big)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RateLimitOnlyAppliesToAPI(t *testing.T) {
	limiter := middleware.NewTokenBucketLimiter(0.001, 1, 0)
	defer limiter.Stop()
	r := testRouter(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = limiter
		cfg.RateLimit = middleware.DefaultRateLimitConfig()
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/v1/parse", `{"text":"H2O"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/api/v1/parse", `{"text":"H2O"}`).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)
}

func TestRouter_CORS(t *testing.T) {
	r := testRouter(t, func(cfg *RouterConfig) {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = []string{"https://tutor.example.edu"}
		cfg.CORS = &cors
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/check", nil)
	req.Header.Set("Origin", "https://tutor.example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://tutor.example.edu", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MinimalConfig(t *testing.T) {
	r := NewRouter(RouterConfig{})
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/healthz", "").Code)
}
