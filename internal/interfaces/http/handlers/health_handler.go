package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/pkg/types/common"
)

// HealthChecker probes one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkFunc) Name() string                    { return c.name }
func (c checkFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckFunc adapts a HealthCheck or Ping method into a HealthChecker.
func CheckFunc(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkFunc{name: name, fn: fn}
}

type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	timeout  time.Duration
}

func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
	r.GET("/healthz/detail", h.Detailed)
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type ReadinessResponse struct {
	Status     common.HealthStatus               `json:"status"`
	Version    string                            `json:"version,omitempty"`
	Uptime     string                            `json:"uptime,omitempty"`
	Components map[string]common.ComponentHealth `json:"components,omitempty"`
}

// Liveness never touches dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  h.uptime(),
	})
}

// Readiness answers 503 when any dependency is down.
func (h *HealthHandler) Readiness(c *gin.Context) {
	status, components := h.evaluate(c.Request.Context())
	c.JSON(statusCode(status), ReadinessResponse{Status: status, Components: components})
}

// Detailed adds version and uptime to the readiness report.
func (h *HealthHandler) Detailed(c *gin.Context) {
	status, components := h.evaluate(c.Request.Context())
	if components == nil {
		components = map[string]common.ComponentHealth{}
	}
	c.JSON(statusCode(status), ReadinessResponse{
		Status:     status,
		Version:    h.version,
		Uptime:     h.uptime(),
		Components: components,
	})
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startAt).Truncate(time.Second).String()
}

func (h *HealthHandler) evaluate(ctx context.Context) (common.HealthStatus, map[string]common.ComponentHealth) {
	if len(h.checkers) == 0 {
		return common.HealthUp, nil
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	for _, ch := range components {
		if ch.Status != common.HealthUp {
			return common.HealthDown, components
		}
	}
	return common.HealthUp, components
}

// checkAll runs every checker concurrently.
func (h *HealthHandler) checkAll(ctx context.Context) map[string]common.ComponentHealth {
	results := make(map[string]common.ComponentHealth, len(h.checkers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := hc.Check(ctx)
			ch := common.ComponentHealth{
				Name:    hc.Name(),
				Status:  common.HealthUp,
				Latency: time.Since(start),
			}
			if err != nil {
				ch.Status = common.HealthDown
				ch.Message = err.Error()
			}
			mu.Lock()
			results[hc.Name()] = ch
			mu.Unlock()
		}(checker)
	}
	wg.Wait()
	return results
}

func statusCode(s common.HealthStatus) int {
	if s == common.HealthUp {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
