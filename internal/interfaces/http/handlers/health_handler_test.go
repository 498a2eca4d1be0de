package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/pkg/types/common"
)

func healthEngine(checkers ...HealthChecker) *gin.Engine {
	r := gin.New()
	NewHealthHandler("1.2.3", checkers...).RegisterRoutes(r)
	return r
}

func up(name string) HealthChecker {
	return CheckFunc(name, func(context.Context) error { return nil })
}

func down(name string) HealthChecker {
	return CheckFunc(name, func(context.Context) error { return errors.New("connection refused") })
}

func TestLiveness(t *testing.T) {
	w := doJSON(t, healthEngine(down("postgres")), http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		code     int
		status   common.HealthStatus
	}{
		{"no dependencies", nil, http.StatusOK, common.HealthUp},
		{"all up", []HealthChecker{up("postgres"), up("redis")}, http.StatusOK, common.HealthUp},
		{"one down", []HealthChecker{up("postgres"), down("redis")}, http.StatusServiceUnavailable, common.HealthDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, healthEngine(tt.checkers...), http.MethodGet, "/readyz", nil)
			assert.Equal(t, tt.code, w.Code)

			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Len(t, resp.Components, len(tt.checkers))
		})
	}
}

func TestDetailed(t *testing.T) {
	w := doJSON(t, healthEngine(up("minio"), down("redis")), http.MethodGet, "/healthz/detail", nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, common.HealthUp, resp.Components["minio"].Status)
	assert.Equal(t, common.HealthDown, resp.Components["redis"].Status)
	assert.Equal(t, "connection refused", resp.Components["redis"].Message)
}
