package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsEngine(cfg CORSConfig) http.Handler { return newEngine(CORS(cfg)) }

func withOrigins(origins ...string) CORSConfig {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	return cfg
}

func TestCORS_Preflight(t *testing.T) {
	w := do(t, corsEngine(withOrigins("https://lab.example.org")), http.MethodOptions, "/", map[string]string{
		"Origin":                        "https://lab.example.org",
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://lab.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_SimpleRequestExposesHeaders(t *testing.T) {
	w := do(t, corsEngine(withOrigins("https://lab.example.org")), http.MethodGet, "/", map[string]string{
		"Origin": "https://lab.example.org",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://lab.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	w := do(t, corsEngine(withOrigins("https://lab.example.org")), http.MethodGet, "/", map[string]string{
		"Origin": "https://evil.example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOrigin(t *testing.T) {
	w := do(t, corsEngine(withOrigins("*")), http.MethodGet, "/", nil)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowAll(t *testing.T) {
	w := do(t, corsEngine(withOrigins("*")), http.MethodGet, "/", map[string]string{"Origin": "https://any.io"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowAllWithCredentialsEchoesOrigin(t *testing.T) {
	cfg := withOrigins("*")
	cfg.AllowCredentials = true

	w := do(t, corsEngine(cfg), http.MethodGet, "/", map[string]string{"Origin": "https://any.io"})
	assert.Equal(t, "https://any.io", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_SubdomainWildcard(t *testing.T) {
	cfg := withOrigins("*.example.org")
	cfg.AllowWildcard = true
	h := corsEngine(cfg)

	w := do(t, h, http.MethodGet, "/", map[string]string{"Origin": "https://Chem.Example.org"})
	assert.Equal(t, "https://Chem.Example.org", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodGet, "/", map[string]string{"Origin": "https://example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardPatternIgnoredWhenDisabled(t *testing.T) {
	w := do(t, corsEngine(withOrigins("*.example.org")), http.MethodGet, "/", map[string]string{"Origin": "https://a.example.org"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
