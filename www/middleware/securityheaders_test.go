package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hacklab/platform/config"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	t.Run("sets all security headers without SSL", func(t *testing.T) {
		conf := &config.ConfigSettings{
			SslSettings: config.SslConfig{}, // No SSL
		}

		middleware := SecurityHeaders(conf)
		wrapped := middleware(handler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		wrapped(w, req)

		headers := w.Result().Header

		// HSTS should NOT be set without SSL
		assert.Empty(t, headers.Get("Strict-Transport-Security"),
			"HSTS should not be set without SSL")

		assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
		assert.Equal(t, "1; mode=block", headers.Get("X-XSS-Protection"))
		assert.Contains(t, headers.Get("Content-Security-Policy"), "default-src 'self'")
		assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	})

	t.Run("sets HSTS header with SSL configured", func(t *testing.T) {
		conf := &config.ConfigSettings{
			SslSettings: config.SslConfig{
				HttpsCert: "/path/to/cert.pem",
				HttpsKey:  "/path/to/key.pem",
			},
		}

		middleware := SecurityHeaders(conf)
		wrapped := middleware(handler)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		wrapped(w, req)

		hsts := w.Result().Header.Get("Strict-Transport-Security")
		assert.Equal(t, "max-age=31536000; includeSubDomains", hsts,
			"HSTS should be set with SSL configured")
	})

	t.Run("sets restrictive CSP by default", func(t *testing.T) {
		conf := &config.ConfigSettings{}
		middleware := SecurityHeaders(conf)
		wrapped := middleware(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/challenges/3", nil)
		w := httptest.NewRecorder()

		wrapped(w, req)

		csp := w.Result().Header.Get("Content-Security-Policy")
		assert.Contains(t, csp, "frame-ancestors 'none'")
		assert.NotContains(t, csp, "unsafe-eval",
			"regular pages must not allow eval")
	})

	t.Run("relaxes CSP on the bypass challenge pages", func(t *testing.T) {
		conf := &config.ConfigSettings{}
		middleware := SecurityHeaders(conf)
		wrapped := middleware(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/challenges/14", nil)
		w := httptest.NewRecorder()

		wrapped(w, req)

		csp := w.Result().Header.Get("Content-Security-Policy")
		assert.Contains(t, csp, "unsafe-eval",
			"the CSP bypass challenge needs an exploitable policy")
	})

	t.Run("leaks the flag header on the leaky headers challenge", func(t *testing.T) {
		conf := &config.ConfigSettings{}
		middleware := SecurityHeaders(conf)
		wrapped := middleware(handler)

		req := httptest.NewRequest(http.MethodGet, "/api/challenges/9", nil)
		w := httptest.NewRecorder()

		wrapped(w, req)

		assert.NotEmpty(t, w.Result().Header.Get("X-Flag"),
			"challenge 9 pages should carry the flag header")

		req = httptest.NewRequest(http.MethodGet, "/api/challenges/10", nil)
		w = httptest.NewRecorder()
		wrapped(w, req)

		assert.Empty(t, w.Result().Header.Get("X-Flag"),
			"other pages must not leak the flag header")
	})
}
