package www

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hacklab/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routerConfig() *config.ConfigSettings {
	return &config.ConfigSettings{
		RequiredSettings: config.RequiredConfig{
			PlatformName: "HackLab Test",
			BindAddress:  "127.0.0.1",
		},
		AuthSettings: config.AuthConfig{
			JWTSecret:          "router-test-secret",
			TokenExpiryMinutes: 30,
			BcryptCost:         4,
			AdminEmail:         "admin@test.local",
			AdminUsername:      "admin",
		},
		MiscSettings: config.MiscConfig{
			Port:                   8000,
			RateLimitRequests:      100,
			RateLimitWindowSeconds: 60,
			Points:                 10,
		},
		UISettings: config.UIConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

func TestPreflightRequests(t *testing.T) {
	router := Router{Config: routerConfig()}
	handler := router.Handler()

	t.Run("preflight on a method-qualified route gets CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/register", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Result().Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Result().Header.Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("admin route preflights need no credentials", func(t *testing.T) {
		// browsers send preflights without the Authorization header
		req := httptest.NewRequest(http.MethodOptions, "/api/admin/challenges", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Result().Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimitRunsBeforeAuthentication(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	conf := routerConfig()
	conf.MiscSettings.RateLimitRequests = 1
	router := Router{Config: conf, Redis: client}
	handler := router.Handler()

	request := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		r.RemoteAddr = "203.0.113.20:4000"
		r.Header.Set("Authorization", "Bearer not-a-real-token")
		return r
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, request())
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// over the limit the 429 must fire before any token processing happens
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, request())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
