package middleware

import (
	"net/http"
	"slices"

	"hacklab/platform/config"
)

// Cors reflects the request origin when it is on the allowed list. A list of
// just "*" allows everyone, which is the default for local development.
func Cors(conf *config.ConfigSettings) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := conf.UISettings.AllowedOrigins

			if slices.Contains(allowed, "*") {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" && slices.Contains(allowed, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			// If preflight request, respond with 200 OK
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			// Continue processing the request
			next.ServeHTTP(w, r)
		}
	}
}
