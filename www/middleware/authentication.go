package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"

	"hacklab/www/api"
)

// middleware requiring authentication to even hit
func Authentication(roles ...string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			username, userRoles := api.Authenticate(r)

			if username == "" {
				if slices.Contains(roles, "anonymous") {
					next(w, r)
					return
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				d, _ := json.Marshal(map[string]any{"error": "unauthorized"})
				w.Write(d)
				return
			}

			for _, userRole := range userRoles {
				for _, allowedRole := range roles {
					if userRole == allowedRole {
						ctx := context.WithValue(r.Context(), "username", username)
						ctx = context.WithValue(ctx, "roles", userRoles)
						next(w, r.WithContext(ctx))
						return
					}
				}
			}
			w.WriteHeader(http.StatusForbidden)
			d, _ := json.Marshal(map[string]any{"error": "forbidden"})
			w.Write(d)
		}
	}
}
