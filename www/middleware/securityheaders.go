package middleware

import (
	"net/http"
	"strings"

	"hacklab/platform/config"
)

// Two headers here are intentionally part of the game: challenge 14 pages get
// a CSP that allows unsafe-eval, and challenge 9 pages leak a flag header.
const (
	strongCSP = "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"font-src 'self' data:; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'"
	weakCSP = "default-src 'self' 'unsafe-inline' 'unsafe-eval' data:;"

	leakyHeaderFlag = "CTF{leaky_headers_reveal_secrets}"
)

// SecurityHeaders adds essential security headers to all responses
func SecurityHeaders(conf *config.ConfigSettings) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			// HSTS: only meaningful when HTTPS is configured
			if conf.SslSettings != (config.SslConfig{}) {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			// X-Frame-Options: Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// X-Content-Type-Options: Prevent MIME confusion attacks
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// X-XSS-Protection: Enable browser XSS filter (legacy but harmless)
			w.Header().Set("X-XSS-Protection", "1; mode=block")

			if strings.HasPrefix(r.URL.Path, "/api/challenges/14") {
				w.Header().Set("Content-Security-Policy", weakCSP)
			} else {
				w.Header().Set("Content-Security-Policy", strongCSP)
			}

			if strings.HasPrefix(r.URL.Path, "/api/challenges/9") {
				w.Header().Set("X-Flag", leakyHeaderFlag)
			}

			// Referrer-Policy: Control referer header leakage
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next(w, r)
		}
	}
}
