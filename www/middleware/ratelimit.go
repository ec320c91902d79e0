package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:ip:"

// RateLimit enforces a fixed window request limit per client IP, counted in
// redis. Without a redis client the limiter is disabled, and redis errors
// fail open; losing rate limiting should never take the platform down.
func RateLimit(client *redis.Client, requests int, windowSeconds int) Middleware {
	window := time.Duration(windowSeconds) * time.Second
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if client == nil || requests <= 0 {
				next(w, r)
				return
			}

			ip := clientIP(r)
			key := rateLimitPrefix + ip

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				slog.Warn("rate limit counter unavailable", "key", key, "error", err)
				next(w, r)
				return
			}

			if count == 1 {
				if err := client.Expire(r.Context(), key, window).Err(); err != nil {
					slog.Warn("rate limit ttl not set", "key", key, "error", err)
				}
			}

			if count > int64(requests) {
				w.Header().Set("Retry-After", strconv.Itoa(windowSeconds))
				w.WriteHeader(http.StatusTooManyRequests)
				d, _ := json.Marshal(map[string]any{"error": "rate limit exceeded"})
				w.Write(d)
				return
			}

			next(w, r)
		}
	}
}

// clientIP resolves the address the limit is keyed on. X-Forwarded-For can
// accumulate one entry per proxy hop; only the first entry is the client.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
