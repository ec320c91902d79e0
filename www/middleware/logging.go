package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// statusRecorder remembers the status code a handler wrote so the access log
// can carry it. Handlers that never call WriteHeader get the implicit 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Logging writes one structured access log line per request, tagged with an
// X-Request-ID so players reporting a broken challenge can quote it. It runs
// inside Authentication so the resolved username is on the context.
func Logging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		username, ok := r.Context().Value("username").(string)
		if !ok || username == "" {
			username = "anonymous"
		}

		slog.Info("request served",
			"request_id", requestID,
			"client_ip", clientIP(r),
			"user", username,
			"method", r.Method,
			"uri", r.RequestURI,
			"status", rec.status,
			"duration", duration,
			"user_agent", r.UserAgent(),
		)
	}
}
