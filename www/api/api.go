package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"hacklab/platform/config"
	"hacklab/platform/db"
)

var (
	conf *config.ConfigSettings
)

func SetConfig(c *config.ConfigSettings) {
	conf = c
}

// WriteJSON writes a JSON response with the given status code.
// Errors are logged but not returned since there's nothing actionable
// the caller can do if the response write fails.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// Root is the API landing document.
func Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": conf.RequiredSettings.PlatformName,
		"version": "1.0.0",
		"status":  "running",
	})
}

// Health pings the database so load balancers can tell a dead instance apart
// from a slow one.
func Health(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(); err != nil {
		slog.Error("health check failed", "error", err)
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "healthy", "database": "connected"})
}
