package api

import (
	"encoding/json"
	"net/http"

	"hacklab/platform/db"
)

type trackVisitRequest struct {
	Page        string `json:"page"`
	ChallengeID *uint  `json:"challenge_id"`
}

// TrackVisit records a page view. Works for anonymous visitors too; the user
// is attached only when the request carries a valid token.
func TrackVisit(w http.ResponseWriter, r *http.Request) {
	var req trackVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if req.Page == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Page is required"})
		return
	}

	visit := db.VisitSchema{
		Page:        req.Page,
		ChallengeID: req.ChallengeID,
		IPAddress:   r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	}
	if user, err := requestUser(r); err == nil {
		visit.UserID = &user.ID
	}

	if _, err := db.CreateVisit(visit); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error recording visit"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"message": "Visit recorded"})
}

// GetVisitStats reports overall traffic and the most visited pages.
func GetVisitStats(w http.ResponseWriter, r *http.Request) {
	total, err := db.CountVisits()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving visit stats"})
		return
	}

	pages, err := db.GetTopPages(10)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving visit stats"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"total_visits": total,
		"top_pages":    pages,
	})
}
