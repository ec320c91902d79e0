package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"hacklab/platform/config"
	"hacklab/platform/db"

	"gorm.io/gorm"
)

type upsertAdRequest struct {
	Position string `json:"position"`
	Content  string `json:"content"`
	IsActive *bool  `json:"is_active"`
}

type adResponse struct {
	ID       uint   `json:"id"`
	Position string `json:"position"`
	Content  string `json:"content"`
	IsActive bool   `json:"is_active"`
}

// GetAds returns the active ads for the frontend, optionally filtered by
// position, and counts an impression for each ad served.
func GetAds(w http.ResponseWriter, r *http.Request) {
	position := r.URL.Query().Get("position")
	if position != "" && !config.ValidAdPosition(position) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid ad position"})
		return
	}

	ads, err := db.GetAds(position, true)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving ads"})
		return
	}

	ids := make([]uint, 0, len(ads))
	responses := make([]adResponse, 0, len(ads))
	for _, ad := range ads {
		ids = append(ids, ad.ID)
		responses = append(responses, adResponse{
			ID:       ad.ID,
			Position: ad.Position,
			Content:  ad.Content,
			IsActive: ad.IsActive,
		})
	}

	if err := db.IncrementImpressions(ids); err != nil {
		slog.Warn("failed to count ad impressions", "error", err)
	}

	WriteJSON(w, http.StatusOK, responses)
}

// ClickAd counts a click on an ad.
func ClickAd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid ad id"})
		return
	}

	if _, err := db.GetAdByID(id); err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Ad not found"})
		return
	}

	if err := db.IncrementClicks(id); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error counting click"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"message": "Click recorded"})
}

// AdminUpsertAd creates the ad for a position, or replaces its content when
// one already exists. One ad per position keeps placement decisions simple.
func AdminUpsertAd(w http.ResponseWriter, r *http.Request) {
	var req upsertAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	if !config.ValidAdPosition(req.Position) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid ad position"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Content is required"})
		return
	}

	existing, err := db.GetAdByPosition(req.Position)
	if err == nil {
		if err := db.UpdateAdContent(existing.ID, req.Content); err != nil {
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error updating ad"})
			return
		}
		if req.IsActive != nil {
			if err := db.SetAdActive(existing.ID, *req.IsActive); err != nil {
				WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error updating ad"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]any{"message": "Ad updated", "id": existing.ID})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error checking existing ads"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ad, err := db.CreateAd(db.AdSchema{
		Position: req.Position,
		Content:  req.Content,
		IsActive: active,
	})
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error creating ad"})
		return
	}

	slog.Info("Ad created", "id", ad.ID, "position", ad.Position)
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Ad created", "id": ad.ID})
}

// AdminGetAds lists every ad with its engagement numbers.
func AdminGetAds(w http.ResponseWriter, r *http.Request) {
	ads, err := db.GetAds("", false)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving ads"})
		return
	}

	rows := make([]map[string]any, 0, len(ads))
	for _, ad := range ads {
		ctr := 0.0
		if ad.ImpressionCount > 0 {
			ctr = float64(ad.ClickCount) / float64(ad.ImpressionCount) * 100
		}
		rows = append(rows, map[string]any{
			"id":               ad.ID,
			"position":         ad.Position,
			"content":          ad.Content,
			"is_active":        ad.IsActive,
			"impression_count": ad.ImpressionCount,
			"click_count":      ad.ClickCount,
			"click_through":    ctr,
		})
	}

	WriteJSON(w, http.StatusOK, rows)
}

// AdminToggleAd flips an ad between active and inactive.
func AdminToggleAd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid ad id"})
		return
	}

	ad, err := db.GetAdByID(id)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Ad not found"})
		return
	}

	if err := db.SetAdActive(ad.ID, !ad.IsActive); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error updating ad"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"id": ad.ID, "is_active": !ad.IsActive})
}

// AdminDeleteAd removes an ad.
func AdminDeleteAd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid ad id"})
		return
	}

	if _, err := db.GetAdByID(id); err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Ad not found"})
		return
	}

	if err := db.DeleteAd(id); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error deleting ad"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"message": "Ad deleted"})
}
