package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hacklab/platform/config"
	"hacklab/platform/db"

	"gorm.io/gorm"
)

type createChallengeRequest struct {
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Category         string         `json:"category"`
	Description      string         `json:"description"`
	Intro            string         `json:"intro"`
	PlayInstructions string         `json:"play_instructions"`
	Points           int            `json:"points"`
	Difficulty       string         `json:"difficulty"`
	SolutionType     string         `json:"solution_type"`
	FrontendHint     string         `json:"frontend_hint"`
	FrontendConfig   map[string]any `json:"frontend_config"`
	IsActive         *bool          `json:"is_active"`
}

type updateChallengeRequest struct {
	Title            *string        `json:"title"`
	Category         *string        `json:"category"`
	Description      *string        `json:"description"`
	Intro            *string        `json:"intro"`
	PlayInstructions *string        `json:"play_instructions"`
	Points           *int           `json:"points"`
	Difficulty       *string        `json:"difficulty"`
	FrontendHint     *string        `json:"frontend_hint"`
	FrontendConfig   map[string]any `json:"frontend_config"`
	IsActive         *bool          `json:"is_active"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// AdminCreateChallenge registers a new challenge. Slugs are unique so the
// frontend can address challenges by name.
func AdminCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Slug) == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Title and slug are required"})
		return
	}
	if req.Difficulty != "" && !config.ValidDifficulty(req.Difficulty) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid difficulty"})
		return
	}

	if _, err := db.GetChallengeBySlug(req.Slug); err == nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "A challenge with this slug already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error checking existing challenges"})
		return
	}

	points := req.Points
	if points <= 0 {
		points = conf.MiscSettings.Points
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "easy"
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	challenge, err := db.CreateChallenge(db.ChallengeSchema{
		Title:            req.Title,
		Slug:             req.Slug,
		Category:         req.Category,
		Description:      req.Description,
		Intro:            req.Intro,
		PlayInstructions: req.PlayInstructions,
		Points:           points,
		Difficulty:       difficulty,
		SolutionType:     req.SolutionType,
		FrontendHint:     req.FrontendHint,
		FrontendConfig:   req.FrontendConfig,
		IsActive:         active,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "A challenge with this slug already exists"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error creating challenge"})
		return
	}

	slog.Info("Challenge created", "id", challenge.ID, "slug", challenge.Slug)
	WriteJSON(w, http.StatusOK, newChallengeResponse(challenge))
}

// AdminGetChallenges lists every challenge, inactive ones included.
func AdminGetChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := db.GetChallenges(db.ChallengeFilter{})
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving challenges"})
		return
	}

	// The ShowSolveCounts toggle only hides counts from players.
	responses := make([]challengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		resp := newChallengeResponse(challenge)
		count := challenge.SolveCount
		resp.SolveCount = &count
		responses = append(responses, resp)
	}
	WriteJSON(w, http.StatusOK, responses)
}

// AdminUpdateChallenge applies a partial update. Only fields present in the
// request body change.
func AdminUpdateChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid challenge id"})
		return
	}

	var req updateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Intro != nil {
		updates["intro"] = *req.Intro
	}
	if req.PlayInstructions != nil {
		updates["play_instructions"] = *req.PlayInstructions
	}
	if req.Points != nil {
		if *req.Points <= 0 {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Points must be positive"})
			return
		}
		updates["points"] = *req.Points
	}
	if req.Difficulty != nil {
		if !config.ValidDifficulty(*req.Difficulty) {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid difficulty"})
			return
		}
		updates["difficulty"] = *req.Difficulty
	}
	if req.FrontendHint != nil {
		updates["frontend_hint"] = *req.FrontendHint
	}
	if req.FrontendConfig != nil {
		updates["frontend_config"] = req.FrontendConfig
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "No fields to update"})
		return
	}

	if err := db.UpdateChallenge(id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Challenge not found"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error updating challenge"})
		return
	}

	challenge, err := db.GetChallengeByID(id)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving challenge"})
		return
	}
	WriteJSON(w, http.StatusOK, newChallengeResponse(challenge))
}

// AdminDeleteChallenge removes a challenge along with its submissions, solves,
// and visit records.
func AdminDeleteChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid challenge id"})
		return
	}

	if err := db.DeleteChallenge(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Challenge not found"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error deleting challenge"})
		return
	}

	slog.Info("Challenge deleted", "id", id)
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Challenge deleted"})
}

// AdminGetUsers lists all accounts.
func AdminGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := db.GetUsers()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving users"})
		return
	}

	responses := make([]userResponse, 0, len(users))
	for _, user := range users {
		solved := make([]uint, 0, len(user.Solves))
		for _, solve := range user.Solves {
			solved = append(solved, solve.ChallengeID)
		}
		responses = append(responses, newUserResponse(user, solved))
	}
	WriteJSON(w, http.StatusOK, responses)
}

// AdminUpdateUserRole promotes or demotes an account.
func AdminUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid user id"})
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if req.Role != "user" && req.Role != "admin" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Role must be 'user' or 'admin'"})
		return
	}

	if err := db.UpdateUserRole(id, req.Role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error updating role"})
		return
	}

	slog.Info("User role updated", "id", id, "role", req.Role)
	WriteJSON(w, http.StatusOK, map[string]any{"message": "Role updated"})
}

// AdminChallengeAnalytics reports per-challenge traffic and solve rates.
func AdminChallengeAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := db.GetChallengeVisitStats()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}

	challenges, err := db.GetChallenges(db.ChallengeFilter{})
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}

	visits := make(map[uint]db.ChallengeVisitStats, len(stats))
	for _, stat := range stats {
		visits[stat.ChallengeID] = stat
	}

	rows := make([]map[string]any, 0, len(challenges))
	for _, challenge := range challenges {
		stat := visits[challenge.ID]
		solveRate := 0.0
		if stat.UniqueVisitors > 0 {
			solveRate = float64(challenge.SolveCount) / float64(stat.UniqueVisitors) * 100
		}
		rows = append(rows, map[string]any{
			"challenge_id":    challenge.ID,
			"title":           challenge.Title,
			"total_visits":    stat.TotalVisits,
			"unique_visitors": stat.UniqueVisitors,
			"solve_count":     challenge.SolveCount,
			"solve_rate":      solveRate,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]any{"challenges": rows})
}

// AdminUserAnalytics reports signup and activity counts.
func AdminUserAnalytics(w http.ResponseWriter, r *http.Request) {
	total, err := db.CountUsers()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}

	dayAgo := time.Now().Add(-24 * time.Hour)
	weekAgo := time.Now().Add(-7 * 24 * time.Hour)

	activeToday, err := db.CountUsersActiveSince(dayAgo)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	newThisWeek, err := db.CountUsersCreatedSince(weekAgo)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}

	top, err := db.GetTopUsers(5)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	topScorers := make([]map[string]any, 0, len(top))
	for _, user := range top {
		topScorers = append(topScorers, map[string]any{
			"username":    user.Username,
			"score":       user.Score,
			"solve_count": len(user.Solves),
		})
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"total_users":   total,
		"active_today":  activeToday,
		"new_this_week": newThisWeek,
		"top_scorers":   topScorers,
	})
}

// AdminPlatformAnalytics reports platform-wide totals.
func AdminPlatformAnalytics(w http.ResponseWriter, r *http.Request) {
	users, err := db.CountUsers()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	challenges, err := db.CountChallenges(false)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	submissions, err := db.CountSubmissions()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	correct, err := db.CountCorrectSubmissions()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	visits, err := db.CountVisits()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}

	successRate := 0.0
	if submissions > 0 {
		successRate = float64(correct) / float64(submissions) * 100
	}

	// most and least solved active challenges
	active, err := db.GetChallenges(db.ChallengeFilter{ActiveOnly: true})
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving analytics"})
		return
	}
	var popular, struggling *db.ChallengeSchema
	for i := range active {
		if popular == nil || active[i].SolveCount > popular.SolveCount {
			popular = &active[i]
		}
		if struggling == nil || active[i].SolveCount < struggling.SolveCount {
			struggling = &active[i]
		}
	}

	response := map[string]any{
		"total_users":         users,
		"total_challenges":    challenges,
		"total_submissions":   submissions,
		"correct_submissions": correct,
		"success_rate":        successRate,
		"total_visits":        visits,
	}
	if popular != nil {
		response["most_solved"] = map[string]any{"id": popular.ID, "title": popular.Title, "solve_count": popular.SolveCount}
		response["least_solved"] = map[string]any{"id": struggling.ID, "title": struggling.Title, "solve_count": struggling.SolveCount}
	}

	WriteJSON(w, http.StatusOK, response)
}
