package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"hacklab/platform/config"
	"hacklab/platform/db"
	"hacklab/platform/validator"
)

type submitRequest struct {
	SubmissionData map[string]any `json:"submission_data"`
}

// challengeResponse is the public challenge document. Solution internals
// (expected values, validator wiring) never leave the server.
type challengeResponse struct {
	ID               uint           `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Category         string         `json:"category"`
	Description      string         `json:"description"`
	Intro            string         `json:"intro,omitempty"`
	PlayInstructions string         `json:"play_instructions,omitempty"`
	Points           int            `json:"points"`
	Difficulty       string         `json:"difficulty"`
	IsActive         bool           `json:"is_active"`
	FrontendHint     string         `json:"frontend_hint,omitempty"`
	FrontendConfig   map[string]any `json:"frontend_config"`
	CreatedAt        string         `json:"created_at"`
	SolveCount       *int           `json:"solve_count,omitempty"`
	IsSolved         *bool          `json:"is_solved,omitempty"`
}

func newChallengeResponse(challenge db.ChallengeSchema) challengeResponse {
	cfg := challenge.FrontendConfig
	if cfg == nil {
		cfg = map[string]any{}
	}
	resp := challengeResponse{
		ID:               challenge.ID,
		Title:            challenge.Title,
		Slug:             challenge.Slug,
		Category:         challenge.Category,
		Description:      challenge.Description,
		Intro:            challenge.Intro,
		PlayInstructions: challenge.PlayInstructions,
		Points:           challenge.Points,
		Difficulty:       challenge.Difficulty,
		IsActive:         challenge.IsActive,
		FrontendHint:     challenge.FrontendHint,
		FrontendConfig:   cfg,
		CreatedAt:        challenge.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if conf.UISettings.ShowSolveCounts {
		count := challenge.SolveCount
		resp.SolveCount = &count
	}
	return resp
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GetChallenges lists active challenges with optional category/difficulty
// filters. Authenticated callers additionally get their solved flags.
func GetChallenges(w http.ResponseWriter, r *http.Request) {
	filter := db.ChallengeFilter{
		ActiveOnly: true,
		Category:   r.URL.Query().Get("category"),
		Difficulty: r.URL.Query().Get("difficulty"),
	}

	challenges, err := db.GetChallenges(filter)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving challenges"})
		return
	}

	var solved []uint
	if user, err := requestUser(r); err == nil {
		if solved, err = db.GetSolvedChallengeIDs(user.ID); err != nil {
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
			return
		}
	}

	responses := make([]challengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		resp := newChallengeResponse(challenge)
		if solved != nil {
			isSolved := slices.Contains(solved, challenge.ID)
			resp.IsSolved = &isSolved
		}
		responses = append(responses, resp)
	}

	WriteJSON(w, http.StatusOK, responses)
}

// GetChallenge returns one challenge and records the visit for analytics.
func GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid challenge id"})
		return
	}

	challenge, err := db.GetChallengeByID(id)
	if err != nil || !challenge.IsActive {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Challenge not found"})
		return
	}

	visit := db.VisitSchema{
		ChallengeID: &challenge.ID,
		IPAddress:   r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	}
	resp := newChallengeResponse(challenge)
	if user, err := requestUser(r); err == nil {
		visit.UserID = &user.ID
		solved, err := db.GetSolvedChallengeIDs(user.ID)
		if err == nil {
			isSolved := slices.Contains(solved, challenge.ID)
			resp.IsSolved = &isSolved
		}
	}
	if _, err := db.CreateVisit(visit); err != nil {
		slog.Warn("failed to record challenge visit", "challenge", challenge.ID, "error", err)
	}

	WriteJSON(w, http.StatusOK, resp)
}

// SubmitChallenge runs one submission through the validation dispatcher,
// stores the attempt, and credits the solve when the verdict is correct.
func SubmitChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid challenge id"})
		return
	}

	user, err := requestUser(r)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if req.SubmissionData == nil {
		req.SubmissionData = map[string]any{}
	}

	challenge, err := db.GetChallengeByID(id)
	if err != nil || !challenge.IsActive {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Challenge not found"})
		return
	}

	solved, err := db.GetSolvedChallengeIDs(user.ID)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
		return
	}
	if slices.Contains(solved, challenge.ID) {
		WriteJSON(w, http.StatusOK, validator.Result{Message: "Challenge already solved!"})
		return
	}

	result, err := validator.Evaluate(validator.Challenge{
		ID:     fmt.Sprint(challenge.ID),
		Points: challenge.Points,
	}, req.SubmissionData)
	if err != nil {
		if errors.Is(err, validator.ErrUnknownChallenge) {
			WriteJSON(w, http.StatusNotFound, map[string]any{"error": "Challenge validator not found"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Validation error occurred"})
		return
	}

	submission := db.SubmissionSchema{
		UserID:        user.ID,
		ChallengeID:   challenge.ID,
		IsCorrect:     result.Correct,
		SubmittedData: req.SubmissionData,
		ResultMessage: result.Message,
		PointsEarned:  result.PointsEarned,
	}
	if _, err := db.CreateSubmission(submission); err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error storing the submission"})
		return
	}

	if result.Correct {
		if err := db.AddSolve(user.ID, challenge.ID, result.PointsEarned); err != nil {
			WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error crediting the solve"})
			return
		}
		slog.Info("Challenge solved", "user", user.Email, "challenge", challenge.ID)
	}

	WriteJSON(w, http.StatusOK, result)
}

// GetChallengeSubmissions returns the caller's last attempts on one challenge.
func GetChallengeSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid challenge id"})
		return
	}

	user, err := requestUser(r)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}

	submissions, err := db.GetUserSubmissions(user.ID, id, 10)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving submissions"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"submissions": submissions})
}

// GetChallengeCategories lists the categories of active challenges.
func GetChallengeCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := db.GetChallengeCategories()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving categories"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetChallengeDifficulties lists the fixed difficulty levels.
func GetChallengeDifficulties(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"difficulties": config.Difficulties()})
}
