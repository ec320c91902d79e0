package api

import (
	"net/http"
	"strconv"

	"hacklab/platform/db"
)

type leaderboardEntry struct {
	Rank          int     `json:"rank"`
	Username      string  `json:"username"`
	Score         int     `json:"score"`
	SolveCount    int     `json:"solve_count"`
	Progress      float64 `json:"progress_percent"`
	IsCurrentUser bool    `json:"is_current_user"`
}

// GetLeaderboard returns the top scorers plus the caller's own rank when
// authenticated. Progress is the share of active challenges each user solved.
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if conf.UISettings.DisableLeaderboard {
		WriteJSON(w, http.StatusForbidden, map[string]any{"error": "Leaderboard is disabled"})
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	top, err := db.GetTopUsers(limit)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving leaderboard"})
		return
	}

	totalChallenges, err := db.CountChallenges(true)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving leaderboard"})
		return
	}

	totalUsers, err := db.CountUsers()
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving leaderboard"})
		return
	}

	caller, callerErr := requestUser(r)

	entries := make([]leaderboardEntry, 0, len(top))
	for i, user := range top {
		progress := 0.0
		if totalChallenges > 0 {
			progress = float64(len(user.Solves)) / float64(totalChallenges) * 100
		}
		entries = append(entries, leaderboardEntry{
			Rank:          i + 1,
			Username:      user.Username,
			Score:         user.Score,
			SolveCount:    len(user.Solves),
			Progress:      progress,
			IsCurrentUser: callerErr == nil && user.ID == caller.ID,
		})
	}

	response := map[string]any{
		"leaderboard": entries,
		"total_users": totalUsers,
	}

	if callerErr == nil {
		above, err := db.CountUsersWithScoreAbove(caller.Score)
		if err == nil {
			response["your_rank"] = above + 1
		}
	}

	WriteJSON(w, http.StatusOK, response)
}

// GetProgress summarizes the caller's standing: solved counts, completion
// percentage, rank, and their most recent solves.
func GetProgress(w http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}

	totalChallenges, err := db.CountChallenges(true)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
		return
	}

	solved, err := db.GetSolvedChallengeIDs(user.ID)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
		return
	}

	above, err := db.CountUsersWithScoreAbove(user.Score)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
		return
	}

	recent, err := db.GetRecentSolves(user.ID, 5)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
		return
	}

	recentSolves := make([]map[string]any, 0, len(recent))
	for _, solve := range recent {
		recentSolves = append(recentSolves, map[string]any{
			"challenge_id":    solve.ChallengeID,
			"challenge_title": solve.Challenge.Title,
			"points_earned":   solve.PointsEarned,
			"solved_at":       solve.CreatedAt,
		})
	}

	percent := 0.0
	if totalChallenges > 0 {
		percent = float64(len(solved)) / float64(totalChallenges) * 100
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"username":           user.Username,
		"score":              user.Score,
		"rank":               above + 1,
		"solved_count":       len(solved),
		"total_challenges":   totalChallenges,
		"completion_percent": percent,
		"solved_challenges":  solved,
		"recent_solves":      recentSolves,
	})
}
