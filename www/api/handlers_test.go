package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hacklab/platform/config"
	"hacklab/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "hacklab-api-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	db.Connect("sqlite:" + filepath.Join(dir, "test.db"))

	conf := &config.ConfigSettings{
		RequiredSettings: config.RequiredConfig{
			PlatformName: "HackLab Test",
			BindAddress:  "127.0.0.1",
		},
		AuthSettings: config.AuthConfig{
			JWTSecret:          "unit-test-secret",
			TokenExpiryMinutes: 30,
			BcryptCost:         4, // keep hashing fast in tests
			AdminEmail:         "admin@test.local",
			AdminUsername:      "admin",
			AdminToken:         "test-admin-token",
		},
		MiscSettings: config.MiscConfig{
			Points: 10,
		},
	}
	SetConfig(conf)

	if err := db.SeedChallenges(conf); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func jsonRequest(method, target string, body any) *http.Request {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, strings.NewReader(string(encoded)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser attaches the context values the authentication middleware would set.
func asUser(r *http.Request, username, role string) *http.Request {
	ctx := context.WithValue(r.Context(), "username", username)
	ctx = context.WithValue(ctx, "roles", []string{role})
	return r.WithContext(ctx)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&body))
	return body
}

func TestRegisterAndLogin(t *testing.T) {
	t.Run("register new account", func(t *testing.T) {
		w := httptest.NewRecorder()
		Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "player@test.local",
			"username": "player",
			"password": "hunter22",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "player", body["username"])
		assert.Equal(t, "user", body["role"])
		assert.Equal(t, []any{}, body["solved_challenges"])
	})

	t.Run("registering an existing email returns the account", func(t *testing.T) {
		w := httptest.NewRecorder()
		Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "player@test.local",
			"username": "someone-else",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "player", body["username"], "existing account wins over the new name")
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "other@test.local",
			"username": "player",
			"password": "hunter22",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "not-an-email",
			"username": "someone",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "short@test.local",
			"username": "shorty",
			"password": "abc",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login issues a bearer token", func(t *testing.T) {
		w := httptest.NewRecorder()
		Login(w, jsonRequest(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "player@test.local",
			"password": "hunter22",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "bearer", body["token_type"])
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		Login(w, jsonRequest(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "player@test.local",
			"password": "wrong",
		}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminLogin(t *testing.T) {
	t.Run("correct token", func(t *testing.T) {
		w := httptest.NewRecorder()
		AdminLogin(w, jsonRequest(http.MethodPost, "/api/auth/admin-login", map[string]any{
			"admin_token": "test-admin-token",
		}))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.NotEmpty(t, body["access_token"])
	})

	t.Run("wrong token", func(t *testing.T) {
		w := httptest.NewRecorder()
		AdminLogin(w, jsonRequest(http.MethodPost, "/api/auth/admin-login", map[string]any{
			"admin_token": "nope",
		}))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSubmitChallengeFlow(t *testing.T) {
	w := httptest.NewRecorder()
	Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "solver@test.local",
		"username": "solver",
		"password": "hunter22",
	}))
	require.Equal(t, http.StatusOK, w.Code)

	submit := func(id string, data map[string]any) *httptest.ResponseRecorder {
		req := jsonRequest(http.MethodPost, "/api/challenges/"+id+"/submit", map[string]any{
			"submission_data": data,
		})
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		SubmitChallenge(w, asUser(req, "solver", "user"))
		return w
	}

	t.Run("wrong answer", func(t *testing.T) {
		w := submit("1", map[string]any{"username": "guest", "password": "guest"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["is_correct"])
	})

	t.Run("correct answer credits the solve", func(t *testing.T) {
		w := submit("1", map[string]any{"username": "admin"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["is_correct"])
		assert.EqualValues(t, 10, body["points_earned"])

		user, err := db.GetUserByUsername("solver")
		require.NoError(t, err)
		assert.Equal(t, 10, user.Score)
	})

	t.Run("resubmission short circuits", func(t *testing.T) {
		w := submit("1", map[string]any{"username": "admin"})
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Challenge already solved!", body["message"])

		user, err := db.GetUserByUsername("solver")
		require.NoError(t, err)
		assert.Equal(t, 10, user.Score, "score must not change on resubmission")
	})

	t.Run("unknown challenge id", func(t *testing.T) {
		w := submit("999", map[string]any{})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("submission history recorded", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/challenges/1/submissions", nil)
		req.SetPathValue("id", "1")
		w := httptest.NewRecorder()
		GetChallengeSubmissions(w, asUser(req, "solver", "user"))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		submissions := body["submissions"].([]any)
		assert.Len(t, submissions, 2, "both real attempts stored, the short circuit none")
	})
}

func TestGetChallenges(t *testing.T) {
	t.Run("anonymous listing has no solved flags", func(t *testing.T) {
		w := httptest.NewRecorder()
		GetChallenges(w, httptest.NewRequest(http.MethodGet, "/api/challenges", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var challenges []map[string]any
		require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&challenges))
		assert.Len(t, challenges, 15)
		_, present := challenges[0]["is_solved"]
		assert.False(t, present, "anonymous callers should not see solve state")
	})

	t.Run("difficulty filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		GetChallenges(w, httptest.NewRequest(http.MethodGet, "/api/challenges?difficulty=hard", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var challenges []map[string]any
		require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&challenges))
		for _, c := range challenges {
			assert.Equal(t, "hard", c["difficulty"])
		}
	})

	t.Run("detail view records a visit", func(t *testing.T) {
		visitsBefore, err := db.CountVisits()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/challenges/2", nil)
		req.SetPathValue("id", "2")
		w := httptest.NewRecorder()
		GetChallenge(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "SQL Injection", body["title"])

		visitsAfter, err := db.CountVisits()
		require.NoError(t, err)
		assert.Equal(t, visitsBefore+1, visitsAfter)
	})
}

func TestLeaderboard(t *testing.T) {
	w := httptest.NewRecorder()
	GetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	entries := body["leaderboard"].([]any)
	require.NotEmpty(t, entries)

	first := entries[0].(map[string]any)
	assert.EqualValues(t, 1, first["rank"])

	t.Run("bad limit rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		GetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=0", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVisibilityToggles(t *testing.T) {
	t.Run("disabled signups reject new accounts", func(t *testing.T) {
		conf.UISettings.DisablePublicSignups = true
		t.Cleanup(func() { conf.UISettings.DisablePublicSignups = false })

		w := httptest.NewRecorder()
		Register(w, jsonRequest(http.MethodPost, "/api/auth/register", map[string]any{
			"email":    "walkup@test.local",
			"username": "walkup",
			"password": "hunter22",
		}))
		assert.Equal(t, http.StatusForbidden, w.Code)

		_, err := db.GetUserByUsername("walkup")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "no account may be created while signups are off")
	})

	t.Run("disabled leaderboard is not served", func(t *testing.T) {
		conf.UISettings.DisableLeaderboard = true
		t.Cleanup(func() { conf.UISettings.DisableLeaderboard = false })

		w := httptest.NewRecorder()
		GetLeaderboard(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("solve counts are hidden unless enabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		GetChallenges(w, httptest.NewRequest(http.MethodGet, "/api/challenges", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var challenges []map[string]any
		require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&challenges))
		_, present := challenges[0]["solve_count"]
		assert.False(t, present, "solve counts are opt-in")

		conf.UISettings.ShowSolveCounts = true
		t.Cleanup(func() { conf.UISettings.ShowSolveCounts = false })

		w = httptest.NewRecorder()
		GetChallenges(w, httptest.NewRequest(http.MethodGet, "/api/challenges", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&challenges))
		_, present = challenges[0]["solve_count"]
		assert.True(t, present)
	})

	t.Run("admin listing always carries solve counts", func(t *testing.T) {
		w := httptest.NewRecorder()
		AdminGetChallenges(w, httptest.NewRequest(http.MethodGet, "/api/admin/challenges", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var challenges []map[string]any
		require.NoError(t, json.NewDecoder(w.Result().Body).Decode(&challenges))
		_, present := challenges[0]["solve_count"]
		assert.True(t, present)
	})
}

func TestVerifyToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	w := httptest.NewRecorder()
	VerifyToken(w, asUser(req, "player", "user"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "player", body["username"])
	assert.Equal(t, "user", body["role"])
}
