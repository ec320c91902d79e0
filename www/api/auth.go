package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"hacklab/platform/db"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginRequest struct {
	AdminToken string `json:"admin_token"`
}

// userResponse is the account document returned by auth endpoints. Solved
// challenge IDs ride along so the frontend can mark progress immediately.
type userResponse struct {
	ID               uint    `json:"id"`
	Email            string  `json:"email"`
	Username         string  `json:"username"`
	Role             string  `json:"role"`
	Score            int     `json:"score"`
	SolvedChallenges []uint  `json:"solved_challenges"`
	CreatedAt        string  `json:"created_at"`
	LastLogin        *string `json:"last_login"`
}

func newUserResponse(user db.UserSchema, solved []uint) userResponse {
	if solved == nil {
		solved = []uint{}
	}
	resp := userResponse{
		ID:               user.ID,
		Email:            user.Email,
		Username:         user.Username,
		Role:             user.Role,
		Score:            user.Score,
		SolvedChallenges: solved,
		CreatedAt:        user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.LastLogin != nil {
		formatted := user.LastLogin.Format("2006-01-02T15:04:05Z07:00")
		resp.LastLogin = &formatted
	}
	return resp
}

// Register creates an account. Registering an email that already exists
// returns the existing account instead of an error, so the frontend can treat
// register as "register or fetch". An empty password gets a derived default,
// matching the kiosk-style signup flow.
func Register(w http.ResponseWriter, r *http.Request) {
	if conf.UISettings.DisablePublicSignups {
		WriteJSON(w, http.StatusForbidden, map[string]any{"error": "Public registration is disabled"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid email address"})
		return
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Username must be between 3 and 50 characters"})
		return
	}

	if existing, err := db.GetUserByEmail(req.Email); err == nil {
		solved, _ := db.GetSolvedChallengeIDs(existing.ID)
		WriteJSON(w, http.StatusOK, newUserResponse(existing, solved))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error checking existing accounts"})
		return
	}

	if _, err := db.GetUserByUsername(req.Username); err == nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Username already taken"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error checking existing accounts"})
		return
	}

	password := req.Password
	if password == "" {
		local, _, _ := strings.Cut(req.Email, "@")
		password = fmt.Sprintf("ctf_%s_%s", req.Username, local)
	} else if len(password) < 6 {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Password must be at least 6 characters"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), conf.AuthSettings.BcryptCost)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error creating account"})
		return
	}

	user, err := db.CreateUser(db.UserSchema{
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: string(hashed),
		Role:           "user",
		IsActive:       true,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Account already exists"})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error creating account"})
		return
	}

	slog.Info("New user registered", "email", user.Email)
	WriteJSON(w, http.StatusOK, newUserResponse(user, nil))
}

// Login verifies credentials and issues an access token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Email or password can't be empty."})
		return
	}

	user, err := db.GetUserByEmail(req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteJSON(w, http.StatusUnauthorized, map[string]any{"error": "Incorrect email or password"})
		return
	}

	if !user.IsActive {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Inactive user"})
		return
	}

	if err := db.TouchLastLogin(user.ID); err != nil {
		slog.Warn("failed to update last login", "user", user.Username, "error", err)
	}

	token, err := CreateToken(user.Username, user.Email, user.Role)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error creating token"})
		return
	}

	slog.Info("User logged in", "email", user.Email)
	WriteJSON(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "bearer"})
}

// AdminLogin exchanges the configured admin token for an admin session.
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}

	if conf.AuthSettings.AdminToken == "" || req.AdminToken != conf.AuthSettings.AdminToken {
		w.Header().Set("WWW-Authenticate", "Bearer")
		WriteJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid admin token"})
		return
	}

	token, err := CreateToken(conf.AuthSettings.AdminUsername, conf.AuthSettings.AdminEmail, "admin")
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error creating token"})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "bearer"})
}

// Me returns the authenticated account.
func Me(w http.ResponseWriter, r *http.Request) {
	user, err := requestUser(r)
	if err != nil {
		WriteJSON(w, http.StatusNotFound, map[string]any{"error": "User not found"})
		return
	}

	solved, err := db.GetSolvedChallengeIDs(user.ID)
	if err != nil {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "Error retrieving progress"})
		return
	}

	WriteJSON(w, http.StatusOK, newUserResponse(user, solved))
}

// VerifyToken lets the frontend confirm a stored token is still good.
func VerifyToken(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value("username").(string)
	roles, _ := r.Context().Value("roles").([]string)

	role := ""
	if len(roles) > 0 {
		role = roles[0]
	}

	WriteJSON(w, http.StatusOK, map[string]any{"valid": true, "username": username, "role": role})
}
