package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/security"
	"github.com/username/etsyexporter/src/utils"
)

// AuthHandler authenticates the single configured operator and guards the
// API with bearer tokens.
type AuthHandler struct {
	authService  *security.AuthService
	username     string
	passwordHash string
}

func NewAuthHandler(authService *security.AuthService, username, passwordHash string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		username:     username,
		passwordHash: passwordHash,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid login payload", http.StatusBadRequest)
		return
	}

	if req.Username != h.username {
		logger.L.Warn("Login attempt with unknown username", "username", req.Username)
		utils.SendJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := h.authService.CompareHashAndPassword(h.passwordHash, req.Password); err != nil {
		logger.L.Warn("Login attempt with wrong password", "username", req.Username)
		utils.SendJSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(req.Username)
	if err != nil {
		logger.L.Error("Failed to generate access token", "error", err)
		utils.SendJSONError(w, "could not issue token", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, map[string]string{"token": token}, http.StatusOK)
}

// AuthMiddleware validates the Authorization bearer token before letting a
// request through.
func (h *AuthHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		if _, err := h.authService.ValidateToken(tokenString); err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
