package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"pickem-app-go/middleware"
	"pickem-app-go/models"
	"pickem-app-go/services"

	"pickem-app-go/logging"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logging.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logging.WithPrefix("AuthHandler"),
	}
}

// Login handles JSON login requests
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name and password are required")
		return
	}

	authResponse, err := h.authService.Login(req.Name, req.Password)
	if err != nil {
		h.logger.Warnf("Login failed for %s: %v", req.Name, err)
		writeError(w, http.StatusUnauthorized, "invalid name or password")
		return
	}

	h.setAuthCookie(w, authResponse.Token)
	h.logger.Infof("User %s logged in", authResponse.User.Name)
	writeJSON(w, http.StatusOK, authResponse)
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user.ToSafeUser())
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	secure := os.Getenv("ENVIRONMENT") == "production"
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * 30 * 6 * time.Hour),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
