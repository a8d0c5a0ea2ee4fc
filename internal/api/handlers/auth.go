package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jmartin/coursehub/internal/api/middleware"
	"github.com/jmartin/coursehub/internal/config"
	"github.com/jmartin/coursehub/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         config.AuthConfig
	secure      bool
}

func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, secure: secureCookies}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ActivateRequest struct {
	ActivationToken string `json:"activationToken"`
	ActivationCode  string `json:"activationCode"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.authService.RequestActivation(r.Context(), req)
	if err != nil {
		handleError(w, "auth.Register", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":         true,
		"message":         fmt.Sprintf("Please check your email: %s to activate your account!", req.Email),
		"activationToken": ticket,
	})
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ActivationToken == "" || req.ActivationCode == "" {
		writeError(w, http.StatusBadRequest, "activation token and code are required")
		return
	}

	user, err := h.authService.Activate(r.Context(), req.ActivationToken, req.ActivationCode)
	if err != nil {
		handleError(w, "auth.Activate", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, "auth.Login", err)
		return
	}

	middleware.SetAuthCookies(w, result.Tokens, h.cfg, h.secure)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"user":        result.User,
		"accessToken": result.Tokens.AccessToken,
	})
}

func (h *AuthHandler) SocialAuth(w http.ResponseWriter, r *http.Request) {
	var req service.SocialAuthInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.SocialAuth(r.Context(), req)
	if err != nil {
		handleError(w, "auth.SocialAuth", err)
		return
	}

	middleware.SetAuthCookies(w, result.Tokens, h.cfg, h.secure)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"user":        result.User,
		"accessToken": result.Tokens.AccessToken,
	})
}

// Refresh rotates the token pair from the refresh cookie. Browsers that let
// the access token lapse between requests land here explicitly.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	result, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		handleError(w, "auth.Refresh", err)
		return
	}

	middleware.SetAuthCookies(w, result.Tokens, h.cfg, h.secure)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"accessToken": result.Tokens.AccessToken,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "please login to access this resource")
		return
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		handleError(w, "auth.Logout", err)
		return
	}

	middleware.ClearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out successfully",
	})
}
