package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aviramh/gradecast-be/internal/auth"
	"github.com/aviramh/gradecast-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	service services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration. The new account is not logged
// in automatically.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	_, err := h.service.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			respondError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User registered successfully",
	})
}

// Login handles credential verification and session token generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error().Err(err).Msg("Authentication failed on store access")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondOK(w, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"lastLogin": user.LastLogin,
		},
	})
}

// Logout marks the authenticated user offline. The token itself stays
// valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(auth.UserIDKey).(string)
	if !ok || userID == "" {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := h.service.Logout(userID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Token subject no longer exists.
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to log out user")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondOK(w, nil)
}
