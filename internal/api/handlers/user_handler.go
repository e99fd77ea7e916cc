package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aviramh/gradecast-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles the admin user-management API.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// List returns all user records. Password hashes never leave the
// service layer.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondOK(w, map[string]interface{}{"users": users})
}

// Get retrieves a single user by id.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to get user")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondOK(w, map[string]interface{}{"user": user})
}

// Update changes a user's name and email.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Name == "" || payload.Email == "" {
		respondError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	user, err := h.service.UpdateUser(id, payload.Name, payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrEmailExists):
			respondError(w, http.StatusConflict, "Email already exists")
		default:
			log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
			respondError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondOK(w, map[string]interface{}{"user": user})
}

// Delete removes a user permanently.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		respondError(w, http.StatusInternalServerError, "Server error")
		return
	}
	respondOK(w, nil)
}
