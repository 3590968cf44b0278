package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskdesk/apiserver/internal/services"
	"github.com/taskdesk/apiserver/internal/store"
	"github.com/taskdesk/apiserver/types"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	userService *services.UserService
}

func NewProfileHandler(userService *services.UserService) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// ProfileRouter registers profile routes on the given router. Every
// route requires a verified token.
func ProfileRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewProfileHandler(userService)

	r.With(authMiddleware).Get("/", handler.GetProfile)
	r.With(authMiddleware).Put("/", handler.UpdateProfile)
}

// ProfileResponse is the non-credential subset of the user row.
type ProfileResponse struct {
	Email      string  `json:"email"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Bio        *string `json:"bio"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		Role:       user.Role,
		Department: user.Department,
		Bio:        user.Bio,
	})
}

// UpdateProfile overwrites every profile attribute. Fields absent from
// the request body persist as NULL; callers resend the full set.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var profile types.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.UpdateProfile(r.Context(), email, profile); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
