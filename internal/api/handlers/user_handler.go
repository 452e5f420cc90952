package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/services"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles the admin-only account management endpoints.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// UserPayload defines the body for admin create/update requests.
type UserPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

// GetAll lists every account.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetUsers()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, users, len(users))
}

// Get retrieves a single account by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Create creates an account with an explicit role.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload UserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	user, err := h.service.CreateUser(payload.Name, payload.Email, payload.Password, payload.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Update changes an account's name, email or role. This is the only path
// through which a role can change.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload UserPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	user, err := h.service.UpdateUser(id, payload.Name, payload.Email, payload.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Delete removes an account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct{}{})
}
