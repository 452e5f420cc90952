package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/devtrail/devtrail-be/internal/auth"
	"github.com/devtrail/devtrail-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and credential flows.
type AuthHandler struct {
	users  services.UserServiceProvider
	issuer *auth.TokenIssuer
	expire time.Duration
	isProd bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, issuer *auth.TokenIssuer, expire time.Duration, isProd bool) *AuthHandler {
	return &AuthHandler{users: users, issuer: issuer, expire: expire, isProd: isProd}
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

// Register handles new account registration. New accounts always get the
// default role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	user, err := h.users.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.sendTokenResponse(w, r, http.StatusCreated, user.ID)
}

// Login handles authentication and session token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		respondError(w, r, err)
		return
	}

	h.sendTokenResponse(w, r, http.StatusOK, user.ID)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HttpOnly: true,
		Path:     "/",
	})
	respondJSON(w, http.StatusOK, struct{}{})
}

// GetMe returns the currently authenticated account.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateDetails updates the authenticated account's name and email.
func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	user, err := h.users.UpdateDetails(requester.ID, payload.Name, payload.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdatePassword changes the authenticated account's password after
// verifying the current one, then issues a fresh session token.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	if err := h.users.UpdatePassword(requester.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}

	h.sendTokenResponse(w, r, http.StatusOK, requester.ID)
}

// ForgotPassword issues a password-reset token for the given email. The raw
// token is delivered out-of-band; the response never contains it.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	if _, err := h.users.ForgotPassword(payload.Email); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "reset token issued")
}

// ResetPassword consumes a reset token from the URL and sets a new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperr.Validationf("invalid request body"))
		return
	}

	user, err := h.users.ResetPassword(token, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.sendTokenResponse(w, r, http.StatusOK, user.ID)
}

// RequestEmailConfirm issues an email-confirmation token for the
// authenticated account. Delivery is out-of-band, as with reset tokens.
func (h *AuthHandler) RequestEmailConfirm(w http.ResponseWriter, r *http.Request) {
	requester, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, r, apperr.NotAuthenticated())
		return
	}

	if _, err := h.users.IssueEmailConfirmToken(requester.ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "confirmation token issued")
}

// ConfirmEmail consumes an email-confirmation token.
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, r, apperr.Validationf("please provide a token"))
		return
	}

	if err := h.users.ConfirmEmail(token); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "email confirmed")
}

// sendTokenResponse issues a session token, sets it as an HTTP-only cookie
// and returns it in the body.
func (h *AuthHandler) sendTokenResponse(w http.ResponseWriter, r *http.Request, status int, userID string) {
	token, err := h.issuer.Issue(userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(h.expire),
		HttpOnly: true,
		Secure:   h.isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respondToken(w, status, token)
}
