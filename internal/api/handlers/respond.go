package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/devtrail/devtrail-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// envelope is the response shape every endpoint uses.
type envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope{Success: true, Count: &count, Data: data})
}

func respondToken(w http.ResponseWriter, status int, token string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Token: token})
}

// respondError maps an error to its HTTP status. Server-side causes are
// logged here and replaced with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: apperr.Message(err)})
}
