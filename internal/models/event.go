package models

import "time"

// Event represents a loggable action in the system, e.g. a registration or
// a listing mutation. SubjectID points at the affected user or bootcamp.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g. "auth.register", "bootcamp.create"
	Level     string    `json:"level"` // "info", "warn", "error"
	Message   string    `json:"message"`
	SubjectID *string   `json:"subjectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
