package services

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/devtrail/devtrail-be/internal/models"
	ws "github.com/devtrail/devtrail-be/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for activity event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, subjectID *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records activity events and pushes them onto the live feed.
type EventService struct {
	db  *sql.DB
	hub *ws.Hub
}

// NewEventService creates a new EventService. The hub may be nil when no
// live feed is wired (tests).
func NewEventService(db *sql.DB, hub *ws.Hub) *EventService {
	return &EventService{db: db, hub: hub}
}

// CreateEvent logs a new event to the database and broadcasts it.
func (s *EventService) CreateEvent(eventType, level, message string, subjectID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		SubjectID: subjectID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec("INSERT INTO events (id, type, level, message, subject_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.SubjectID, event.CreatedAt)
	if err != nil {
		return err
	}

	if s.hub != nil {
		payload, err := json.Marshal(ws.Message{Action: "event", Payload: event})
		if err != nil {
			log.Error().Err(err).Str("event_type", eventType).Msg("Failed to encode event for feed")
			return nil
		}
		s.hub.Publish(payload)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, subject_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.SubjectID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
