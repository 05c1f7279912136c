package mutation

import (
	"time"

	id "warga/pkg/domain"
)

// EventType enumerates the lifecycle events the engine can record.
type EventType string

const (
	EventBirth      EventType = "BIRTH"
	EventDeath      EventType = "DEATH"
	EventMigrateIn  EventType = "MIGRATE_IN"
	EventMigrateOut EventType = "MIGRATE_OUT"
)

var validEventTypes = map[EventType]bool{
	EventBirth:      true,
	EventDeath:      true,
	EventMigrateIn:  true,
	EventMigrateOut: true,
}

// ValidEventType reports whether t is one of the known event types.
func ValidEventType(t EventType) bool {
	return validEventTypes[t]
}

// Event is one immutable entry in the mutation log. Events are appended inside
// the same transaction as the resident writes they describe and are never
// updated or deleted afterwards.
type Event struct {
	ID          id.EventID
	SubjectID   id.ResidentID
	Type        EventType
	Date        time.Time
	Note        string
	Origin      string
	Destination string
	ActorID     id.ActorID
	CreatedAt   time.Time
}
