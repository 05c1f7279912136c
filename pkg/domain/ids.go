// Package domain defines the registry's domain primitives. IDs are typed UUID
// wrappers so a resident ID can never be passed where a household ID is
// expected; registry numbers are validated at parse time so downstream code
// never sees a malformed one.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ResidentID uniquely identifies a resident record.
type ResidentID uuid.UUID

// HouseholdID uniquely identifies a household record.
type HouseholdID uuid.UUID

// EventID uniquely identifies a mutation event.
type EventID uuid.UUID

// DocumentRequestID uniquely identifies a certificate request.
type DocumentRequestID uuid.UUID

// ActorID identifies the staff member performing an operation.
type ActorID uuid.UUID

func NewResidentID() ResidentID               { return ResidentID(uuid.New()) }
func NewHouseholdID() HouseholdID             { return HouseholdID(uuid.New()) }
func NewEventID() EventID                     { return EventID(uuid.New()) }
func NewDocumentRequestID() DocumentRequestID { return DocumentRequestID(uuid.New()) }
func NewActorID() ActorID                     { return ActorID(uuid.New()) }

func (id ResidentID) String() string        { return uuid.UUID(id).String() }
func (id HouseholdID) String() string       { return uuid.UUID(id).String() }
func (id EventID) String() string           { return uuid.UUID(id).String() }
func (id DocumentRequestID) String() string { return uuid.UUID(id).String() }
func (id ActorID) String() string           { return uuid.UUID(id).String() }

func (id ResidentID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id HouseholdID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id DocumentRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }

// ParseResidentID parses a resident ID from its string form.
func ParseResidentID(s string) (ResidentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ResidentID{}, fmt.Errorf("parse resident id: %w", err)
	}
	return ResidentID(u), nil
}

// ParseHouseholdID parses a household ID from its string form.
func ParseHouseholdID(s string) (HouseholdID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return HouseholdID{}, fmt.Errorf("parse household id: %w", err)
	}
	return HouseholdID(u), nil
}

// ParseEventID parses a mutation event ID from its string form.
func ParseEventID(s string) (EventID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return EventID{}, fmt.Errorf("parse event id: %w", err)
	}
	return EventID(u), nil
}

// ParseDocumentRequestID parses a document request ID from its string form.
func ParseDocumentRequestID(s string) (DocumentRequestID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DocumentRequestID{}, fmt.Errorf("parse document request id: %w", err)
	}
	return DocumentRequestID(u), nil
}

// ParseActorID parses an actor ID from its string form.
func ParseActorID(s string) (ActorID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ActorID{}, fmt.Errorf("parse actor id: %w", err)
	}
	return ActorID(u), nil
}
