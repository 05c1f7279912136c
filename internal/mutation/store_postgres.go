package mutation

import (
	"context"
	"database/sql"
	"fmt"

	id "warga/pkg/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same store code runs
// standalone or inside a registry transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists mutation events in PostgreSQL. The table carries no
// UPDATE or DELETE path; inserts are the only write.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO mutation_events (id, subject_id, event_type, event_date, note, origin, destination, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID.String(), event.SubjectID.String(), string(event.Type), event.Date,
		event.Note, event.Origin, event.Destination, event.ActorID.String(), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append mutation event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.ResidentID) ([]*Event, error) {
	query := `
		SELECT id, subject_id, event_type, event_date, note, origin, destination, actor_id, created_at
		FROM mutation_events
		WHERE subject_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subjectID.String())
	if err != nil {
		return nil, fmt.Errorf("list mutation events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var event Event
		var eventID, subject, eventType, actorID string
		if err := rows.Scan(&eventID, &subject, &eventType, &event.Date, &event.Note,
			&event.Origin, &event.Destination, &actorID, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mutation event: %w", err)
		}
		parsedEventID, err := parseUUIDs(eventID, subject, actorID, &event)
		if err != nil {
			return nil, err
		}
		event.ID = parsedEventID
		event.Type = EventType(eventType)
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mutation events: %w", err)
	}
	return events, nil
}

func parseUUIDs(eventID, subject, actorID string, event *Event) (id.EventID, error) {
	parsedSubject, err := id.ParseResidentID(subject)
	if err != nil {
		return id.EventID{}, fmt.Errorf("scan mutation event: %w", err)
	}
	event.SubjectID = parsedSubject

	parsedActor, err := id.ParseActorID(actorID)
	if err != nil {
		return id.EventID{}, fmt.Errorf("scan mutation event: %w", err)
	}
	event.ActorID = parsedActor

	parsedEvent, err := id.ParseEventID(eventID)
	if err != nil {
		return id.EventID{}, fmt.Errorf("scan mutation event: %w", err)
	}
	return parsedEvent, nil
}
