package mutation

import (
	"context"

	id "warga/pkg/domain"
)

// Store is the append-only mutation log. There is deliberately no update or
// delete; the log is the registry's historical record.
type Store interface {
	Append(ctx context.Context, event *Event) error
	// ListBySubject returns events for one resident, oldest first.
	ListBySubject(ctx context.Context, subjectID id.ResidentID) ([]*Event, error)
}
