package document

import (
	"context"

	id "warga/pkg/domain"
)

// Store persists certificate requests. Implementations return sentinel errors
// so services can translate them into domain errors.
type Store interface {
	Create(ctx context.Context, req *Request) error
	// FindByID returns the request or sentinel.ErrNotFound.
	FindByID(ctx context.Context, requestID id.DocumentRequestID) (*Request, error)
	// FindByIDForUpdate is FindByID with the row locked for the rest of the
	// enclosing transaction. Status transitions must read through it so two
	// concurrent transitions cannot both observe the same pre-transition
	// status.
	FindByIDForUpdate(ctx context.Context, requestID id.DocumentRequestID) (*Request, error)
	// Update overwrites an existing request.
	Update(ctx context.Context, req *Request) error
}
