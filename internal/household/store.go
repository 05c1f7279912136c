package household

import (
	"context"

	id "warga/pkg/domain"
)

// Store persists household records. Implementations return sentinel errors so
// services can translate them into domain errors.
type Store interface {
	// Create inserts a new household. Returns sentinel.ErrAlreadyUsed when
	// the household number is already registered.
	Create(ctx context.Context, hh *Household) error
	// FindByID returns the household or sentinel.ErrNotFound.
	FindByID(ctx context.Context, householdID id.HouseholdID) (*Household, error)
	// FindByIDForUpdate is FindByID with the row locked for the rest of the
	// enclosing transaction. Head assignment and deletion checks must read
	// through it so two transactions cannot both pass the same precondition.
	FindByIDForUpdate(ctx context.Context, householdID id.HouseholdID) (*Household, error)
	// FindByNumber returns the household or sentinel.ErrNotFound.
	FindByNumber(ctx context.Context, number id.HouseholdNumber) (*Household, error)
	// Update overwrites an existing household.
	Update(ctx context.Context, hh *Household) error
	// Delete removes the household. Member count preconditions are the
	// service's responsibility.
	Delete(ctx context.Context, householdID id.HouseholdID) error
}
