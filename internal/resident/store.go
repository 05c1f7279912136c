package resident

import (
	"context"

	id "warga/pkg/domain"
)

// Store persists resident records. Implementations return sentinel errors
// (sentinel.ErrNotFound, sentinel.ErrAlreadyUsed) so services can translate
// them into domain errors.
type Store interface {
	// Create inserts a new resident. Returns sentinel.ErrAlreadyUsed when the
	// national ID is already registered.
	Create(ctx context.Context, res *Resident) error
	// FindByID returns the resident or sentinel.ErrNotFound.
	FindByID(ctx context.Context, residentID id.ResidentID) (*Resident, error)
	// FindByIDForUpdate is FindByID with the row locked for the rest of the
	// enclosing transaction. Lifecycle preconditions (resident must be ACTIVE)
	// must read through it so concurrent mutations serialize on the record.
	FindByIDForUpdate(ctx context.Context, residentID id.ResidentID) (*Resident, error)
	// FindByNationalID returns the resident or sentinel.ErrNotFound.
	FindByNationalID(ctx context.Context, nationalID id.NationalID) (*Resident, error)
	// Update overwrites an existing resident. Returns sentinel.ErrNotFound
	// when the record does not exist.
	Update(ctx context.Context, res *Resident) error
	// CountActiveMembers returns how many residents with status ACTIVE are
	// linked to the household.
	CountActiveMembers(ctx context.Context, householdID id.HouseholdID) (int, error)
}
