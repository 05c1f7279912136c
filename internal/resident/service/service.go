// Package service covers direct resident record management: registration and
// edits. Lifecycle transitions (death, migration) belong to the mutation
// engine, never to plain edits.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warga/internal/mutation"
	"warga/internal/registry"
	"warga/internal/resident"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/sentinel"
	"warga/pkg/requestcontext"
)

// Service manages resident records.
type Service struct {
	tx        registry.TxRunner
	residents resident.Store
	events    mutation.Store
	logger    *slog.Logger
}

// NewService constructs a resident service. The residents and events stores
// are the non-transactional read side; writes go through tx.
func NewService(tx registry.TxRunner, residents resident.Store, events mutation.Store, logger *slog.Logger) *Service {
	return &Service{tx: tx, residents: residents, events: events, logger: logger}
}

// RegisterRequest describes a resident added directly to the registry, e.g.
// during initial data capture. Arrivals by birth or migration go through the
// mutation engine instead.
type RegisterRequest struct {
	NationalID  string
	Name        string
	BirthPlace  string
	BirthDate   time.Time
	Role        resident.FamilyRole
	HouseholdID *id.HouseholdID
}

// Register creates an ACTIVE resident.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*resident.Resident, error) {
	nationalID, err := id.ParseNationalID(req.NationalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid national id")
	}
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "resident name is required")
	}
	role := req.Role
	if role == "" {
		role = resident.RoleOtherRelative
	}
	if !resident.ValidRole(role) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown family role: %s", role)
	}
	if role == resident.RoleHead {
		return nil, dErrors.New(dErrors.CodeValidation, "head designation goes through household head assignment")
	}

	now := requestcontext.Now(ctx)
	res := &resident.Resident{
		ID:          id.NewResidentID(),
		NationalID:  nationalID,
		Name:        req.Name,
		BirthPlace:  req.BirthPlace,
		BirthDate:   req.BirthDate,
		Role:        role,
		Status:      resident.StatusActive,
		HouseholdID: req.HouseholdID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tx.RunInTx(ctx, func(st registry.Stores) error {
		if req.HouseholdID != nil {
			// Locked read so a concurrent household deletion cannot slip
			// between this check and the resident insert.
			if _, err := st.Households.FindByIDForUpdate(ctx, *req.HouseholdID); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "household not found")
				}
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
			}
		}
		if err := st.Residents.Create(ctx, res); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "national id is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "create resident")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// EditRequest carries the editable identity fields. Status, role, and
// household linkage are deliberately absent; those change only through the
// mutation engine and the household service.
type EditRequest struct {
	ResidentID id.ResidentID
	Name       string
	BirthPlace string
	BirthDate  time.Time
}

// Edit updates identity fields of an ACTIVE resident.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*resident.Resident, error) {
	if req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "resident name is required")
	}

	var updated *resident.Resident
	err := s.tx.RunInTx(ctx, func(st registry.Stores) error {
		res, err := st.Residents.FindByIDForUpdate(ctx, req.ResidentID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "resident not found")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
		}
		if !res.IsActive() {
			return dErrors.Newf(dErrors.CodeConflict, "resident is %s, not ACTIVE", res.Status)
		}

		res.Name = req.Name
		res.BirthPlace = req.BirthPlace
		if !req.BirthDate.IsZero() {
			res.BirthDate = req.BirthDate
		}
		res.UpdatedAt = requestcontext.Now(ctx)
		if err := st.Residents.Update(ctx, res); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update resident")
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get returns one resident by ID.
func (s *Service) Get(ctx context.Context, residentID id.ResidentID) (*resident.Resident, error) {
	res, err := s.residents.FindByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resident not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
	}
	return res, nil
}

// History returns the resident's mutation log, oldest first.
func (s *Service) History(ctx context.Context, residentID id.ResidentID) ([]*mutation.Event, error) {
	if _, err := s.Get(ctx, residentID); err != nil {
		return nil, err
	}
	events, err := s.events.ListBySubject(ctx, residentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list mutation events")
	}
	return events, nil
}
