// Package service enforces the household invariants: one head at most,
// mirrored on both the household and the member, and no deletion while active
// members remain.
package service

import (
	"context"
	"errors"
	"log/slog"

	"warga/internal/household"
	"warga/internal/registry"
	"warga/internal/resident"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/sentinel"
	"warga/pkg/requestcontext"
)

// Service manages household records.
type Service struct {
	tx         registry.TxRunner
	households household.Store
	logger     *slog.Logger
}

// NewService constructs a household service. The households store is the
// non-transactional read side; writes go through tx.
func NewService(tx registry.TxRunner, households household.Store, logger *slog.Logger) *Service {
	return &Service{tx: tx, households: households, logger: logger}
}

// RegisterRequest describes a new household.
type RegisterRequest struct {
	Number  string
	Address string
	Hamlet  string
	RT      string
	RW      string
}

// Register creates a household with a unique number and no head.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*household.Household, error) {
	number, err := id.ParseHouseholdNumber(req.Number)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid household number")
	}

	now := requestcontext.Now(ctx)
	hh := &household.Household{
		ID:        id.NewHouseholdID(),
		Number:    number,
		Address:   req.Address,
		Hamlet:    req.Hamlet,
		RT:        req.RT,
		RW:        req.RW,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tx.RunInTx(ctx, func(st registry.Stores) error {
		if err := st.Households.Create(ctx, hh); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "household number is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "create household")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hh, nil
}

// Get returns one household by ID.
func (s *Service) Get(ctx context.Context, householdID id.HouseholdID) (*household.Household, error) {
	hh, err := s.households.FindByID(ctx, householdID)
	if err != nil {
		return nil, translateStoreErr(err, "household")
	}
	return hh, nil
}

// SetHead designates an ACTIVE member as the household head. The current head
// must be cleared (via RemoveMember or a prior head change) first; silent
// replacement would hide bookkeeping mistakes.
func (s *Service) SetHead(ctx context.Context, householdID id.HouseholdID, residentID id.ResidentID) error {
	return s.tx.RunInTx(ctx, func(st registry.Stores) error {
		// Locked read: two concurrent assignments must not both observe an
		// empty head slot and flag two members as HEAD.
		hh, err := st.Households.FindByIDForUpdate(ctx, householdID)
		if err != nil {
			return translateStoreErr(err, "household")
		}
		if hh.HasHead() {
			return dErrors.New(dErrors.CodeConflict, "household already has a head")
		}

		res, err := st.Residents.FindByIDForUpdate(ctx, residentID)
		if err != nil {
			return translateStoreErr(err, "resident")
		}
		if !res.IsActive() {
			return dErrors.Newf(dErrors.CodeConflict, "resident is %s, not ACTIVE", res.Status)
		}
		if res.HouseholdID == nil || *res.HouseholdID != householdID {
			return dErrors.New(dErrors.CodeConflict, "resident is not a member of the household")
		}

		now := requestcontext.Now(ctx)
		hh.HeadID = &res.ID
		hh.UpdatedAt = now
		res.Role = resident.RoleHead
		res.UpdatedAt = now

		if err := st.Households.Update(ctx, hh); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update household")
		}
		if err := st.Residents.Update(ctx, res); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update resident")
		}
		return nil
	})
}

// RemoveMember clears a resident's household linkage. If the resident was the
// head, the household's head reference is cleared in the same transaction.
func (s *Service) RemoveMember(ctx context.Context, householdID id.HouseholdID, residentID id.ResidentID) error {
	return s.tx.RunInTx(ctx, func(st registry.Stores) error {
		hh, err := st.Households.FindByIDForUpdate(ctx, householdID)
		if err != nil {
			return translateStoreErr(err, "household")
		}
		res, err := st.Residents.FindByIDForUpdate(ctx, residentID)
		if err != nil {
			return translateStoreErr(err, "resident")
		}
		if res.HouseholdID == nil || *res.HouseholdID != householdID {
			return dErrors.New(dErrors.CodeConflict, "resident is not a member of the household")
		}

		now := requestcontext.Now(ctx)
		res.HouseholdID = nil
		res.UpdatedAt = now
		if err := st.Residents.Update(ctx, res); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update resident")
		}

		if hh.HeadID != nil && *hh.HeadID == residentID {
			hh.HeadID = nil
			hh.UpdatedAt = now
			if err := st.Households.Update(ctx, hh); err != nil {
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "update household")
			}
		}
		return nil
	})
}

// Delete removes a household. It fails while any member with status ACTIVE is
// still linked; deceased and relocated members do not block deletion.
func (s *Service) Delete(ctx context.Context, householdID id.HouseholdID) error {
	return s.tx.RunInTx(ctx, func(st registry.Stores) error {
		// Locked read so membership changes for this household serialize
		// with the deletion check.
		if _, err := st.Households.FindByIDForUpdate(ctx, householdID); err != nil {
			return translateStoreErr(err, "household")
		}
		active, err := st.Residents.CountActiveMembers(ctx, householdID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "count household members")
		}
		if active > 0 {
			return dErrors.Newf(dErrors.CodeConflict, "household still has %d active member(s)", active)
		}
		if err := st.Households.Delete(ctx, householdID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "delete household")
		}
		return nil
	})
}

func translateStoreErr(err error, entity string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", entity)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
}
