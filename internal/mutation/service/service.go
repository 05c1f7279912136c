// Package service implements the mutation engine: lifecycle events applied as
// atomic multi-entity transactions. Each event type validates its input up
// front, then performs every resident, household, and log write inside one
// registry transaction; a failure at any point leaves no partial state.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warga/internal/household"
	"warga/internal/mutation"
	"warga/internal/mutation/metrics"
	"warga/internal/registry"
	"warga/internal/resident"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/sentinel"
	"warga/pkg/requestcontext"
)

// Engine applies lifecycle mutations.
type Engine struct {
	tx      registry.TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine constructs a mutation engine over the given transaction runner.
func NewEngine(tx registry.TxRunner, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{tx: tx, logger: logger, metrics: m}
}

// NewResidentInput describes the resident created by a BIRTH or MIGRATE_IN
// event.
type NewResidentInput struct {
	NationalID string
	Name       string
	BirthPlace string
	BirthDate  time.Time
	// Role optionally overrides the default family role for MIGRATE_IN.
	// BIRTH always registers the newborn as CHILD.
	Role resident.FamilyRole
}

// ApplyRequest is the engine's single entry point payload.
type ApplyRequest struct {
	Type        mutation.EventType
	SubjectID   id.ResidentID
	NewResident *NewResidentInput
	Date        time.Time
	Note        string
	Origin      string
	Destination string
	HouseholdID *id.HouseholdID
	ActorID     id.ActorID
}

// ApplyResult carries the appended event and the resident it touched.
type ApplyResult struct {
	Event    *mutation.Event
	Resident *resident.Resident
}

// Apply validates and executes one lifecycle mutation.
func (e *Engine) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if !mutation.ValidEventType(req.Type) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown event type: %s", req.Type)
	}
	if req.ActorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "actor is required")
	}
	if req.Date.IsZero() {
		req.Date = requestcontext.Now(ctx)
	}

	var result *ApplyResult
	var err error
	switch req.Type {
	case mutation.EventBirth, mutation.EventMigrateIn:
		result, err = e.applyArrival(ctx, req)
	case mutation.EventDeath:
		result, err = e.applyDeath(ctx, req)
	case mutation.EventMigrateOut:
		result, err = e.applyMigrateOut(ctx, req)
	}
	if err != nil {
		e.metrics.RecordFailed(string(req.Type))
		return nil, err
	}

	e.metrics.RecordApplied(string(req.Type))
	e.logger.InfoContext(ctx, "mutation applied",
		"request_id", requestcontext.RequestID(ctx),
		"event_type", req.Type,
		"event_id", result.Event.ID,
		"subject_id", result.Event.SubjectID,
		"actor_id", req.ActorID,
	)
	return result, nil
}

// applyArrival handles BIRTH and MIGRATE_IN: both create a new ACTIVE
// resident, optionally linked to a household, and differ only in default role
// and the required origin locality.
func (e *Engine) applyArrival(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if req.NewResident == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "new resident data is required")
	}
	if req.Type == mutation.EventMigrateIn && req.Origin == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "origin locality is required for migrate-in")
	}

	nationalID, err := id.ParseNationalID(req.NewResident.NationalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid national id")
	}
	if req.NewResident.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "resident name is required")
	}

	role := resident.RoleChild
	if req.Type == mutation.EventMigrateIn {
		role = resident.RoleOtherRelative
		if req.NewResident.Role != "" {
			if !resident.ValidRole(req.NewResident.Role) {
				return nil, dErrors.Newf(dErrors.CodeValidation, "unknown family role: %s", req.NewResident.Role)
			}
			// Head designation goes through the household service so the
			// single-head invariant is enforced in one place.
			if req.NewResident.Role == resident.RoleHead {
				return nil, dErrors.New(dErrors.CodeValidation, "migrate-in cannot designate a household head")
			}
			role = req.NewResident.Role
		}
	}

	now := requestcontext.Now(ctx)
	newResident := &resident.Resident{
		ID:          id.NewResidentID(),
		NationalID:  nationalID,
		Name:        req.NewResident.Name,
		BirthPlace:  req.NewResident.BirthPlace,
		BirthDate:   req.NewResident.BirthDate,
		Role:        role,
		Status:      resident.StatusActive,
		HouseholdID: req.HouseholdID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	event := e.newEvent(ctx, newResident.ID, req)

	err = e.tx.RunInTx(ctx, func(s registry.Stores) error {
		if req.HouseholdID != nil {
			// Locked read so a concurrent household deletion cannot slip
			// between this check and the resident insert.
			if _, err := s.Households.FindByIDForUpdate(ctx, *req.HouseholdID); err != nil {
				return translateStoreErr(err, "household")
			}
		}
		if err := s.Residents.Create(ctx, newResident); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "national id is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "create resident")
		}
		if err := s.Events.Append(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "append mutation event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Event: event, Resident: newResident}, nil
}

func (e *Engine) applyDeath(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if req.SubjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject resident is required")
	}

	var subject *resident.Resident
	event := e.newEvent(ctx, req.SubjectID, req)

	err := e.tx.RunInTx(ctx, func(s registry.Stores) error {
		found, err := s.Residents.FindByIDForUpdate(ctx, req.SubjectID)
		if err != nil {
			return translateStoreErr(err, "resident")
		}
		if !found.IsActive() {
			return dErrors.Newf(dErrors.CodeConflict, "resident is %s, not ACTIVE", found.Status)
		}

		// Household linkage stays in place; the record remains part of the
		// household's history.
		found.Status = resident.StatusDeceased
		found.UpdatedAt = requestcontext.Now(ctx)
		if err := s.Residents.Update(ctx, found); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update resident")
		}
		if err := s.Events.Append(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "append mutation event")
		}
		subject = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Event: event, Resident: subject}, nil
}

func (e *Engine) applyMigrateOut(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if req.SubjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject resident is required")
	}
	if req.Destination == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "destination locality is required for migrate-out")
	}

	var subject *resident.Resident
	event := e.newEvent(ctx, req.SubjectID, req)

	err := e.tx.RunInTx(ctx, func(s registry.Stores) error {
		found, err := s.Residents.FindByIDForUpdate(ctx, req.SubjectID)
		if err != nil {
			return translateStoreErr(err, "resident")
		}
		if !found.IsActive() {
			return dErrors.Newf(dErrors.CodeConflict, "resident is %s, not ACTIVE", found.Status)
		}

		// The member leaves the household roll immediately. If they headed
		// the household, the head slot opens up too.
		if found.HouseholdID != nil {
			if err := clearMembership(ctx, s.Households, *found.HouseholdID, found.ID); err != nil {
				return err
			}
			found.HouseholdID = nil
		}

		found.Status = resident.StatusRelocated
		found.UpdatedAt = requestcontext.Now(ctx)
		if err := s.Residents.Update(ctx, found); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update resident")
		}
		if err := s.Events.Append(ctx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "append mutation event")
		}
		subject = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ApplyResult{Event: event, Resident: subject}, nil
}

func (e *Engine) newEvent(ctx context.Context, subjectID id.ResidentID, req ApplyRequest) *mutation.Event {
	return &mutation.Event{
		ID:          id.NewEventID(),
		SubjectID:   subjectID,
		Type:        req.Type,
		Date:        req.Date,
		Note:        req.Note,
		Origin:      req.Origin,
		Destination: req.Destination,
		ActorID:     req.ActorID,
		CreatedAt:   requestcontext.Now(ctx),
	}
}

// clearMembership drops the head reference when the departing resident held
// it, keeping household.HeadID mirrored with the member side.
func clearMembership(ctx context.Context, households household.Store, householdID id.HouseholdID, residentID id.ResidentID) error {
	hh, err := households.FindByIDForUpdate(ctx, householdID)
	if err != nil {
		return translateStoreErr(err, "household")
	}
	if hh.HeadID != nil && *hh.HeadID == residentID {
		hh.HeadID = nil
		hh.UpdatedAt = requestcontext.Now(ctx)
		if err := households.Update(ctx, hh); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update household")
		}
	}
	return nil
}

func translateStoreErr(err error, entity string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", entity)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
}
