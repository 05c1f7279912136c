// Package service drives certificate requests through the approval workflow:
// DRAFT -> SUBMITTED -> {APPROVED, REJECTED}, with resubmission after
// rejection. Approval allocates the document number inside the same registry
// transaction, so a failed allocation leaves the request SUBMITTED and the
// counter untouched.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"warga/internal/document"
	"warga/internal/document/metrics"
	"warga/internal/registry"
	"warga/internal/sequence"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/sentinel"
	"warga/pkg/requestcontext"
)

// Service implements the document workflow.
type Service struct {
	tx        registry.TxRunner
	documents document.Store
	locality  string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService constructs a document workflow service. locality is the village
// code stamped into issued document numbers. The documents store is the
// non-transactional read side; transitions go through tx.
func NewService(tx registry.TxRunner, documents document.Store, locality string, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{tx: tx, documents: documents, locality: locality, logger: logger, metrics: m}
}

// CreateRequest opens a new draft.
type CreateRequest struct {
	Type      id.DocumentType
	SubjectID id.ResidentID
	Payload   document.Payload
	ActorID   id.ActorID
}

// Create validates the payload against its document type and opens a DRAFT
// request for an ACTIVE resident.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*document.Request, error) {
	if req.ActorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "actor is required")
	}
	if err := validatePayload(req.Type, req.Payload); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	request := &document.Request{
		ID:        id.NewDocumentRequestID(),
		Type:      req.Type,
		SubjectID: req.SubjectID,
		Status:    document.StatusDraft,
		Payload:   req.Payload,
		CreatedBy: req.ActorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.RunInTx(ctx, func(st registry.Stores) error {
		subject, err := st.Residents.FindByID(ctx, req.SubjectID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "subject resident not found")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
		}
		if !subject.IsActive() {
			return dErrors.Newf(dErrors.CodeValidation, "subject is %s, not an active resident", subject.Status)
		}
		if err := st.Documents.Create(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "create document request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(req.Type.String(), "create")
	return request, nil
}

// Edit replaces the payload of a DRAFT or REJECTED request. Only the creator
// may edit. Editing clears a prior rejection reason but leaves the status
// unchanged; a rejected request must still be explicitly resubmitted.
func (s *Service) Edit(ctx context.Context, requestID id.DocumentRequestID, payload document.Payload, actorID id.ActorID) (*document.Request, error) {
	var updated *document.Request
	err := s.tx.RunInTx(ctx, func(st registry.Stores) error {
		request, err := s.findRequest(ctx, st, requestID)
		if err != nil {
			return err
		}
		if !request.Editable() {
			return dErrors.Newf(dErrors.CodeConflict, "request is %s and cannot be edited", request.Status)
		}
		if request.CreatedBy != actorID {
			return dErrors.New(dErrors.CodeForbidden, "only the creator may edit the request")
		}
		if err := validatePayload(request.Type, payload); err != nil {
			return err
		}

		request.Payload = payload
		request.RejectionReason = ""
		request.UpdatedAt = requestcontext.Now(ctx)
		if err := st.Documents.Update(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update document request")
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(updated.Type.String(), "edit")
	return updated, nil
}

// Submit moves a DRAFT or corrected REJECTED request to SUBMITTED. Only the
// creator may submit.
func (s *Service) Submit(ctx context.Context, requestID id.DocumentRequestID, actorID id.ActorID) (*document.Request, error) {
	var updated *document.Request
	err := s.tx.RunInTx(ctx, func(st registry.Stores) error {
		request, err := s.findRequest(ctx, st, requestID)
		if err != nil {
			return err
		}
		if request.Status != document.StatusDraft && request.Status != document.StatusRejected {
			return dErrors.Newf(dErrors.CodeConflict, "request is %s and cannot be submitted", request.Status)
		}
		if request.CreatedBy != actorID {
			return dErrors.New(dErrors.CodeForbidden, "only the creator may submit the request")
		}

		now := requestcontext.Now(ctx)
		request.Status = document.StatusSubmitted
		request.SubmittedAt = &now
		request.UpdatedAt = now
		if err := st.Documents.Update(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update document request")
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(updated.Type.String(), "submit")
	return updated, nil
}

// Approve finalizes a SUBMITTED request: it allocates the next ordinal for
// (type, current year), stamps the formatted number, and records the
// approver. The allocation happens inside the same transaction as the status
// change; if either fails, the request stays SUBMITTED and the counter rolls
// back, so a caller-level retry is safe.
func (s *Service) Approve(ctx context.Context, requestID id.DocumentRequestID, approverID id.ActorID) (*document.Request, error) {
	if approverID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "approver is required")
	}

	var updated *document.Request
	err := s.tx.RunInTx(ctx, func(st registry.Stores) error {
		request, err := s.findRequest(ctx, st, requestID)
		if err != nil {
			return err
		}
		if request.Status != document.StatusSubmitted {
			return dErrors.Newf(dErrors.CodeConflict, "request is %s and cannot be approved", request.Status)
		}

		now := requestcontext.Now(ctx)
		allocStart := time.Now()
		ordinal, err := st.Sequences.Next(ctx, request.Type, now.Year())
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "allocate document number")
		}
		s.metrics.ObserveAllocationDuration(time.Since(allocStart).Seconds())

		request.Status = document.StatusApproved
		request.Number = sequence.FormatNumber(ordinal, request.Type.Code(), s.locality, now)
		request.DecidedBy = approverID
		request.DecidedAt = &now
		request.UpdatedAt = now
		if err := st.Documents.Update(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update document request")
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(updated.Type.String(), "approve")
	s.logger.InfoContext(ctx, "document approved",
		"request_id", requestcontext.RequestID(ctx),
		"document_request_id", updated.ID,
		"document_type", updated.Type,
		"number", updated.Number,
		"approver_id", approverID,
	)
	return updated, nil
}

// Reject returns a SUBMITTED request to its creator with a mandatory reason.
func (s *Service) Reject(ctx context.Context, requestID id.DocumentRequestID, approverID id.ActorID, reason string) (*document.Request, error) {
	if approverID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "approver is required")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}

	var updated *document.Request
	err := s.tx.RunInTx(ctx, func(st registry.Stores) error {
		request, err := s.findRequest(ctx, st, requestID)
		if err != nil {
			return err
		}
		if request.Status != document.StatusSubmitted {
			return dErrors.Newf(dErrors.CodeConflict, "request is %s and cannot be rejected", request.Status)
		}

		now := requestcontext.Now(ctx)
		request.Status = document.StatusRejected
		request.RejectionReason = reason
		request.Number = ""
		request.DecidedBy = approverID
		request.DecidedAt = &now
		request.UpdatedAt = now
		if err := st.Documents.Update(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "update document request")
		}
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(updated.Type.String(), "reject")
	return updated, nil
}

// Get returns one request by ID.
func (s *Service) Get(ctx context.Context, requestID id.DocumentRequestID) (*document.Request, error) {
	request, err := s.documents.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
	}
	return request, nil
}

// findRequest reads the request with its row locked, so concurrent
// transitions for the same request serialize and the second one observes the
// first one's status.
func (s *Service) findRequest(ctx context.Context, st registry.Stores, requestID id.DocumentRequestID) (*document.Request, error) {
	request, err := st.Documents.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry store failure")
	}
	return request, nil
}

func validatePayload(docType id.DocumentType, payload document.Payload) error {
	if docType.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "document type is required")
	}
	if payload == nil {
		return dErrors.New(dErrors.CodeValidation, "payload is required")
	}
	if payload.DocumentType() != docType {
		return dErrors.Newf(dErrors.CodeValidation, "payload does not match document type %s", docType)
	}
	return payload.Validate()
}
