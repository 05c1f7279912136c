package document

import (
	"time"

	id "warga/pkg/domain"
)

// Status tracks a certificate request through its approval workflow.
// Transitions are one-directional: DRAFT -> SUBMITTED -> {APPROVED, REJECTED}.
// A REJECTED request may be corrected and resubmitted; APPROVED is terminal.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Request is one certificate request tied to a single resident.
type Request struct {
	ID              id.DocumentRequestID
	Type            id.DocumentType
	SubjectID       id.ResidentID
	Status          Status
	Payload         Payload
	Number          string
	RejectionReason string
	CreatedBy       id.ActorID
	DecidedBy       id.ActorID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SubmittedAt     *time.Time
	DecidedAt       *time.Time
}

// Editable reports whether the request may still be modified. Only drafts and
// rejected requests are; a submitted request is frozen until decided and an
// approved one is immutable forever.
func (r *Request) Editable() bool {
	return r.Status == StatusDraft || r.Status == StatusRejected
}
