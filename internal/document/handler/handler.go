// Package handler exposes the document workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"warga/internal/document"
	"warga/internal/document/service"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/httputil"
	"warga/pkg/requestcontext"
)

// Service defines the document workflow operations the handler needs.
type Service interface {
	Create(ctx context.Context, req service.CreateRequest) (*document.Request, error)
	Edit(ctx context.Context, requestID id.DocumentRequestID, payload document.Payload, actorID id.ActorID) (*document.Request, error)
	Submit(ctx context.Context, requestID id.DocumentRequestID, actorID id.ActorID) (*document.Request, error)
	Approve(ctx context.Context, requestID id.DocumentRequestID, approverID id.ActorID) (*document.Request, error)
	Reject(ctx context.Context, requestID id.DocumentRequestID, approverID id.ActorID, reason string) (*document.Request, error)
	Get(ctx context.Context, requestID id.DocumentRequestID) (*document.Request, error)
}

// Handler handles document request endpoints.
type Handler struct {
	logger    *slog.Logger
	documents Service
}

// New creates a new document Handler.
func New(documents Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, documents: documents}
}

// Register registers the document routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{requestID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Patch("/", h.handleEdit)
			r.Post("/submit", h.handleSubmit)
			r.Post("/approve", h.handleApprove)
			r.Post("/reject", h.handleReject)
		})
	})
}

type createRequest struct {
	DocumentType string          `json:"documentType"`
	SubjectID    string          `json:"subjectId"`
	Payload      json.RawMessage `json:"payload"`
}

type editRequest struct {
	Payload json.RawMessage `json:"payload"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type requestResponse struct {
	ID              string     `json:"id"`
	DocumentType    string     `json:"documentType"`
	SubjectID       string     `json:"subjectId"`
	Status          string     `json:"status"`
	Payload         any        `json:"payload"`
	DocumentNumber  *string    `json:"documentNumber"`
	RejectionReason *string    `json:"rejectionReason"`
	CreatedBy       string     `json:"createdBy"`
	DecidedBy       *string    `json:"decidedBy,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[createRequest](w, r)
	if !ok {
		return
	}

	docType, err := id.ParseDocumentType(req.DocumentType)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid documentType"))
		return
	}
	subjectID, err := id.ParseResidentID(req.SubjectID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid subjectId"))
		return
	}
	payload, err := document.DecodePayload(docType, req.Payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.documents.Create(ctx, service.CreateRequest{
		Type:      docType,
		SubjectID: subjectID,
		Payload:   payload,
		ActorID:   requestcontext.ActorID(ctx),
	})
	if err != nil {
		h.warn(ctx, "create document request failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}

	request, err := h.documents.Get(r.Context(), requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[editRequest](w, r)
	if !ok {
		return
	}

	// The payload variant is tagged by the stored request's type, so the type
	// must be read before the raw payload can be decoded.
	existing, err := h.documents.Get(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	payload, err := document.DecodePayload(existing.Type, req.Payload)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := h.documents.Edit(ctx, requestID, payload, requestcontext.ActorID(ctx))
	if err != nil {
		h.warn(ctx, "edit document request failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "submit", func(ctx context.Context, requestID id.DocumentRequestID) (*document.Request, error) {
		return h.documents.Submit(ctx, requestID, requestcontext.ActorID(ctx))
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", func(ctx context.Context, requestID id.DocumentRequestID) (*document.Request, error) {
		return h.documents.Approve(ctx, requestID, requestcontext.ActorID(ctx))
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[rejectRequest](w, r)
	if !ok {
		return
	}

	request, err := h.documents.Reject(ctx, requestID, requestcontext.ActorID(ctx), req.Reason)
	if err != nil {
		h.warn(ctx, "reject document request failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, id.DocumentRequestID) (*document.Request, error)) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}

	request, err := fn(ctx, requestID)
	if err != nil {
		h.warn(ctx, name+" document request failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(request))
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (id.DocumentRequestID, bool) {
	requestID, err := id.ParseDocumentRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request id"))
		return id.DocumentRequestID{}, false
	}
	return requestID, true
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}

func toRequestResponse(request *document.Request) requestResponse {
	resp := requestResponse{
		ID:           request.ID.String(),
		DocumentType: request.Type.String(),
		SubjectID:    request.SubjectID.String(),
		Status:       string(request.Status),
		Payload:      request.Payload,
		CreatedBy:    request.CreatedBy.String(),
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
		SubmittedAt:  request.SubmittedAt,
		DecidedAt:    request.DecidedAt,
	}
	if request.Number != "" {
		resp.DocumentNumber = &request.Number
	}
	if request.RejectionReason != "" {
		reason := request.RejectionReason
		resp.RejectionReason = &reason
	}
	if !request.DecidedBy.IsNil() {
		decidedBy := request.DecidedBy.String()
		resp.DecidedBy = &decidedBy
	}
	return resp
}
