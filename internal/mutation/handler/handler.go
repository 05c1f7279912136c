// Package handler exposes the mutation engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"warga/internal/mutation"
	"warga/internal/mutation/service"
	"warga/internal/resident"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/httputil"
	"warga/pkg/requestcontext"
)

// Service defines the mutation operations the handler needs.
type Service interface {
	Apply(ctx context.Context, req service.ApplyRequest) (*service.ApplyResult, error)
}

// Handler handles lifecycle mutation endpoints.
type Handler struct {
	logger    *slog.Logger
	mutations Service
}

// New creates a new mutation Handler.
func New(mutations Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, mutations: mutations}
}

// Register registers the mutation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/mutations", h.handleApply)
}

type newResidentRequest struct {
	NationalID string `json:"nationalId"`
	Name       string `json:"name"`
	BirthPlace string `json:"birthPlace,omitempty"`
	BirthDate  string `json:"birthDate,omitempty"`
	FamilyRole string `json:"familyRole,omitempty"`
}

type applyRequest struct {
	EventType           string              `json:"eventType"`
	SubjectID           string              `json:"subjectId,omitempty"`
	NewResident         *newResidentRequest `json:"newResident,omitempty"`
	Date                string              `json:"date,omitempty"`
	Note                string              `json:"note,omitempty"`
	OriginLocality      string              `json:"originLocality,omitempty"`
	DestinationLocality string              `json:"destinationLocality,omitempty"`
	HouseholdID         string              `json:"householdId,omitempty"`
}

type eventResponse struct {
	ID                  string    `json:"id"`
	EventType           string    `json:"eventType"`
	SubjectID           string    `json:"subjectId"`
	Date                time.Time `json:"date"`
	Note                string    `json:"note,omitempty"`
	OriginLocality      string    `json:"originLocality,omitempty"`
	DestinationLocality string    `json:"destinationLocality,omitempty"`
	ActorID             string    `json:"actorId"`
	CreatedAt           time.Time `json:"createdAt"`
}

type applyResponse struct {
	Event      eventResponse `json:"event"`
	ResidentID string        `json:"residentId"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[applyRequest](w, r)
	if !ok {
		return
	}

	applyReq := service.ApplyRequest{
		Type:        mutation.EventType(req.EventType),
		Note:        req.Note,
		Origin:      req.OriginLocality,
		Destination: req.DestinationLocality,
		ActorID:     requestcontext.ActorID(ctx),
	}

	if req.SubjectID != "" {
		subjectID, err := id.ParseResidentID(req.SubjectID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid subjectId"))
			return
		}
		applyReq.SubjectID = subjectID
	}
	if req.HouseholdID != "" {
		householdID, err := id.ParseHouseholdID(req.HouseholdID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid householdId"))
			return
		}
		applyReq.HouseholdID = &householdID
	}
	if req.Date != "" {
		date, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid date"))
			return
		}
		applyReq.Date = date
	}
	if req.NewResident != nil {
		input := service.NewResidentInput{
			NationalID: req.NewResident.NationalID,
			Name:       req.NewResident.Name,
			BirthPlace: req.NewResident.BirthPlace,
			Role:       resident.FamilyRole(req.NewResident.FamilyRole),
		}
		if req.NewResident.BirthDate != "" {
			birthDate, err := time.Parse(time.DateOnly, req.NewResident.BirthDate)
			if err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid newResident.birthDate"))
				return
			}
			input.BirthDate = birthDate
		}
		applyReq.NewResident = &input
	}

	result, err := h.mutations.Apply(ctx, applyReq)
	if err != nil {
		h.logger.WarnContext(ctx, "mutation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"event_type", req.EventType,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, applyResponse{
		Event:      toEventResponse(result.Event),
		ResidentID: result.Resident.ID.String(),
	})
}

func toEventResponse(event *mutation.Event) eventResponse {
	return eventResponse{
		ID:                  event.ID.String(),
		EventType:           string(event.Type),
		SubjectID:           event.SubjectID.String(),
		Date:                event.Date,
		Note:                event.Note,
		OriginLocality:      event.Origin,
		DestinationLocality: event.Destination,
		ActorID:             event.ActorID.String(),
		CreatedAt:           event.CreatedAt,
	}
}
