// Package handler exposes resident record management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"warga/internal/mutation"
	"warga/internal/resident"
	"warga/internal/resident/service"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/httputil"
	"warga/pkg/requestcontext"
)

// Service defines the resident operations the handler needs.
type Service interface {
	Register(ctx context.Context, req service.RegisterRequest) (*resident.Resident, error)
	Edit(ctx context.Context, req service.EditRequest) (*resident.Resident, error)
	Get(ctx context.Context, residentID id.ResidentID) (*resident.Resident, error)
	History(ctx context.Context, residentID id.ResidentID) ([]*mutation.Event, error)
}

// Handler handles resident endpoints.
type Handler struct {
	logger    *slog.Logger
	residents Service
}

// New creates a new resident Handler.
func New(residents Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, residents: residents}
}

// Register registers the resident routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/residents", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Route("/{residentID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Patch("/", h.handleEdit)
			r.Get("/history", h.handleHistory)
		})
	})
}

type registerRequest struct {
	NationalID  string `json:"nationalId"`
	Name        string `json:"name"`
	BirthPlace  string `json:"birthPlace,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
	FamilyRole  string `json:"familyRole,omitempty"`
	HouseholdID string `json:"householdId,omitempty"`
}

type editRequest struct {
	Name       string `json:"name"`
	BirthPlace string `json:"birthPlace,omitempty"`
	BirthDate  string `json:"birthDate,omitempty"`
}

type residentResponse struct {
	ID          string    `json:"id"`
	NationalID  string    `json:"nationalId"`
	Name        string    `json:"name"`
	BirthPlace  string    `json:"birthPlace,omitempty"`
	BirthDate   string    `json:"birthDate,omitempty"`
	FamilyRole  string    `json:"familyRole"`
	Status      string    `json:"status"`
	HouseholdID *string   `json:"householdId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[registerRequest](w, r)
	if !ok {
		return
	}

	registerReq := service.RegisterRequest{
		NationalID: req.NationalID,
		Name:       req.Name,
		BirthPlace: req.BirthPlace,
		Role:       resident.FamilyRole(req.FamilyRole),
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse(time.DateOnly, req.BirthDate)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid birthDate"))
			return
		}
		registerReq.BirthDate = birthDate
	}
	if req.HouseholdID != "" {
		householdID, err := id.ParseHouseholdID(req.HouseholdID)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid householdId"))
			return
		}
		registerReq.HouseholdID = &householdID
	}

	res, err := h.residents.Register(ctx, registerReq)
	if err != nil {
		h.logger.WarnContext(ctx, "resident registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResidentResponse(res))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	residentID, ok := h.residentID(w, r)
	if !ok {
		return
	}

	res, err := h.residents.Get(r.Context(), residentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResidentResponse(res))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	residentID, ok := h.residentID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[editRequest](w, r)
	if !ok {
		return
	}

	editReq := service.EditRequest{
		ResidentID: residentID,
		Name:       req.Name,
		BirthPlace: req.BirthPlace,
	}
	if req.BirthDate != "" {
		birthDate, err := time.Parse(time.DateOnly, req.BirthDate)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid birthDate"))
			return
		}
		editReq.BirthDate = birthDate
	}

	res, err := h.residents.Edit(ctx, editReq)
	if err != nil {
		h.logger.WarnContext(ctx, "resident edit failed",
			"request_id", requestcontext.RequestID(ctx),
			"resident_id", residentID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResidentResponse(res))
}

type historyEventResponse struct {
	ID                  string    `json:"id"`
	EventType           string    `json:"eventType"`
	Date                time.Time `json:"date"`
	Note                string    `json:"note,omitempty"`
	OriginLocality      string    `json:"originLocality,omitempty"`
	DestinationLocality string    `json:"destinationLocality,omitempty"`
	ActorID             string    `json:"actorId"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	residentID, ok := h.residentID(w, r)
	if !ok {
		return
	}

	events, err := h.residents.History(r.Context(), residentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := make([]historyEventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, historyEventResponse{
			ID:                  event.ID.String(),
			EventType:           string(event.Type),
			Date:                event.Date,
			Note:                event.Note,
			OriginLocality:      event.Origin,
			DestinationLocality: event.Destination,
			ActorID:             event.ActorID.String(),
			CreatedAt:           event.CreatedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": resp})
}

func (h *Handler) residentID(w http.ResponseWriter, r *http.Request) (id.ResidentID, bool) {
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid resident id"))
		return id.ResidentID{}, false
	}
	return residentID, true
}

func toResidentResponse(res *resident.Resident) residentResponse {
	resp := residentResponse{
		ID:         res.ID.String(),
		NationalID: string(res.NationalID),
		Name:       res.Name,
		BirthPlace: res.BirthPlace,
		FamilyRole: string(res.Role),
		Status:     string(res.Status),
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}
	if !res.BirthDate.IsZero() {
		resp.BirthDate = res.BirthDate.Format(time.DateOnly)
	}
	if res.HouseholdID != nil {
		householdID := res.HouseholdID.String()
		resp.HouseholdID = &householdID
	}
	return resp
}
