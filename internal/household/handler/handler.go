// Package handler exposes household management over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"warga/internal/household"
	"warga/internal/household/service"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/platform/httputil"
	"warga/pkg/requestcontext"
)

// Service defines the household operations the handler needs.
type Service interface {
	Register(ctx context.Context, req service.RegisterRequest) (*household.Household, error)
	Get(ctx context.Context, householdID id.HouseholdID) (*household.Household, error)
	SetHead(ctx context.Context, householdID id.HouseholdID, residentID id.ResidentID) error
	RemoveMember(ctx context.Context, householdID id.HouseholdID, residentID id.ResidentID) error
	Delete(ctx context.Context, householdID id.HouseholdID) error
}

// Handler handles household endpoints.
type Handler struct {
	logger     *slog.Logger
	households Service
}

// New creates a new household Handler.
func New(households Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, households: households}
}

// Register registers the household routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/households", func(r chi.Router) {
		r.Post("/", h.handleRegister)
		r.Route("/{householdID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Put("/head", h.handleSetHead)
			r.Delete("/members/{residentID}", h.handleRemoveMember)
		})
	})
}

type registerRequest struct {
	Number  string `json:"number"`
	Address string `json:"address"`
	Hamlet  string `json:"hamlet,omitempty"`
	RT      string `json:"rt,omitempty"`
	RW      string `json:"rw,omitempty"`
}

type setHeadRequest struct {
	ResidentID string `json:"residentId"`
}

type householdResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Address   string    `json:"address"`
	Hamlet    string    `json:"hamlet,omitempty"`
	RT        string    `json:"rt,omitempty"`
	RW        string    `json:"rw,omitempty"`
	HeadID    *string   `json:"headId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[registerRequest](w, r)
	if !ok {
		return
	}

	hh, err := h.households.Register(ctx, service.RegisterRequest{
		Number:  req.Number,
		Address: req.Address,
		Hamlet:  req.Hamlet,
		RT:      req.RT,
		RW:      req.RW,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "household registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toHouseholdResponse(hh))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	householdID, ok := h.householdID(w, r)
	if !ok {
		return
	}

	hh, err := h.households.Get(r.Context(), householdID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHouseholdResponse(hh))
}

func (h *Handler) handleSetHead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	householdID, ok := h.householdID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[setHeadRequest](w, r)
	if !ok {
		return
	}
	residentID, err := id.ParseResidentID(req.ResidentID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid residentId"))
		return
	}

	if err := h.households.SetHead(ctx, householdID, residentID); err != nil {
		h.logger.WarnContext(ctx, "set household head failed",
			"request_id", requestcontext.RequestID(ctx),
			"household_id", householdID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	householdID, ok := h.householdID(w, r)
	if !ok {
		return
	}
	residentID, err := id.ParseResidentID(chi.URLParam(r, "residentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid resident id"))
		return
	}

	if err := h.households.RemoveMember(ctx, householdID, residentID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	householdID, ok := h.householdID(w, r)
	if !ok {
		return
	}

	if err := h.households.Delete(ctx, householdID); err != nil {
		h.logger.WarnContext(ctx, "household deletion failed",
			"request_id", requestcontext.RequestID(ctx),
			"household_id", householdID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) householdID(w http.ResponseWriter, r *http.Request) (id.HouseholdID, bool) {
	householdID, err := id.ParseHouseholdID(chi.URLParam(r, "householdID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid household id"))
		return id.HouseholdID{}, false
	}
	return householdID, true
}

func toHouseholdResponse(hh *household.Household) householdResponse {
	resp := householdResponse{
		ID:        hh.ID.String(),
		Number:    string(hh.Number),
		Address:   hh.Address,
		Hamlet:    hh.Hamlet,
		RT:        hh.RT,
		RW:        hh.RW,
		CreatedAt: hh.CreatedAt,
		UpdatedAt: hh.UpdatedAt,
	}
	if hh.HeadID != nil {
		headID := hh.HeadID.String()
		resp.HeadID = &headID
	}
	return resp
}
