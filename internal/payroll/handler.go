package payroll

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salonos/salonos/internal/platform/httpx"
)

// Handler manages payroll endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/cycles/{id}", h.showCycle)
		r.Post("/cycles/{id}/process", h.processCycle)
		r.Post("/cycles/{id}/approve", h.approveCycle)
		r.Post("/cycles/{id}/pay", h.payCycle)
		r.Post("/entries/{id}/pay", h.payEntry)
		r.Get("/entries/{id}/payslip", h.showPayslip)
	})
}

type cycleResponse struct {
	Cycle   Cycle   `json:"cycle"`
	Entries []Entry `json:"entries,omitempty"`
}

func (h *Handler) showCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cycle, entries, err := h.service.GetCycle(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cycleResponse{Cycle: cycle, Entries: entries})
}

func (h *Handler) processCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, err := actorID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cycle, entries, err := h.service.ProcessCycle(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cycleResponse{Cycle: cycle, Entries: entries})
}

func (h *Handler) approveCycle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *Handler) payCycle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Pay)
}

func (h *Handler) payEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, err := actorID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.PayEntry(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) showPayslip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payslip, err := h.service.GetPayslip(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payslip)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, cycleID, actorID int64) (Cycle, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, err := actorID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cycle, err := op(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cycleResponse{Cycle: cycle})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var invalid *InvalidTransitionError
	var negative *NegativeNetPayableError

	switch {
	case errors.Is(err, ErrCycleNotFound), errors.Is(err, ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &invalid):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrAlreadyPaid):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.As(err, &negative), errors.Is(err, ErrNoCompensation):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	default:
		h.logger.Error("payroll operation", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

// actorID reads the authenticated staff member from the X-Staff-ID header
// set by the upstream gateway.
func actorID(r *http.Request) (int64, error) {
	raw := r.Header.Get("X-Staff-ID")
	if raw == "" {
		return 0, errors.New("missing X-Staff-ID header")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid X-Staff-ID header")
	}
	return id, nil
}
