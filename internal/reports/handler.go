package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/salonos/salonos/internal/platform/httpx"
)

// Handler manages report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/daily", h.daily)
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	salonID, err := strconv.ParseInt(r.URL.Query().Get("salon_id"), 10, 64)
	if err != nil || salonID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "salon_id query parameter required")
		return
	}
	date := r.URL.Query().Get("date")

	summary, err := h.service.Daily(r.Context(), salonID, date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("daily report", slog.Int64("salon_id", salonID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
