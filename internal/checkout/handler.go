package checkout

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/salonos/salonos/internal/booking"
	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/platform/httpx"
)

// Handler manages checkout endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers checkout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/checkout", h.settle)
	r.Get("/checkout/receipts/{transactionID}", h.showReceipt)
}

type itemPayload struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	Type     string `json:"type" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=100"`
}

type discountPayload struct {
	Type   string  `json:"type" validate:"required,oneof=percentage fixed"`
	Value  float64 `json:"value" validate:"gte=0,lte=10000000"`
	Code   string  `json:"code"`
	Reason string  `json:"reason"`
}

type checkoutPayload struct {
	SalonID       int64            `json:"salon_id" validate:"required,gt=0"`
	BookingID     *int64           `json:"booking_id" validate:"omitempty,gt=0"`
	ClientName    string           `json:"client_name" validate:"required,max=120"`
	ClientPhone   string           `json:"client_phone" validate:"max=20"`
	Items         []itemPayload    `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=cash card upi wallet savedCard split"`
	Discount      *discountPayload `json:"discount"`
	TipRupees     float64          `json:"tip_rupees" validate:"gte=0,lte=10000000"`
	Notes         string           `json:"notes" validate:"max=500"`
}

type receiptAmounts struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Tax      string `json:"tax"`
	Tip      string `json:"tip"`
	Total    string `json:"total"`
}

type receiptResponse struct {
	Receipt
	Formatted receiptAmounts `json:"formatted"`
}

func newReceiptResponse(rec Receipt) receiptResponse {
	return receiptResponse{
		Receipt: rec,
		Formatted: receiptAmounts{
			Subtotal: rec.SubtotalPaisa.FormatINR(),
			Discount: rec.DiscountPaisa.FormatINR(),
			Tax:      rec.TaxPaisa.FormatINR(),
			Tip:      rec.TipPaisa.FormatINR(),
			Total:    rec.TotalPaisa.FormatINR(),
		},
	}
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	staffID, err := actorID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var payload checkoutPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	in := CheckoutInput{
		SalonID:       payload.SalonID,
		StaffID:       staffID,
		BookingID:     payload.BookingID,
		ClientName:    payload.ClientName,
		ClientPhone:   payload.ClientPhone,
		PaymentMethod: PaymentMethod(payload.PaymentMethod),
		TipRupees:     payload.TipRupees,
		Notes:         payload.Notes,
	}
	for _, it := range payload.Items {
		in.Items = append(in.Items, ItemInput{ID: it.ID, Type: it.Type, Quantity: it.Quantity})
	}
	if payload.Discount != nil {
		in.Discount = &Discount{
			Type:   DiscountType(payload.Discount.Type),
			Value:  payload.Discount.Value,
			Code:   payload.Discount.Code,
			Reason: payload.Discount.Reason,
		}
	}

	rec, err := h.service.Settle(r.Context(), in)
	if err != nil {
		h.respondSettleError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newReceiptResponse(rec))
}

func (h *Handler) showReceipt(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")
	rec, err := h.service.GetReceipt(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, ErrReceiptNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "receipt not found")
			return
		}
		h.logger.Error("load receipt", slog.String("transaction_id", transactionID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, newReceiptResponse(rec))
}

func (h *Handler) respondSettleError(w http.ResponseWriter, err error) {
	var notFound *catalog.ItemsNotFoundError
	var badQty *catalog.QuantityError
	var badType *UnsupportedItemTypeError
	var badDiscount *DiscountError
	var badMethod *PaymentMethodError

	switch {
	case errors.As(err, &notFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, booking.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "booking not found")
	case errors.As(err, &badType):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	case errors.Is(err, booking.ErrAlreadyCompleted):
		httpx.Problem(w, http.StatusConflict, "Conflict", "booking is already completed or cancelled")
	case errors.Is(err, ErrDuplicateTransaction):
		httpx.Problem(w, http.StatusConflict, "Conflict", "transaction id already exists")
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrNegativeTip),
		errors.As(err, &badQty), errors.As(err, &badDiscount), errors.As(err, &badMethod):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("settle checkout", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
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
