package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/observability"
	"github.com/salonos/salonos/internal/shared"
)

// ItemResolver prices a set of requested items against the active catalog.
type ItemResolver interface {
	Resolve(ctx context.Context, salonID int64, reqs []catalog.ItemRequest) ([]catalog.ResolvedLineItem, error)
}

// Notifier enqueues post-settlement work such as the receipt email.
type Notifier interface {
	ReceiptSettled(ctx context.Context, r Receipt) error
}

// Service orchestrates one checkout: resolve prices, compose the quote,
// then commit receipt and booking completion in a single transaction.
type Service struct {
	repo     Repository
	resolver ItemResolver
	signer   *Signer
	cfg      PricingConfig
	audit    *shared.AuditLogger
	notifier Notifier
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService constructs a Service instance.
func NewService(repo Repository, resolver ItemResolver, signer *Signer, cfg PricingConfig, audit *shared.AuditLogger, notifier Notifier, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		signer:   signer,
		cfg:      cfg,
		audit:    audit,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] },
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDSource overrides the transaction id suffix source, for tests.
func (s *Service) WithIDSource(newID func() string) *Service {
	s.newID = newID
	return s
}

// Settle runs the full pipeline for one checkout. The transaction id is
// minted only after validation, resolution and pricing all succeed, so a
// failed checkout leaves no id behind. When a booking is linked, its
// completion and the receipt insert commit together or not at all.
func (s *Service) Settle(ctx context.Context, in CheckoutInput) (Receipt, error) {
	if len(in.Items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if !in.PaymentMethod.Valid() {
		return Receipt{}, &PaymentMethodError{Method: in.PaymentMethod}
	}
	if in.TipRupees < 0 {
		return Receipt{}, ErrNegativeTip
	}

	reqs := make([]catalog.ItemRequest, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Type != ItemTypeService {
			return Receipt{}, &UnsupportedItemTypeError{ItemID: it.ID, Type: it.Type}
		}
		reqs = append(reqs, catalog.ItemRequest{ItemID: it.ID, Quantity: it.Quantity})
	}

	items, err := s.resolver.Resolve(ctx, in.SalonID, reqs)
	if err != nil {
		return Receipt{}, err
	}

	quote, err := Price(items, in.Discount, in.TipRupees, s.cfg)
	if err != nil {
		return Receipt{}, err
	}

	now := s.now()
	rec := Receipt{
		TransactionID:   fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), s.newID()),
		SalonID:         in.SalonID,
		Items:           items,
		SubtotalPaisa:   quote.Subtotal,
		DiscountPaisa:   quote.Discount,
		DiscountDetails: in.Discount,
		TaxPaisa:        quote.Tax,
		TipPaisa:        quote.Tip,
		TotalPaisa:      quote.Total,
		PaymentMethod:   in.PaymentMethod,
		BookingID:       in.BookingID,
		ClientName:      in.ClientName,
		ClientPhone:     in.ClientPhone,
		Notes:           in.Notes,
		ProcessedBy:     in.StaffID,
		ProcessedAt:     now,
	}
	rec.Digest = s.signer.Digest(rec)

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.BookingID != nil {
			if err := tx.CompleteBooking(ctx, *in.BookingID, in.SalonID, rec.TotalPaisa, now); err != nil {
				return err
			}
		}
		return tx.InsertReceipt(ctx, rec)
	})
	if err != nil {
		return Receipt{}, err
	}

	s.metrics.ReceiptSettled(string(rec.PaymentMethod))
	s.recordAudit(ctx, rec)
	if s.notifier != nil {
		if err := s.notifier.ReceiptSettled(ctx, rec); err != nil {
			s.logger.Warn("enqueue receipt notification",
				slog.String("transaction_id", rec.TransactionID), slog.Any("error", err))
		}
	}
	return rec, nil
}

// GetReceipt loads a settled receipt and verifies its digest.
func (s *Service) GetReceipt(ctx context.Context, transactionID string) (Receipt, error) {
	rec, err := s.repo.GetReceipt(ctx, transactionID)
	if err != nil {
		return Receipt{}, err
	}
	if !s.signer.Verify(rec) {
		s.logger.Error("receipt digest mismatch", slog.String("transaction_id", rec.TransactionID))
	}
	return rec, nil
}

func (s *Service) recordAudit(ctx context.Context, rec Receipt) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{
		"salon_id":       rec.SalonID,
		"total_paisa":    rec.TotalPaisa,
		"payment_method": rec.PaymentMethod,
	}
	if rec.BookingID != nil {
		meta["booking_id"] = *rec.BookingID
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  rec.ProcessedBy,
		Action:   "checkout.settle",
		Entity:   "receipt",
		EntityID: rec.TransactionID,
		Meta:     meta,
		At:       rec.ProcessedAt,
	}); err != nil {
		s.logger.Warn("record checkout audit",
			slog.String("transaction_id", rec.TransactionID), slog.Any("error", err))
	}
}
