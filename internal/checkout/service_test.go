package checkout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salonos/salonos/internal/booking"
	"github.com/salonos/salonos/internal/catalog"
	"github.com/salonos/salonos/internal/money"
)

type memBooking struct {
	status booking.Status
	paid   booking.PaymentStatus
	total  money.Paisa
}

type memRepo struct {
	receipts map[string]Receipt
	bookings map[int64]*memBooking
}

func newMemRepo() *memRepo {
	return &memRepo{
		receipts: make(map[string]Receipt),
		bookings: make(map[int64]*memBooking),
	}
}

type memTx struct {
	repo     *memRepo
	receipts []Receipt
	booked   map[int64]memBooking
}

// WithTx stages writes and applies them only when fn succeeds, matching the
// all-or-nothing behaviour of the Postgres implementation.
func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memTx{repo: m, booked: make(map[int64]memBooking)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, r := range tx.receipts {
		m.receipts[r.TransactionID] = r
	}
	for id, b := range tx.booked {
		*m.bookings[id] = b
	}
	return nil
}

func (m *memRepo) GetReceipt(_ context.Context, transactionID string) (Receipt, error) {
	r, ok := m.receipts[transactionID]
	if !ok {
		return Receipt{}, ErrReceiptNotFound
	}
	return r, nil
}

func (t *memTx) InsertReceipt(_ context.Context, r Receipt) error {
	if _, ok := t.repo.receipts[r.TransactionID]; ok {
		return ErrDuplicateTransaction
	}
	t.receipts = append(t.receipts, r)
	return nil
}

func (t *memTx) CompleteBooking(_ context.Context, bookingID, _ int64, total money.Paisa, _ time.Time) error {
	b, ok := t.repo.bookings[bookingID]
	if !ok {
		return booking.ErrNotFound
	}
	if b.status == booking.StatusCompleted || b.status == booking.StatusCancelled {
		return booking.ErrAlreadyCompleted
	}
	t.booked[bookingID] = memBooking{status: booking.StatusCompleted, paid: booking.PaymentPaid, total: total}
	return nil
}

type stubResolver struct {
	items map[int64]catalog.ServiceItem
}

func (s *stubResolver) Resolve(_ context.Context, _ int64, reqs []catalog.ItemRequest) ([]catalog.ResolvedLineItem, error) {
	var missing []int64
	resolved := make([]catalog.ResolvedLineItem, 0, len(reqs))
	for _, req := range reqs {
		it, ok := s.items[req.ItemID]
		if !ok {
			missing = append(missing, req.ItemID)
			continue
		}
		resolved = append(resolved, catalog.ResolvedLineItem{
			ItemID:         it.ID,
			Name:           it.Name,
			UnitPricePaisa: it.PricePaisa,
			Quantity:       req.Quantity,
		})
	}
	if len(missing) > 0 {
		return nil, &catalog.ItemsNotFoundError{IDs: missing}
	}
	return resolved, nil
}

type stubNotifier struct {
	settled []string
}

func (n *stubNotifier) ReceiptSettled(_ context.Context, r Receipt) error {
	n.settled = append(n.settled, r.TransactionID)
	return nil
}

type fixture struct {
	repo     *memRepo
	notifier *stubNotifier
	service  *Service
	idCalls  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: newMemRepo(), notifier: &stubNotifier{}}
	resolver := &stubResolver{items: map[int64]catalog.ServiceItem{
		1: {ID: 1, SalonID: 7, Name: "Haircut", PricePaisa: 30000, Active: true},
		2: {ID: 2, SalonID: 7, Name: "Beard Trim", PricePaisa: 10000, Active: true},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewService(f.repo, resolver, NewSigner("test-signing-key"), testPricingConfig(), nil, f.notifier, nil, logger).
		WithNow(func() time.Time { return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC) }).
		WithIDSource(func() string {
			f.idCalls++
			return fmt.Sprintf("%08x", f.idCalls)
		})
	return f
}

func walkInInput() CheckoutInput {
	return CheckoutInput{
		SalonID:    7,
		StaffID:    42,
		ClientName: "Asha",
		Items: []ItemInput{
			{ID: 1, Type: ItemTypeService, Quantity: 1},
			{ID: 2, Type: ItemTypeService, Quantity: 2},
		},
		PaymentMethod: PaymentUPI,
	}
}

func TestSettleWalkIn(t *testing.T) {
	f := newFixture(t)

	rec, err := f.service.Settle(context.Background(), walkInInput())
	require.NoError(t, err)
	require.Regexp(t, `^TXN-\d+-[0-9a-f]{8}$`, rec.TransactionID)
	require.Equal(t, money.Paisa(50000), rec.SubtotalPaisa)
	require.Equal(t, money.Paisa(9000), rec.TaxPaisa)
	require.Equal(t, money.Paisa(59000), rec.TotalPaisa)
	require.Equal(t, int64(42), rec.ProcessedBy)
	require.Nil(t, rec.BookingID)

	stored, err := f.service.GetReceipt(context.Background(), rec.TransactionID)
	require.NoError(t, err)
	require.Equal(t, rec, stored)
	require.Equal(t, []string{rec.TransactionID}, f.notifier.settled)
}

func TestSettleCompletesBookingWithReceipt(t *testing.T) {
	f := newFixture(t)
	f.repo.bookings[55] = &memBooking{status: booking.StatusInProgress}

	in := walkInInput()
	bookingID := int64(55)
	in.BookingID = &bookingID

	rec, err := f.service.Settle(context.Background(), in)
	require.NoError(t, err)

	b := f.repo.bookings[55]
	require.Equal(t, booking.StatusCompleted, b.status)
	require.Equal(t, booking.PaymentPaid, b.paid)
	require.Equal(t, rec.TotalPaisa, b.total)
	require.Contains(t, f.repo.receipts, rec.TransactionID)
}

func TestSettleAlreadyCompletedBookingLeavesNoReceipt(t *testing.T) {
	f := newFixture(t)
	f.repo.bookings[55] = &memBooking{status: booking.StatusCompleted}

	in := walkInInput()
	bookingID := int64(55)
	in.BookingID = &bookingID

	_, err := f.service.Settle(context.Background(), in)
	require.ErrorIs(t, err, booking.ErrAlreadyCompleted)
	require.Empty(t, f.repo.receipts)
	require.Empty(t, f.notifier.settled)
}

func TestSettleMissingBooking(t *testing.T) {
	f := newFixture(t)

	in := walkInInput()
	bookingID := int64(99)
	in.BookingID = &bookingID

	_, err := f.service.Settle(context.Background(), in)
	require.ErrorIs(t, err, booking.ErrNotFound)
	require.Empty(t, f.repo.receipts)
}

func TestSettleUnknownItemMintsNoID(t *testing.T) {
	f := newFixture(t)

	in := walkInInput()
	in.Items = append(in.Items, ItemInput{ID: 404, Type: ItemTypeService, Quantity: 1})

	var notFound *catalog.ItemsNotFoundError
	_, err := f.service.Settle(context.Background(), in)
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []int64{404}, notFound.IDs)
	require.Zero(t, f.idCalls)
	require.Empty(t, f.repo.receipts)
}

func TestSettleRejectsProductLines(t *testing.T) {
	f := newFixture(t)

	in := walkInInput()
	in.Items[0].Type = "product"

	var badType *UnsupportedItemTypeError
	_, err := f.service.Settle(context.Background(), in)
	require.ErrorAs(t, err, &badType)
	require.Equal(t, int64(1), badType.ItemID)
	require.Zero(t, f.idCalls)
}

func TestSettleRejectsBadPaymentMethod(t *testing.T) {
	f := newFixture(t)

	in := walkInInput()
	in.PaymentMethod = "cheque"

	var badMethod *PaymentMethodError
	_, err := f.service.Settle(context.Background(), in)
	require.ErrorAs(t, err, &badMethod)
}

func TestDigestDetectsTampering(t *testing.T) {
	f := newFixture(t)
	signer := NewSigner("test-signing-key")

	rec, err := f.service.Settle(context.Background(), walkInInput())
	require.NoError(t, err)
	require.True(t, signer.Verify(rec))

	rec.TotalPaisa += 100
	require.False(t, signer.Verify(rec))

	require.False(t, NewSigner("other-key").Verify(rec))
}

func TestGetReceiptNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetReceipt(context.Background(), "TXN-0-deadbeef")
	require.ErrorIs(t, err, ErrReceiptNotFound)
}
