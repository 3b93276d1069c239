package jobs

import (
	"context"

	"github.com/salonos/salonos/internal/checkout"
)

// ReceiptNotifier adapts the queue client to the checkout service's
// post-settlement hook.
type ReceiptNotifier struct {
	client *Client
}

// NewReceiptNotifier constructs a ReceiptNotifier.
func NewReceiptNotifier(client *Client) *ReceiptNotifier {
	return &ReceiptNotifier{client: client}
}

// ReceiptSettled enqueues the receipt notification.
func (n *ReceiptNotifier) ReceiptSettled(ctx context.Context, r checkout.Receipt) error {
	_, err := n.client.EnqueueReceiptEmail(ctx, ReceiptEmailPayload{
		TransactionID: r.TransactionID,
		SalonID:       r.SalonID,
		ClientName:    r.ClientName,
		ClientPhone:   r.ClientPhone,
		Total:         r.TotalPaisa.FormatINR(),
	})
	return err
}
