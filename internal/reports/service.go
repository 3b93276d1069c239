package reports

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const topServicesLimit = 5

// Service computes settlement summaries, serving repeated requests for the
// same salon-day from cache.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Daily returns the settlement summary for one salon-day.
func (s *Service) Daily(ctx context.Context, salonID int64, date string) (DailySummary, error) {
	if _, _, err := DayBounds(date); err != nil {
		return DailySummary{}, err
	}

	key := fmt.Sprintf("reports:daily:%d:%s", salonID, date)
	var summary DailySummary
	err := s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		return s.compute(ctx, salonID, date)
	})
	if err != nil {
		return DailySummary{}, err
	}
	return summary, nil
}

// Refresh recomputes and drops the cached summary for one salon-day.
func (s *Service) Refresh(ctx context.Context, salonID int64, date string) error {
	if _, _, err := DayBounds(date); err != nil {
		return err
	}
	return s.cache.Drop(ctx, fmt.Sprintf("reports:daily:%d:%s", salonID, date))
}

func (s *Service) compute(ctx context.Context, salonID int64, date string) (DailySummary, error) {
	from, to, err := DayBounds(date)
	if err != nil {
		return DailySummary{}, err
	}

	summary := DailySummary{SalonID: salonID, Date: date}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary.Totals, err = s.repo.Totals(ctx, salonID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		summary.ByMethod, err = s.repo.ByPaymentMethod(ctx, salonID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		summary.TopServices, err = s.repo.TopServices(ctx, salonID, from, to, topServicesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return DailySummary{}, err
	}

	summary.Formatted = FormattedTotals{
		Subtotal: summary.Totals.SubtotalPaisa.FormatINR(),
		Discount: summary.Totals.DiscountPaisa.FormatINR(),
		Tax:      summary.Totals.TaxPaisa.FormatINR(),
		Tip:      summary.Totals.TipPaisa.FormatINR(),
		Total:    summary.Totals.TotalPaisa.FormatINR(),
	}
	return summary, nil
}
