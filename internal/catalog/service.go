package catalog

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Service performs all-or-nothing price resolution for a checkout.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService constructs a Service instance.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Resolve validates quantity bounds, then substitutes the stored price for
// every requested item. Any id missing from the salon's active catalog
// rejects the whole set; the caller receives zero resolved items. For an
// unchanged catalog the result is deterministic.
func (s *Service) Resolve(ctx context.Context, salonID int64, reqs []ItemRequest) ([]ResolvedLineItem, error) {
	if len(reqs) == 0 {
		return nil, ErrNoItems
	}
	for _, req := range reqs {
		if req.Quantity < MinQuantity || req.Quantity > MaxQuantity {
			return nil, &QuantityError{ItemID: req.ItemID, Quantity: req.Quantity}
		}
	}

	items, err := s.activeItems(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load salon %d: %w", salonID, err)
	}
	byID := make(map[int64]ServiceItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	var missing []int64
	resolved := make([]ResolvedLineItem, 0, len(reqs))
	for _, req := range reqs {
		it, ok := byID[req.ItemID]
		if !ok {
			missing = append(missing, req.ItemID)
			continue
		}
		resolved = append(resolved, ResolvedLineItem{
			ItemID:         it.ID,
			Name:           it.Name,
			UnitPricePaisa: it.PricePaisa,
			Quantity:       req.Quantity,
		})
	}
	if len(missing) > 0 {
		return nil, &ItemsNotFoundError{IDs: missing}
	}
	return resolved, nil
}

// Invalidate drops cached snapshots after the catalog changes upstream.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// activeItems loads the salon catalog through the cache, collapsing
// concurrent loads for the same salon into one database read.
func (s *Service) activeItems(ctx context.Context, salonID int64) ([]ServiceItem, error) {
	v, err, _ := s.group.Do(strconv.FormatInt(salonID, 10), func() (any, error) {
		return s.cache.FetchItems(ctx, salonID, func(ctx context.Context) ([]ServiceItem, error) {
			return s.repo.ListActiveBySalon(ctx, salonID)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.([]ServiceItem), nil
}
