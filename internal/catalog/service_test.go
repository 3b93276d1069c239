package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memCatalogRepo struct {
	items map[int64][]ServiceItem
	calls int
}

func (m *memCatalogRepo) ListActiveBySalon(_ context.Context, salonID int64) ([]ServiceItem, error) {
	m.calls++
	return m.items[salonID], nil
}

func seededRepo() *memCatalogRepo {
	return &memCatalogRepo{items: map[int64][]ServiceItem{
		7: {
			{ID: 1, SalonID: 7, Name: "Haircut", PricePaisa: 30000, DurationMin: 30, Active: true},
			{ID: 2, SalonID: 7, Name: "Beard Trim", PricePaisa: 10000, DurationMin: 15, Active: true},
			{ID: 3, SalonID: 7, Name: "Facial", PricePaisa: 120000, DurationMin: 60, Active: true},
		},
	}}
}

func TestResolveSubstitutesStoredPrices(t *testing.T) {
	svc := NewService(seededRepo(), nil)

	resolved, err := svc.Resolve(context.Background(), 7, []ItemRequest{
		{ItemID: 1, Quantity: 2},
		{ItemID: 3, Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, []ResolvedLineItem{
		{ItemID: 1, Name: "Haircut", UnitPricePaisa: 30000, Quantity: 2},
		{ItemID: 3, Name: "Facial", UnitPricePaisa: 120000, Quantity: 1},
	}, resolved)
}

func TestResolveAllOrNothing(t *testing.T) {
	svc := NewService(seededRepo(), nil)

	resolved, err := svc.Resolve(context.Background(), 7, []ItemRequest{
		{ItemID: 1, Quantity: 1},
		{ItemID: 404, Quantity: 1},
		{ItemID: 405, Quantity: 1},
	})
	var notFound *ItemsNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []int64{404, 405}, notFound.IDs)
	require.Nil(t, resolved, "one miss rejects the whole set")
}

func TestResolveQuantityBounds(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	var qtyErr *QuantityError
	_, err := svc.Resolve(ctx, 7, []ItemRequest{{ItemID: 1, Quantity: 0}})
	require.ErrorAs(t, err, &qtyErr)

	_, err = svc.Resolve(ctx, 7, []ItemRequest{{ItemID: 1, Quantity: 101}})
	require.ErrorAs(t, err, &qtyErr)
	require.Zero(t, repo.calls, "quantity bounds are checked before any lookup")

	_, err = svc.Resolve(ctx, 7, []ItemRequest{{ItemID: 1, Quantity: 100}})
	require.NoError(t, err)
}

func TestResolveEmptyRequest(t *testing.T) {
	svc := NewService(seededRepo(), nil)

	_, err := svc.Resolve(context.Background(), 7, nil)
	require.ErrorIs(t, err, ErrNoItems)
}

func TestResolveDeterministic(t *testing.T) {
	svc := NewService(seededRepo(), nil)
	reqs := []ItemRequest{{ItemID: 2, Quantity: 3}, {ItemID: 1, Quantity: 1}}

	first, err := svc.Resolve(context.Background(), 7, reqs)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), 7, reqs)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolveUsesCachedSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := seededRepo()
	svc := NewService(repo, NewCache(client, time.Minute))
	ctx := context.Background()
	reqs := []ItemRequest{{ItemID: 1, Quantity: 1}}

	_, err := svc.Resolve(ctx, 7, reqs)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, 7, reqs)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls, "second resolve served from cache")

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Resolve(ctx, 7, reqs)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls, "bump invalidates cached snapshots")
}

func TestCacheDegradesWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	repo := seededRepo()
	svc := NewService(repo, NewCache(client, time.Minute))

	resolved, err := svc.Resolve(context.Background(), 7, []ItemRequest{{ItemID: 1, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
}
