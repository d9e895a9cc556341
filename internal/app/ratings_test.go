package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func TestRecompute_IdempotentAndConvergent(t *testing.T) {
	e := newEnv(t)
	h := e.hotel(t, 100, 2)
	ctx := context.Background()
	for i, r := range []int{5, 3, 4} {
		u := e.user(t, fmt.Sprintf("u%d", i))
		_, err := e.reviews.SubmitReview(ctx, h.ID, u.ID, r, "")
		require.NoError(t, err)
	}

	agg, changed, err := e.ratings.Recompute(ctx, h.ID)
	require.NoError(t, err)
	require.False(t, changed, "increments already kept counters exact")
	require.Equal(t, domain.RatingAggregate{Total: 12, Count: 3}, agg)

	e.store.SetCounters(h.ID, domain.RatingAggregate{Total: 1, Count: 7})
	agg, changed, err = e.ratings.Recompute(ctx, h.ID)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, domain.RatingAggregate{Total: 12, Count: 3}, agg)

	again, changed, err := e.ratings.Recompute(ctx, h.ID)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, agg, again)

	stored, err := e.store.GetHotel(ctx, h.ID)
	require.NoError(t, err)
	require.Equal(t, agg, stored.Rating())
}

func TestRecompute_NoReviews(t *testing.T) {
	e := newEnv(t)
	h := e.hotel(t, 100, 2)
	e.store.SetCounters(h.ID, domain.RatingAggregate{Total: 9, Count: 2})

	agg, changed, err := e.ratings.Recompute(context.Background(), h.ID)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, domain.RatingAggregate{}, agg)
}

func TestRecompute_UnknownHotel(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.ratings.Recompute(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrHotelNotFound)
}

func TestIncrement_ConcurrentSubmissionsAreNotLost(t *testing.T) {
	e := newEnv(t)
	h := e.hotel(t, 100, 2)
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		e.user(t, fmt.Sprintf("c%d", i))
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := e.reviews.SubmitReview(ctx, h.ID, fmt.Sprintf("c%d", i), 1+i%5, ""); err != nil {
				t.Errorf("submit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := e.store.GetHotel(ctx, h.ID)
	require.NoError(t, err)
	var want int64
	for i := 0; i < n; i++ {
		want += int64(1 + i%5)
	}
	require.Equal(t, domain.RatingAggregate{Total: want, Count: n}, got.Rating())
}

func TestIncrement_ReturnsNextAggregate(t *testing.T) {
	e := newEnv(t)
	h := e.hotel(t, 100, 2)
	ctx := context.Background()
	e.store.SetCounters(h.ID, domain.RatingAggregate{Total: 7, Count: 2})

	var next domain.RatingAggregate
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
		var err error
		next, err = e.ratings.Increment(ctx, tx, h.ID, 5)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, domain.RatingAggregate{Total: 12, Count: 3}, next)
	require.InDelta(t, 4.0, next.Average(), 1e-9)

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
		_, err := e.ratings.Increment(ctx, tx, h.ID, 6)
		return err
	})
	require.ErrorIs(t, err, domain.ErrInvalidRating)

	err = e.store.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
		_, err := e.ratings.Increment(ctx, tx, 999, 3)
		return err
	})
	require.ErrorIs(t, err, domain.ErrHotelNotFound)

	got, err := e.store.GetHotel(ctx, h.ID)
	require.NoError(t, err)
	require.Equal(t, next, got.Rating())
}
