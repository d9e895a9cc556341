package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuoteCmd_Offline(t *testing.T) {
	out, err := run(t, "quote", "--from", "2024-06-01", "--to", "2024-06-03", "--guests", "2", "--all-inclusive", "--rate", "100")
	require.NoError(t, err)
	require.Contains(t, out, "nights:     3")
	require.Contains(t, out, "surcharge:  30%")
	require.Contains(t, out, "total:      390.00")
}

func TestQuoteCmd_Errors(t *testing.T) {
	_, err := run(t, "quote", "--from", "2024-06-03", "--to", "2024-06-01", "--rate", "100")
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = run(t, "quote", "--from", "2024-06-01", "--to", "2024-06-01")
	require.ErrorContains(t, err, "--rate or --hotel")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	out, err := run(t, "token", "user-1", "--email", "a@example.com")
	require.NoError(t, err)
	require.Len(t, bytes.Split(bytes.TrimSpace([]byte(out)), []byte(".")), 3)

	t.Setenv("AUTH_JWT_SECRET", "")
	_, err = run(t, "token", "user-1")
	require.Error(t, err)
}

func TestReconcile_FansOut(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	var ids []int64
	for i := 0; i < 5; i++ {
		h, err := st.CreateHotel(ctx, domain.HotelDraft{Name: "Hotel", Description: "A place to stay", Location: "Oslo", PricePerNight: 50, Guests: 2})
		require.NoError(t, err)
		ids = append(ids, h.ID)
	}
	st.SetCounters(ids[1], domain.RatingAggregate{Total: 7, Count: 2})
	st.SetCounters(ids[3], domain.RatingAggregate{Total: 1, Count: 1})

	res := reconcile(ctx, app.NewRatingAggregator(st), append(ids, 999), 2)
	require.Equal(t, int64(6), res.total)
	require.Equal(t, int64(2), res.changed)
	require.Equal(t, int64(1), res.failed)

	for _, id := range ids {
		h, err := st.GetHotel(ctx, id)
		require.NoError(t, err)
		require.Equal(t, domain.RatingAggregate{}, h.Rating())
	}
}
