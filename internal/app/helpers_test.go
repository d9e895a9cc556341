package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

type env struct {
	store    *memory.Store
	cache    *memory.Cache
	objects  *fakeObjects
	ratings  *app.RatingAggregator
	catalog  *app.CatalogService
	reviews  *app.ReviewService
	bookings *app.BookingService
	users    *app.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	c := memory.NewCache()
	objs := &fakeObjects{}
	ratings := app.NewRatingAggregator(st)
	return &env{
		store:    st,
		cache:    c,
		objects:  objs,
		ratings:  ratings,
		catalog:  app.NewCatalogService(st, ratings, c, objs, 10*time.Minute),
		reviews:  app.NewReviewService(st, ratings, c, 10*time.Minute),
		bookings: app.NewBookingService(st),
		users:    app.NewUserService(st),
	}
}

func (e *env) hotel(t *testing.T, price int64, guests int) domain.Hotel {
	t.Helper()
	h, err := e.store.CreateHotel(context.Background(), domain.HotelDraft{
		Name:          "Seaside Inn",
		Description:   "Rooms with a view of the bay",
		Location:      "Gdansk",
		PricePerNight: price,
		Guests:        guests,
	})
	require.NoError(t, err)
	return h
}

func (e *env) user(t *testing.T, id string) domain.User {
	t.Helper()
	u, _, err := e.users.EnsureUser(context.Background(), id, id+"@example.com")
	require.NoError(t, err)
	return u
}

type fakeObjects struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeObjects) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }
