//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func pstr(s string) *string { return &s }

// startMySQL runs a throwaway MySQL and returns a migrated connection.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=hotels",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/hotels?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	pool.MaxWait = 2 * time.Minute
	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, mysqlrepo.Migrate(db))
	// second run is a no-op
	require.NoError(t, mysqlrepo.Migrate(db))
	return db
}

func seed(t *testing.T, ctx context.Context, repo *mysqlrepo.Repo) (domain.Hotel, domain.User) {
	t.Helper()
	h, err := repo.CreateHotel(ctx, domain.HotelDraft{
		Name:          "Seaside Inn",
		Description:   "Rooms with a view of the bay",
		Location:      "Gdansk",
		PricePerNight: 100,
		Guests:        3,
	})
	require.NoError(t, err)

	u := domain.User{ID: "user-1", Email: "ana@example.com", Username: "ana"}
	created, err := repo.CreateUserIfMissing(ctx, u)
	require.NoError(t, err)
	require.True(t, created)
	return h, u
}

func TestRepo_MySQL(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	h, u := seed(t, ctx, repo)

	t.Run("users", func(t *testing.T) {
		created, err := repo.CreateUserIfMissing(ctx, u)
		require.NoError(t, err)
		require.False(t, created)

		_, err = repo.CreateUserIfMissing(ctx, domain.User{ID: "user-x", Email: u.Email, Username: "x"})
		require.ErrorIs(t, err, domain.ErrValidation)

		got, err := repo.UpdateUsername(ctx, u.ID, "anna")
		require.NoError(t, err)
		require.Equal(t, "anna", got.Username)
		require.Equal(t, domain.RoleUser, got.Role)

		_, err = repo.UpdateUsername(ctx, "nobody", "name")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("bookings", func(t *testing.T) {
		views, err := repo.ListBookingsByUser(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, views)
		require.Empty(t, views)

		in := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		b, err := repo.CreateBooking(ctx, domain.Booking{
			UserID:       u.ID,
			HotelID:      h.ID,
			CheckInDate:  in,
			CheckOutDate: in.AddDate(0, 0, 2),
			DaysCount:    3,
			Guests:       1,
			SpecialInfo:  pstr("late arrival"),
			TotalPrice:   300,
		})
		require.NoError(t, err)
		require.NotZero(t, b.ID)

		views, err = repo.ListBookingsByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		require.Equal(t, "Seaside Inn", views[0].Name)
		require.Equal(t, 300.0, views[0].TotalPrice)
		require.True(t, views[0].CheckInDate.Equal(in))

		_, err = repo.CreateBooking(ctx, domain.Booking{UserID: u.ID, HotelID: 999999, CheckInDate: in, CheckOutDate: in, DaysCount: 1, Guests: 1, TotalPrice: 1})
		require.ErrorIs(t, err, domain.ErrHotelNotFound)
		_, err = repo.CreateBooking(ctx, domain.Booking{UserID: "ghost", HotelID: h.ID, CheckInDate: in, CheckOutDate: in, DaysCount: 1, Guests: 1, TotalPrice: 1})
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("review uniqueness and counters", func(t *testing.T) {
		err := repo.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
			if _, err := tx.InsertReview(ctx, domain.Review{UserID: u.ID, HotelID: h.ID, Rating: 4, Content: "good"}); err != nil {
				return err
			}
			return tx.IncrementRating(ctx, h.ID, 4)
		})
		require.NoError(t, err)

		err = repo.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
			if err := tx.IncrementRating(ctx, h.ID, 5); err != nil {
				return err
			}
			_, err := tx.InsertReview(ctx, domain.Review{UserID: u.ID, HotelID: h.ID, Rating: 5})
			return err
		})
		require.ErrorIs(t, err, domain.ErrDuplicateReview)

		// the failed tx rolled back its increment
		got, err := repo.GetHotel(ctx, h.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RatingAggregate{Total: 4, Count: 1}, got.Rating())

		ok, err := repo.HasReview(ctx, h.ID, u.ID)
		require.NoError(t, err)
		require.True(t, ok)

		reviews, err := repo.ListReviews(ctx, h.ID)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		require.Equal(t, "anna", reviews[0].Username)
	})

	t.Run("concurrent submissions neither deadlock nor lose increments", func(t *testing.T) {
		reviews := app.NewReviewService(repo, app.NewRatingAggregator(repo), memory.NewCache(), time.Minute)
		h2, err := repo.CreateHotel(ctx, domain.HotelDraft{Name: "Busy Hotel", Description: "Many reviewers here", Location: "Krakow", PricePerNight: 80, Guests: 2})
		require.NoError(t, err)

		const n = 10
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("concurrent-%d", i)
			_, err := repo.CreateUserIfMissing(ctx, domain.User{ID: id, Email: id + "@example.com", Username: id})
			require.NoError(t, err)
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, err := reviews.SubmitReview(ctx, h2.ID, userID, 3, "fine")
				errs <- err
			}(id)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := repo.GetHotel(ctx, h2.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RatingAggregate{Total: 3 * n, Count: n}, got.Rating())
	})

	t.Run("recompute from reviews", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `UPDATE hotels SET total_rating = 40, rating_count = 9 WHERE id = ?`, h.ID)
		require.NoError(t, err)

		var stored, derived domain.RatingAggregate
		err = repo.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
			var err error
			if stored, err = tx.LockRating(ctx, h.ID); err != nil {
				return err
			}
			if derived, err = tx.SumRatings(ctx, h.ID); err != nil {
				return err
			}
			return tx.SetRating(ctx, h.ID, derived)
		})
		require.NoError(t, err)
		require.Equal(t, domain.RatingAggregate{Total: 40, Count: 9}, stored)
		require.Equal(t, domain.RatingAggregate{Total: 4, Count: 1}, derived)

		err = repo.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
			_, err := tx.LockRating(ctx, 999999)
			return err
		})
		require.ErrorIs(t, err, domain.ErrHotelNotFound)
	})

	t.Run("cascade on hotel delete", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `DELETE FROM hotels WHERE id = ?`, h.ID)
		require.NoError(t, err)

		_, err = repo.GetHotel(ctx, h.ID)
		require.ErrorIs(t, err, domain.ErrHotelNotFound)

		reviews, err := repo.ListReviews(ctx, h.ID)
		require.NoError(t, err)
		require.Empty(t, reviews)

		views, err := repo.ListBookingsByUser(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, views)
	})
}
