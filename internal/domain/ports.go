package domain

import "context"

type HotelRepository interface {
	CreateHotel(ctx context.Context, d HotelDraft) (Hotel, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context) ([]Hotel, error)
	ListHotelIDs(ctx context.Context) ([]int64, error)
}

type UserRepository interface {
	// CreateUserIfMissing inserts u unless a user with the same id exists.
	CreateUserIfMissing(ctx context.Context, u User) (created bool, err error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUsername(ctx context.Context, id, username string) (User, error)
	SetRole(ctx context.Context, id string, role Role) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]BookingView, error)
}

type ReviewRepository interface {
	HasReview(ctx context.Context, hotelID int64, userID string) (bool, error)
	ListReviews(ctx context.Context, hotelID int64) ([]ReviewView, error)
}

// TxStore holds the writes that must commit together with the hotel's rating counters.
type TxStore interface {
	// InsertReview fails with ErrDuplicateReview when the (user, hotel) pair already exists.
	InsertReview(ctx context.Context, r Review) (Review, error)
	// IncrementRating adds one rating to the counters in a single statement.
	IncrementRating(ctx context.Context, hotelID int64, rating int) error
	// LockRating reads the stored counters and holds the hotel row until commit.
	LockRating(ctx context.Context, hotelID int64) (RatingAggregate, error)
	// SumRatings derives the counters from the hotel's current reviews.
	SumRatings(ctx context.Context, hotelID int64) (RatingAggregate, error)
	SetRating(ctx context.Context, hotelID int64, agg RatingAggregate) error
}

type Transactor interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxStore) error) error
}

// Store is the relational store as seen by the services.
type Store interface {
	HotelRepository
	UserRepository
	BookingRepository
	ReviewRepository
	Transactor
	Ping(ctx context.Context) error
	Close() error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ObjectStore stores image bytes and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}
