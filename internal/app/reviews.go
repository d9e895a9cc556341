package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type ReviewService struct {
	store    domain.Store
	ratings  *RatingAggregator
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewReviewService(s domain.Store, ratings *RatingAggregator, c domain.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{store: s, ratings: ratings, cache: c, cacheTTL: ttl}
}

func (s *ReviewService) HasReviewed(ctx context.Context, hotelID int64, userID string) (bool, error) {
	if err := requireHotelID(hotelID); err != nil {
		return false, err
	}
	if err := requireUserID(userID); err != nil {
		return false, err
	}
	ok, err := s.store.HasReview(ctx, hotelID, userID)
	if err != nil {
		return false, storeErr("has review", err)
	}
	return ok, nil
}

// SubmitReview stores the review and bumps the hotel's counters in one
// transaction; either both land or neither does.
func (s *ReviewService) SubmitReview(ctx context.Context, hotelID int64, userID string, rating int, content string) (domain.Review, error) {
	r, err := s.submit(ctx, hotelID, userID, rating, content)
	switch {
	case err == nil:
		observability.ObserveReview("ok")
	case errors.Is(err, domain.ErrConflict):
		observability.ObserveReview("duplicate")
	case domain.IsClassified(err) && !isDependency(err):
		observability.ObserveReview("invalid")
	default:
		observability.ObserveReview("error")
	}
	return r, err
}

func (s *ReviewService) submit(ctx context.Context, hotelID int64, userID string, rating int, content string) (domain.Review, error) {
	if err := requireHotelID(hotelID); err != nil {
		return domain.Review{}, err
	}
	if err := requireUserID(userID); err != nil {
		return domain.Review{}, err
	}
	if err := domain.ValidateRating(rating); err != nil {
		return domain.Review{}, err
	}

	var (
		out domain.Review
		agg domain.RatingAggregate
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
		var err error
		// counters first: it takes the hotel row lock; a duplicate insert below rolls it back
		if agg, err = s.ratings.Increment(ctx, tx, hotelID, rating); err != nil {
			return err
		}
		out, err = tx.InsertReview(ctx, domain.Review{
			UserID:  userID,
			HotelID: hotelID,
			Rating:  rating,
			Content: strings.TrimSpace(content),
		})
		return err
	})
	if err != nil {
		return domain.Review{}, storeErr("submit review", err)
	}

	_ = s.cache.Del(ctx, hotelKey(hotelID))
	_ = s.cache.Del(ctx, reviewsKey(hotelID))
	log.Info().Int64("hotel_id", hotelID).Str("user_id", userID).Int("rating", rating).
		Float64("average", agg.Average()).Msg("review submitted")
	return out, nil
}

// ListReviews returns the hotel's reviews with author usernames. A hotel with
// no reviews yields Empty=true; an unknown hotel yields ErrHotelNotFound.
func (s *ReviewService) ListReviews(ctx context.Context, hotelID int64) (domain.ReviewList, error) {
	if err := requireHotelID(hotelID); err != nil {
		return domain.ReviewList{}, err
	}
	key := reviewsKey(hotelID)
	var out domain.ReviewList
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	if _, err := s.store.GetHotel(ctx, hotelID); err != nil {
		return domain.ReviewList{}, storeErr("get hotel", err)
	}
	items, err := s.store.ListReviews(ctx, hotelID)
	if err != nil {
		return domain.ReviewList{}, storeErr("list reviews", err)
	}
	if items == nil {
		items = []domain.ReviewView{}
	}
	out = domain.ReviewList{Items: items, Empty: len(items) == 0}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func isDependency(err error) bool {
	var de *domain.DependencyError
	return errors.As(err, &de)
}
