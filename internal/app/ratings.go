package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// RatingAggregator maintains a hotel's (total_rating, rating_count) pair.
type RatingAggregator struct {
	tx domain.Transactor
}

func NewRatingAggregator(tx domain.Transactor) *RatingAggregator {
	return &RatingAggregator{tx: tx}
}

// Increment folds one new rating into the stored counters and returns the
// resulting pair. It must run in the same transaction as the review insert,
// and before it: the hotel row lock has to be taken ahead of the insert's FK check.
func (a *RatingAggregator) Increment(ctx context.Context, tx domain.TxStore, hotelID int64, rating int) (domain.RatingAggregate, error) {
	cur, err := tx.LockRating(ctx, hotelID)
	if err != nil {
		return domain.RatingAggregate{}, err
	}
	next, err := cur.Apply(rating)
	if err != nil {
		return domain.RatingAggregate{}, err
	}
	if err := tx.IncrementRating(ctx, hotelID, rating); err != nil {
		return domain.RatingAggregate{}, err
	}
	return next, nil
}

// Recompute derives both counters from the hotel's reviews and overwrites the
// stored pair when it differs. changed reports whether anything was written.
func (a *RatingAggregator) Recompute(ctx context.Context, hotelID int64) (domain.RatingAggregate, bool, error) {
	var stored, derived domain.RatingAggregate
	err := a.tx.WithinTx(ctx, func(ctx context.Context, tx domain.TxStore) error {
		var err error
		if stored, err = tx.LockRating(ctx, hotelID); err != nil {
			return err
		}
		if derived, err = tx.SumRatings(ctx, hotelID); err != nil {
			return err
		}
		if derived == stored {
			return nil
		}
		return tx.SetRating(ctx, hotelID, derived)
	})
	if err != nil {
		return domain.RatingAggregate{}, false, storeErr("recompute rating", err)
	}

	changed := derived != stored
	observability.ObserveRecompute(changed)
	if changed {
		log.Warn().
			Int64("hotel_id", hotelID).
			Int64("stored_total", stored.Total).
			Int64("stored_count", stored.Count).
			Int64("total", derived.Total).
			Int64("count", derived.Count).
			Msg("rating counters drifted; overwritten from reviews")
	}
	return derived, changed, nil
}
