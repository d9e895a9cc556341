package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

func (r *Repo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.TxStore) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, &txStore{q: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type txStore struct{ q querier }

func (t *txStore) InsertReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := t.q.ExecContext(ctx, insertReviewSQL, rv.UserID, rv.HotelID, rv.Rating, rv.Content)
	if err != nil {
		switch code, msg := mysqlCode(err); code {
		case errDuplicateEntry:
			return domain.Review{}, domain.ErrDuplicateReview
		case errNoReferencedRow:
			return domain.Review{}, missingParent(msg)
		}
		return domain.Review{}, err
	}
	if rv.ID, err = res.LastInsertId(); err != nil {
		return domain.Review{}, err
	}
	if err := t.q.QueryRowContext(ctx, getReviewCreatedAtSQL, rv.ID).Scan(&rv.CreatedAt); err != nil {
		return domain.Review{}, err
	}
	return rv, nil
}

func (t *txStore) IncrementRating(ctx context.Context, hotelID int64, rating int) error {
	res, err := t.q.ExecContext(ctx, incrementRatingSQL, rating, hotelID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrHotelNotFound
	}
	return nil
}

func (t *txStore) LockRating(ctx context.Context, hotelID int64) (domain.RatingAggregate, error) {
	var agg domain.RatingAggregate
	err := t.q.QueryRowContext(ctx, lockRatingSQL, hotelID).Scan(&agg.Total, &agg.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RatingAggregate{}, domain.ErrHotelNotFound
	}
	return agg, err
}

func (t *txStore) SumRatings(ctx context.Context, hotelID int64) (domain.RatingAggregate, error) {
	var agg domain.RatingAggregate
	err := t.q.QueryRowContext(ctx, sumRatingsSQL, hotelID).Scan(&agg.Total, &agg.Count)
	return agg, err
}

// SetRating expects the row to be locked by LockRating, so a missing hotel has
// already been reported.
func (t *txStore) SetRating(ctx context.Context, hotelID int64, agg domain.RatingAggregate) error {
	_, err := t.q.ExecContext(ctx, setRatingSQL, agg.Total, agg.Count, hotelID)
	return err
}
