package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func TestRatingAggregate_Apply(t *testing.T) {
	var agg domain.RatingAggregate
	assert.Equal(t, 0.0, agg.Average())

	ratings := []int{5, 3, 4, 1}
	for _, r := range ratings {
		var err error
		agg, err = agg.Apply(r)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(13), agg.Total)
	assert.Equal(t, int64(4), agg.Count)
	assert.InDelta(t, 3.25, agg.Average(), 1e-9)
	assert.Equal(t, domain.Reconcile(ratings), agg)
}

func TestRatingAggregate_ApplyRejectsOutOfRange(t *testing.T) {
	agg := domain.RatingAggregate{Total: 4, Count: 1}
	for _, r := range []int{0, 6, -1} {
		got, err := agg.Apply(r)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
		assert.Equal(t, agg, got)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	ratings := []int{2, 2, 5}
	first := domain.Reconcile(ratings)
	assert.Equal(t, first, domain.Reconcile(ratings))
	assert.Equal(t, domain.RatingAggregate{}, domain.Reconcile(nil))
}

func TestUsernameRules(t *testing.T) {
	assert.Equal(t, "jane.doe", domain.UsernameFromEmail("jane.doe@example.com"))
	assert.ErrorIs(t, domain.ValidateUsername("ab"), domain.ErrValidation)
	assert.NoError(t, domain.ValidateUsername("abc"))
	assert.True(t, domain.RoleOwner.CanRegisterHotels())
	assert.False(t, domain.RoleUser.CanRegisterHotels())
}
