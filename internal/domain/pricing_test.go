package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"same day", day("2025-01-01"), day("2025-01-01"), 1},
		{"jan1 to jan3", day("2025-01-01"), day("2025-01-03"), 3},
		{"across month", day("2025-01-30"), day("2025-02-02"), 4},
		{"leap day", day("2024-02-28"), day("2024-03-01"), 3},
		{"time of day ignored", time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := domain.Nights(tt.in, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestNights_CenturiesApart(t *testing.T) {
	n, err := domain.Nights(day("1700-01-01"), day("2100-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 146098, n)
}

func TestNights_CheckoutBeforeCheckin(t *testing.T) {
	_, err := domain.Nights(day("2025-01-03"), day("2025-01-01"))
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestQuoteStay_Examples(t *testing.T) {
	stay := domain.Stay{CheckIn: day("2025-01-01"), CheckOut: day("2025-01-03"), Guests: 2}

	q, err := domain.QuoteStay(stay, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, 0, q.SurchargePercent)
	assert.InDelta(t, 300.0, q.TotalPrice, 1e-9)

	stay.AllInclusive = true
	q, err = domain.QuoteStay(stay, 100)
	require.NoError(t, err)
	assert.Equal(t, 30, q.SurchargePercent)
	assert.InDelta(t, 300.0, q.BasePrice, 1e-9)
	assert.InDelta(t, 390.0, q.TotalPrice, 1e-9)
}

func TestSurchargePercent_LinearAndUncapped(t *testing.T) {
	assert.Equal(t, 0, domain.SurchargePercent(7, false))
	assert.Equal(t, 20, domain.SurchargePercent(1, true))
	assert.Equal(t, 50, domain.SurchargePercent(4, true))
	assert.Equal(t, 60, domain.SurchargePercent(5, true))
	assert.Equal(t, 210, domain.SurchargePercent(20, true))
}

func TestQuoteStay_Monotonic(t *testing.T) {
	checkIn := day("2025-03-01")
	prev := 0.0
	for nights := 0; nights < 10; nights++ {
		q, err := domain.QuoteStay(domain.Stay{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, nights), Guests: 1}, 80)
		require.NoError(t, err)
		assert.InDelta(t, float64(nights+1)*80, q.TotalPrice, 1e-9, "not all-inclusive is nights x rate")
		assert.GreaterOrEqual(t, q.TotalPrice, prev)
		prev = q.TotalPrice
	}

	prev = 0
	for guests := 1; guests <= 12; guests++ {
		q, err := domain.QuoteStay(domain.Stay{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 2), Guests: guests, AllInclusive: true}, 80)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, q.TotalPrice, prev)
		prev = q.TotalPrice
	}
}

func TestQuoteStay_Errors(t *testing.T) {
	_, err := domain.QuoteStay(domain.Stay{CheckIn: day("2025-01-01"), CheckOut: day("2025-01-02"), Guests: 0}, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestCount)

	_, err = domain.QuoteStay(domain.Stay{CheckIn: day("2025-01-05"), CheckOut: day("2025-01-02"), Guests: 1}, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = domain.QuoteStay(domain.Stay{CheckIn: day("2025-01-01"), CheckOut: day("2025-01-02"), Guests: 1}, 0)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestQuoteStay_Deterministic(t *testing.T) {
	stay := domain.Stay{CheckIn: day("2025-06-10"), CheckOut: day("2025-06-17"), Guests: 3, AllInclusive: true}
	a, err := domain.QuoteStay(stay, 133)
	require.NoError(t, err)
	b, err := domain.QuoteStay(stay, 133)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseStayDate(t *testing.T) {
	d, err := domain.ParseStayDate("2025-01-03")
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-03"), d)

	d, err = domain.ParseStayDate("2025-01-03T18:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, day("2025-01-03"), d)

	_, err = domain.ParseStayDate("03/01/2025")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPricesMatchAndFormat(t *testing.T) {
	assert.True(t, domain.PricesMatch(390, 390.0000001))
	assert.False(t, domain.PricesMatch(390, 390.01))
	assert.Equal(t, "390.00", domain.FormatPrice(390))
	assert.Equal(t, "123.46", domain.FormatPrice(123.456))
}
