package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date wire format for stay dates.
	DateLayout = "2006-01-02"

	allInclusiveBasePercent     = 20
	allInclusivePerGuestPercent = 10

	secondsPerDay = 24 * 60 * 60

	// priceTolerance is half a cent: totals closer than this are the same price.
	priceTolerance = 0.005
)

// Stay is the guest's selection for a booking.
type Stay struct {
	CheckIn      time.Time
	CheckOut     time.Time
	Guests       int
	AllInclusive bool
}

// Quote is the price breakdown for a stay. TotalPrice keeps full precision;
// round only when formatting for display.
type Quote struct {
	Nights           int     `json:"nights"`
	NightlyRate      float64 `json:"nightlyRate"`
	BasePrice        float64 `json:"basePrice"`
	SurchargePercent int     `json:"surchargePercent"`
	TotalPrice       float64 `json:"totalPrice"`
}

// CalendarDate drops the time of day, keeping the date as seen in t's own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseStayDate accepts "2006-01-02" or an RFC 3339 timestamp and returns the calendar date.
func ParseStayDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return CalendarDate(t), nil
	}
	return time.Time{}, Invalid("invalid date %q, expected YYYY-MM-DD", s)
}

// Nights counts the stay inclusively: the whole-day difference plus one,
// so checking out on the check-in day is one night.
func Nights(checkIn, checkOut time.Time) (int, error) {
	in, out := CalendarDate(checkIn), CalendarDate(checkOut)
	if out.Before(in) {
		return 0, ErrInvalidDateRange
	}
	// both are UTC midnights; Unix seconds avoid Duration's ~292 year ceiling
	days := (out.Unix() - in.Unix()) / secondsPerDay
	return int(days) + 1, nil
}

// SurchargePercent is the all-inclusive uplift: 20% for the first guest and
// 10% for every additional one. There is no cap.
func SurchargePercent(guests int, allInclusive bool) int {
	if !allInclusive {
		return 0
	}
	return allInclusiveBasePercent + (guests-1)*allInclusivePerGuestPercent
}

// QuoteStay prices a stay at the given nightly rate.
func QuoteStay(s Stay, nightlyRate float64) (Quote, error) {
	if s.Guests < 1 {
		return Quote{}, ErrInvalidGuestCount
	}
	if nightlyRate <= 0 || math.IsNaN(nightlyRate) || math.IsInf(nightlyRate, 0) {
		return Quote{}, Invalid("nightly rate must be a positive number")
	}
	nights, err := Nights(s.CheckIn, s.CheckOut)
	if err != nil {
		return Quote{}, err
	}
	base := float64(nights) * nightlyRate
	pct := SurchargePercent(s.Guests, s.AllInclusive)
	return Quote{
		Nights:           nights,
		NightlyRate:      nightlyRate,
		BasePrice:        base,
		SurchargePercent: pct,
		TotalPrice:       base * (1 + float64(pct)/100),
	}, nil
}

// PricesMatch compares two totals at cent resolution.
func PricesMatch(a, b float64) bool {
	return math.Abs(a-b) < priceTolerance
}

// FormatPrice renders a total for display with two decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
