package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// BookingRequest is what a guest submits. DaysCount is optional (0 = not sent);
// TotalPrice is the total the guest was shown and must match the server's.
type BookingRequest struct {
	UserID       string
	HotelID      int64
	CheckIn      time.Time
	CheckOut     time.Time
	DaysCount    int
	Guests       int
	AllInclusive bool
	SpecialInfo  *string
	TotalPrice   float64
}

type BookingService struct {
	hotels   domain.HotelRepository
	bookings domain.BookingRepository
}

func NewBookingService(s domain.Store) *BookingService {
	return &BookingService{hotels: s, bookings: s}
}

// QuotePrice previews the price of a stay at the hotel's current nightly rate.
func (s *BookingService) QuotePrice(ctx context.Context, hotelID int64, stay domain.Stay) (domain.Quote, error) {
	if err := requireHotelID(hotelID); err != nil {
		return domain.Quote{}, err
	}
	h, err := s.hotels.GetHotel(ctx, hotelID)
	if err != nil {
		return domain.Quote{}, storeErr("get hotel", err)
	}
	return quoteFor(h, stay)
}

func quoteFor(h domain.Hotel, stay domain.Stay) (domain.Quote, error) {
	if stay.Guests > h.Guests {
		return domain.Quote{}, domain.Invalid("Too many guests for this room. Maximum: %d", h.Guests)
	}
	return domain.QuoteStay(stay, float64(h.PricePerNight))
}

// CreateBooking prices the stay from the stored nightly rate and persists it.
// A client total or night count that disagrees with the server is rejected.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (domain.Booking, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := requireUserID(req.UserID); err != nil {
		return domain.Booking{}, err
	}
	if err := requireHotelID(req.HotelID); err != nil {
		return domain.Booking{}, err
	}
	if req.Guests < 1 {
		return domain.Booking{}, domain.ErrInvalidGuestCount
	}
	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return domain.Booking{}, domain.Invalid("checkInDate and checkOutDate are required")
	}

	stay := domain.Stay{
		CheckIn:      req.CheckIn,
		CheckOut:     req.CheckOut,
		Guests:       req.Guests,
		AllInclusive: req.AllInclusive,
	}
	// validate the dates before touching the store
	if _, err := domain.Nights(stay.CheckIn, stay.CheckOut); err != nil {
		return domain.Booking{}, err
	}

	h, err := s.hotels.GetHotel(ctx, req.HotelID)
	if err != nil {
		return domain.Booking{}, storeErr("get hotel", err)
	}
	q, err := quoteFor(h, stay)
	if err != nil {
		return domain.Booking{}, err
	}
	if req.DaysCount != 0 && req.DaysCount != q.Nights {
		return domain.Booking{}, domain.Invalid("daysCount %d does not match the %d nights of the stay", req.DaysCount, q.Nights)
	}
	if !domain.PricesMatch(req.TotalPrice, q.TotalPrice) {
		log.Info().
			Int64("hotel_id", h.ID).
			Float64("submitted", req.TotalPrice).
			Float64("computed", q.TotalPrice).
			Msg("booking rejected: price mismatch")
		return domain.Booking{}, domain.ErrPriceMismatch
	}

	if req.SpecialInfo != nil {
		if v := strings.TrimSpace(*req.SpecialInfo); v == "" {
			req.SpecialInfo = nil
		} else {
			req.SpecialInfo = &v
		}
	}

	b, err := s.bookings.CreateBooking(ctx, domain.Booking{
		UserID:       req.UserID,
		HotelID:      h.ID,
		CheckInDate:  domain.CalendarDate(req.CheckIn),
		CheckOutDate: domain.CalendarDate(req.CheckOut),
		DaysCount:    q.Nights,
		Guests:       req.Guests,
		AllInclusive: req.AllInclusive,
		SpecialInfo:  req.SpecialInfo,
		TotalPrice:   q.TotalPrice,
	})
	if err != nil {
		return domain.Booking{}, storeErr("create booking", err)
	}
	observability.ObserveBooking()
	log.Info().
		Int64("booking_id", b.ID).
		Int64("hotel_id", b.HotelID).
		Str("user_id", b.UserID).
		Str("total", domain.FormatPrice(b.TotalPrice)).
		Msg("booking created")
	return b, nil
}

// ListBookingsForUser returns the user's bookings in creation order, each
// joined with its hotel's display fields. No bookings is an empty slice.
func (s *BookingService) ListBookingsForUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	userID = strings.TrimSpace(userID)
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	out, err := s.bookings.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	if out == nil {
		out = []domain.BookingView{}
	}
	return out, nil
}
