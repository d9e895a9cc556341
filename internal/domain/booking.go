package domain

import "time"

// Booking is immutable once stored; TotalPrice is never recomputed after creation.
type Booking struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"userId"`
	HotelID      int64     `json:"hotelId"`
	CheckInDate  time.Time `json:"checkInDate"`
	CheckOutDate time.Time `json:"checkOutDate"`
	DaysCount    int       `json:"daysCount"`
	Guests       int       `json:"guests"`
	AllInclusive bool      `json:"allInclusive"`
	SpecialInfo  *string   `json:"specialInfo"`
	TotalPrice   float64   `json:"totalPrice"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BookingView is a booking joined with the display fields of its hotel.
type BookingView struct {
	Booking
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	ImageURL      *string `json:"imageUrl"`
	PricePerNight int64   `json:"pricePerNight"`
	TotalRating   int64   `json:"totalRating"`
	RatingCount   int64   `json:"ratingCount"`
}
