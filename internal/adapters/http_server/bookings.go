package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
)

type createBookingRequest struct {
	UserID       string  `json:"userId"`
	HotelID      int64   `json:"hotelId" validate:"required,gt=0"`
	CheckInDate  string  `json:"checkInDate" validate:"required"`
	CheckOutDate string  `json:"checkOutDate" validate:"required"`
	DaysCount    int     `json:"daysCount" validate:"gte=0"`
	Guests       *int    `json:"guests"`
	AllInclusive bool    `json:"allInclusive"`
	SpecialInfo  *string `json:"specialInfo" validate:"omitempty,max=2000"`
	TotalPrice   float64 `json:"totalPrice" validate:"gt=0"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, err := actor(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stay, err := parseStay(req.CheckInDate, req.CheckOutDate, req.Guests, req.AllInclusive)
	if err != nil {
		writeError(w, r, err)
		return
	}

	b, err := h.Bookings.CreateBooking(r.Context(), app.BookingRequest{
		UserID:       userID,
		HotelID:      req.HotelID,
		CheckIn:      stay.CheckIn,
		CheckOut:     stay.CheckOut,
		DaysCount:    req.DaysCount,
		Guests:       stay.Guests,
		AllInclusive: stay.AllInclusive,
		SpecialInfo:  req.SpecialInfo,
		TotalPrice:   req.TotalPrice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "booking": b})
}

type listBookingsRequest struct {
	UserID string `json:"userId"`
}

func (h *Handlers) listBookingsByBody(w http.ResponseWriter, r *http.Request) {
	var req listBookingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.listBookings(w, r, req.UserID)
}

func (h *Handlers) listBookingsByPath(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, chi.URLParam(r, "id"))
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request, claimed string) {
	userID, err := actor(r, claimed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Bookings.ListBookingsForUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
