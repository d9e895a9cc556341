package domain

import "time"

// Review is one user's rating of one hotel. At most one exists per (UserID, HotelID).
type Review struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	HotelID   int64     `json:"hotelId"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReviewView struct {
	Review
	Username string `json:"username"`
}

// ReviewList distinguishes "hotel has no reviews" (Empty) from a missing hotel,
// which is reported as ErrHotelNotFound instead.
type ReviewList struct {
	Items []ReviewView `json:"items"`
	Empty bool         `json:"empty"`
}
