package domain

import "time"

type Hotel struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	PricePerNight int64     `json:"pricePerNight"`
	ImageURL      *string   `json:"imageUrl"`
	Guests        int       `json:"guests"`
	TotalRating   int64     `json:"totalRating"`
	RatingCount   int64     `json:"ratingCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (h Hotel) Rating() RatingAggregate {
	return RatingAggregate{Total: h.TotalRating, Count: h.RatingCount}
}

// HotelDraft is a listing submitted by an owner, before it is stored.
type HotelDraft struct {
	Name          string  `json:"name" validate:"required,min=3"`
	Description   string  `json:"description" validate:"required,min=10"`
	Location      string  `json:"location" validate:"required"`
	PricePerNight int64   `json:"pricePerNight" validate:"gte=1"`
	Guests        int     `json:"guests" validate:"gte=1"`
	ImageURL      *string `json:"imageUrl,omitempty"`
}
