package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

// room for the image plus the text fields
const maxMultipartBody = 6 << 20

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Catalog.ListHotels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, hs)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	hotel, err := h.Catalog.ViewHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, hotel)
}

func (h *Handlers) recomputeRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, _, err := h.Catalog.RecomputeRating(r.Context(), id); err != nil {
		log.Warn().Err(err).Int64("hotel_id", id).Msg("rating recompute failed")
	}
	w.WriteHeader(http.StatusAccepted)
}

type quoteRequest struct {
	CheckInDate  string `json:"checkInDate" validate:"required"`
	CheckOutDate string `json:"checkOutDate" validate:"required"`
	Guests       *int   `json:"guests"`
	AllInclusive bool   `json:"allInclusive"`
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	stay, err := parseStay(req.CheckInDate, req.CheckOutDate, req.Guests, req.AllInclusive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.Bookings.QuotePrice(r.Context(), id, stay)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// parseStay applies the request defaults: one guest when omitted.
func parseStay(in, out string, guests *int, allInclusive bool) (domain.Stay, error) {
	checkIn, err := domain.ParseStayDate(in)
	if err != nil {
		return domain.Stay{}, err
	}
	checkOut, err := domain.ParseStayDate(out)
	if err != nil {
		return domain.Stay{}, err
	}
	g := 1
	if guests != nil {
		g = *guests
	}
	return domain.Stay{CheckIn: checkIn, CheckOut: checkOut, Guests: g, AllInclusive: allInclusive}, nil
}

type registerHotelRequest struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	PricePerNight int64  `json:"pricePerNight"`
	Guests        int    `json:"guests"`
}

// registerHotel accepts multipart/form-data (with an optional "image" file)
// or a plain JSON body without an image.
func (h *Handlers) registerHotel(w http.ResponseWriter, r *http.Request) {
	var req registerHotelRequest
	var img *app.ImageUpload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
		if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
			writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid multipart form")
			return
		}
		var err error
		if req, err = formRequest(r); err != nil {
			writeError(w, r, err)
			return
		}
		if img, err = formImage(r); err != nil {
			writeError(w, r, err)
			return
		}
	} else if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", "request body must be a JSON object")
		return
	}

	owner, err := actor(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Catalog.RegisterHotel(r.Context(), owner, domain.HotelDraft{
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		Guests:        req.Guests,
	}, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

func formRequest(r *http.Request) (registerHotelRequest, error) {
	req := registerHotelRequest{
		UserID:      r.FormValue("userId"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
	}
	var err error
	if v := r.FormValue("pricePerNight"); v != "" {
		if req.PricePerNight, err = strconv.ParseInt(v, 10, 64); err != nil {
			return req, domain.Invalid("pricePerNight must be a whole number")
		}
	}
	if v := r.FormValue("guests"); v != "" {
		if req.Guests, err = strconv.Atoi(v); err != nil {
			return req, domain.Invalid("guests must be a whole number")
		}
	}
	return req, nil
}

func formImage(r *http.Request) (*app.ImageUpload, error) {
	f, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Invalid("invalid image upload")
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.Invalid("invalid image upload")
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(body)
	}
	return &app.ImageUpload{Filename: hdr.Filename, ContentType: ct, Body: body}, nil
}
