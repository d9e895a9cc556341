package httpserver

import (
	"net/http"
)

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.Reviews.ListReviews(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) checkReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, err := actor(r, r.URL.Query().Get("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	done, err := h.Reviews.HasReviewed(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

type submitReviewRequest struct {
	UserID      string `json:"userId"`
	Rating      int    `json:"rating" validate:"required"`
	Description string `json:"description" validate:"max=5000"`
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req submitReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, err := actor(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rv, err := h.Reviews.SubmitReview(r.Context(), id, userID, req.Rating, req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}
