package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/domain"
)

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type ensureUserRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ensureUser is called on every sign-in; it creates the user the first time.
func (h *Handlers) ensureUser(w http.ResponseWriter, r *http.Request) {
	var req ensureUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := actor(r, req.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	email := req.Email
	if ident, ok := IdentityFrom(r.Context()); ok && ident.Email != "" {
		email = ident.Email
	}

	u, created, err := h.Users.EnsureUser(r.Context(), id, email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, u)
}

type updateUserRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username" validate:"required"`
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	who, err := actor(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if who == "" {
		writeError(w, r, domain.Invalid("userId is required"))
		return
	}
	u, err := h.Users.UpdateUsername(r.Context(), who, id, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
