package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

func New() *Server {
	m := chi.NewRouter()

	// middlewares must be registered before any route
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(15 * time.Second))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}

// Options tune the identity and abuse controls of the API routes.
type Options struct {
	// JWTSecret enables bearer-token identity. Empty means request bodies are trusted.
	JWTSecret string
	// ReviewsPerMinute caps review submissions per caller; 0 disables the cap.
	ReviewsPerMinute int
}

func (s *Server) MountHandlers(h *Handlers, opts Options) {
	s.mux.Get("/healthz", h.health)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Use(Authenticate(opts.JWTSecret))

		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Post("/hotels/{id}/quote", h.quote)
		r.Get("/hotels/{id}/reviews", h.listReviews)
		r.Get("/hotels/{id}/reviews/check", h.checkReview)
		r.Post("/hotels/{id}/rating/recompute", h.recomputeRating)
		r.Get("/users/{id}", h.getUser)

		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity(opts.JWTSecret != ""))

			r.Post("/hotels", h.registerHotel)
			r.With(LimitPerCaller(opts.ReviewsPerMinute)).Post("/hotels/{id}/reviews", h.submitReview)
			r.Post("/bookings", h.createBooking)
			r.Post("/bookings/list", h.listBookingsByBody)
			r.Get("/users/{id}/bookings", h.listBookingsByPath)
			r.Post("/users/me", h.ensureUser)
			r.Patch("/users/{id}", h.updateUser)
		})
	})
}
