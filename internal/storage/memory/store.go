// Package memory is an in-process implementation of domain.Store, used for
// local development (STORE_DRIVER=memory) and by the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

type reviewKey struct {
	userID  string
	hotelID int64
}

type Store struct {
	mu sync.Mutex

	now func() time.Time

	users    map[string]domain.User
	hotels   map[int64]domain.Hotel
	bookings []domain.Booking
	reviews  []domain.Review
	byPair   map[reviewKey]int

	nextHotelID   int64
	nextBookingID int64
	nextReviewID  int64
}

func New() *Store {
	return &Store{
		now:    func() time.Time { return time.Now().UTC() },
		users:  map[string]domain.User{},
		hotels: map[int64]domain.Hotel{},
		byPair: map[reviewKey]int{},
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// ---- hotels ----

func (s *Store) CreateHotel(ctx context.Context, d domain.HotelDraft) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHotelID++
	h := domain.Hotel{
		ID:            s.nextHotelID,
		Name:          d.Name,
		Description:   d.Description,
		Location:      d.Location,
		PricePerNight: d.PricePerNight,
		ImageURL:      d.ImageURL,
		Guests:        d.Guests,
		CreatedAt:     s.now(),
	}
	s.hotels[h.ID] = h
	return h, nil
}

func (s *Store) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrHotelNotFound
	}
	return h, nil
}

func (s *Store) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListHotelIDs(ctx context.Context) ([]int64, error) {
	hs, err := s.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// DeleteHotel removes the hotel with its bookings and reviews, mirroring the FK cascade.
func (s *Store) DeleteHotel(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hotels, id)
	s.bookings = filter(s.bookings, func(b domain.Booking) bool { return b.HotelID != id })
	s.reviews = filter(s.reviews, func(r domain.Review) bool { return r.HotelID != id })
	s.reindex()
}

// ---- users ----

func (s *Store) CreateUserIfMissing(ctx context.Context, u domain.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return false, nil
	}
	for _, other := range s.users {
		if other.Email == u.Email {
			return false, domain.Invalid("email %q is already registered", u.Email)
		}
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return true, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) UpdateUsername(ctx context.Context, id, username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	u.Username = username
	s.users[id] = u
	return u, nil
}

func (s *Store) SetRole(ctx context.Context, id string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

// DeleteUser removes the user with its bookings and reviews.
func (s *Store) DeleteUser(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	s.bookings = filter(s.bookings, func(b domain.Booking) bool { return b.UserID != id })
	s.reviews = filter(s.reviews, func(r domain.Review) bool { return r.UserID != id })
	s.reindex()
}

// ---- bookings ----

func (s *Store) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hotels[b.HotelID]; !ok {
		return domain.Booking{}, domain.ErrHotelNotFound
	}
	if _, ok := s.users[b.UserID]; !ok {
		return domain.Booking{}, domain.ErrUserNotFound
	}
	s.nextBookingID++
	b.ID = s.nextBookingID
	b.CreatedAt = s.now()
	s.bookings = append(s.bookings, b)
	return b, nil
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.BookingView{}
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		h := s.hotels[b.HotelID]
		out = append(out, domain.BookingView{
			Booking:       b,
			Name:          h.Name,
			Location:      h.Location,
			ImageURL:      h.ImageURL,
			PricePerNight: h.PricePerNight,
			TotalRating:   h.TotalRating,
			RatingCount:   h.RatingCount,
		})
	}
	return out, nil
}

// ---- reviews ----

func (s *Store) HasReview(ctx context.Context, hotelID int64, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byPair[reviewKey{userID: userID, hotelID: hotelID}]
	return ok, nil
}

func (s *Store) ListReviews(ctx context.Context, hotelID int64) ([]domain.ReviewView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.ReviewView{}
	for _, r := range s.reviews {
		if r.HotelID == hotelID {
			out = append(out, domain.ReviewView{Review: r, Username: s.users[r.UserID].Username})
		}
	}
	return out, nil
}

// ---- transactions ----

// WithinTx serialises transactions on the store mutex and restores the
// previous state when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hotels := make(map[int64]domain.Hotel, len(s.hotels))
	for k, v := range s.hotels {
		hotels[k] = v
	}
	reviews := append([]domain.Review(nil), s.reviews...)
	nextReviewID := s.nextReviewID

	if err := fn(ctx, &txStore{s: s}); err != nil {
		s.hotels = hotels
		s.reviews = reviews
		s.nextReviewID = nextReviewID
		s.reindex()
		return err
	}
	return nil
}

// SetCounters overwrites a hotel's stored counters without touching its reviews,
// which lets tests simulate drift.
func (s *Store) SetCounters(id int64, agg domain.RatingAggregate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.hotels[id]; ok {
		h.TotalRating, h.RatingCount = agg.Total, agg.Count
		s.hotels[id] = h
	}
}

// txStore runs with s.mu already held.
type txStore struct{ s *Store }

func (t *txStore) InsertReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	s := t.s
	if _, ok := s.hotels[r.HotelID]; !ok {
		return domain.Review{}, domain.ErrHotelNotFound
	}
	if _, ok := s.users[r.UserID]; !ok {
		return domain.Review{}, domain.ErrUserNotFound
	}
	key := reviewKey{userID: r.UserID, hotelID: r.HotelID}
	if _, ok := s.byPair[key]; ok {
		return domain.Review{}, domain.ErrDuplicateReview
	}
	s.nextReviewID++
	r.ID = s.nextReviewID
	r.CreatedAt = s.now()
	s.reviews = append(s.reviews, r)
	s.byPair[key] = len(s.reviews) - 1
	return r, nil
}

func (t *txStore) IncrementRating(ctx context.Context, hotelID int64, rating int) error {
	h, ok := t.s.hotels[hotelID]
	if !ok {
		return domain.ErrHotelNotFound
	}
	h.TotalRating += int64(rating)
	h.RatingCount++
	t.s.hotels[hotelID] = h
	return nil
}

func (t *txStore) LockRating(ctx context.Context, hotelID int64) (domain.RatingAggregate, error) {
	h, ok := t.s.hotels[hotelID]
	if !ok {
		return domain.RatingAggregate{}, domain.ErrHotelNotFound
	}
	return h.Rating(), nil
}

func (t *txStore) SumRatings(ctx context.Context, hotelID int64) (domain.RatingAggregate, error) {
	var ratings []int
	for _, r := range t.s.reviews {
		if r.HotelID == hotelID {
			ratings = append(ratings, r.Rating)
		}
	}
	return domain.Reconcile(ratings), nil
}

func (t *txStore) SetRating(ctx context.Context, hotelID int64, agg domain.RatingAggregate) error {
	h, ok := t.s.hotels[hotelID]
	if !ok {
		return domain.ErrHotelNotFound
	}
	h.TotalRating, h.RatingCount = agg.Total, agg.Count
	t.s.hotels[hotelID] = h
	return nil
}

func (s *Store) reindex() {
	s.byPair = make(map[reviewKey]int, len(s.reviews))
	for i, r := range s.reviews {
		s.byPair[reviewKey{userID: r.UserID, hotelID: r.HotelID}] = i
	}
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

var _ domain.Store = (*Store)(nil)
