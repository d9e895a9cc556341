package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

const (
	errDuplicateEntry  = 1062
	errNoReferencedRow = 1452
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// mysqlCode returns the server error number, or 0 for anything else.
func mysqlCode(err error) (uint16, string) {
	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, me.Message
	}
	return 0, ""
}

// missingParent maps a foreign key failure to the side that does not exist.
func missingParent(msg string) error {
	if strings.Contains(msg, "hotel_id") {
		return domain.ErrHotelNotFound
	}
	return domain.ErrUserNotFound
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
func (r *Repo) Close() error                   { return r.db.Close() }

// ---- hotels ----

func (r *Repo) CreateHotel(ctx context.Context, d domain.HotelDraft) (domain.Hotel, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL,
		d.Name,
		d.Description,
		d.Location,
		d.PricePerNight,
		valStr(d.ImageURL),
		d.Guests,
	)
	if err != nil {
		return domain.Hotel{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Hotel{}, err
	}
	return r.GetHotel(ctx, id)
}

func scanHotel(sc interface{ Scan(...any) error }) (domain.Hotel, error) {
	var h domain.Hotel
	var img sql.NullString
	if err := sc.Scan(
		&h.ID,
		&h.Name,
		&h.Description,
		&h.Location,
		&h.PricePerNight,
		&img,
		&h.Guests,
		&h.TotalRating,
		&h.RatingCount,
		&h.CreatedAt,
	); err != nil {
		return domain.Hotel{}, err
	}
	h.ImageURL = ptrStr(img)
	return h, nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrHotelNotFound
	}
	return h, err
}

func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, listHotelsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ListHotelIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, listHotelIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ---- users ----

func (r *Repo) CreateUserIfMissing(ctx context.Context, u domain.User) (bool, error) {
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	_, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Email, u.Username, string(u.Role))
	if err == nil {
		return true, nil
	}
	if code, msg := mysqlCode(err); code == errDuplicateEntry {
		if strings.Contains(msg, "uq_users_email") {
			return false, domain.Invalid("email %q is already registered", u.Email)
		}
		return false, nil
	}
	return false, err
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	var role string
	err := r.db.QueryRowContext(ctx, getUserSQL, id).Scan(&u.ID, &u.Email, &u.Username, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) UpdateUsername(ctx context.Context, id, username string) (domain.User, error) {
	// RowsAffected is 0 for an unchanged value too, so existence is checked by the read.
	if _, err := r.db.ExecContext(ctx, updateUsernameSQL, username, id); err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, id)
}

func (r *Repo) SetRole(ctx context.Context, id string, role domain.Role) error {
	if _, err := r.db.ExecContext(ctx, updateRoleSQL, string(role), id); err != nil {
		return err
	}
	_, err := r.GetUser(ctx, id)
	return err
}

// ---- bookings ----

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.UserID,
		b.HotelID,
		valStr(b.SpecialInfo),
		b.DaysCount,
		b.Guests,
		b.AllInclusive,
		b.TotalPrice,
		domain.CalendarDate(b.CheckInDate),
		domain.CalendarDate(b.CheckOutDate),
	)
	if err != nil {
		if code, msg := mysqlCode(err); code == errNoReferencedRow {
			return domain.Booking{}, missingParent(msg)
		}
		return domain.Booking{}, err
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return domain.Booking{}, err
	}
	if err := r.db.QueryRowContext(ctx, getBookingCreatedAtSQL, b.ID).Scan(&b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repo) ListBookingsByUser(ctx context.Context, userID string) ([]domain.BookingView, error) {
	rows, err := r.db.QueryContext(ctx, listBookingsByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BookingView{}
	for rows.Next() {
		var v domain.BookingView
		var info, img sql.NullString
		if err := rows.Scan(
			&v.ID,
			&v.UserID,
			&v.HotelID,
			&info,
			&v.DaysCount,
			&v.Guests,
			&v.AllInclusive,
			&v.TotalPrice,
			&v.CheckInDate,
			&v.CheckOutDate,
			&v.CreatedAt,
			&v.Name,
			&v.Location,
			&img,
			&v.PricePerNight,
			&v.TotalRating,
			&v.RatingCount,
		); err != nil {
			return nil, err
		}
		v.SpecialInfo = ptrStr(info)
		v.ImageURL = ptrStr(img)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ---- reviews ----

func (r *Repo) HasReview(ctx context.Context, hotelID int64, userID string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, hasReviewSQL, hotelID, userID).Scan(&ok)
	return ok, err
}

func (r *Repo) ListReviews(ctx context.Context, hotelID int64) ([]domain.ReviewView, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ReviewView{}
	for rows.Next() {
		var v domain.ReviewView
		var content sql.NullString
		if err := rows.Scan(&v.ID, &v.UserID, &v.HotelID, &v.Rating, &content, &v.CreatedAt, &v.Username); err != nil {
			return nil, err
		}
		v.Content = content.String
		out = append(out, v)
	}
	return out, rows.Err()
}

var _ domain.Store = (*Repo)(nil)
