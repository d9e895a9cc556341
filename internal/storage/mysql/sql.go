package mysql

const insertHotelSQL = `
INSERT INTO hotels
  (name, description, location, price_per_night, image_url, guests)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const hotelColumns = `
  h.id, h.name, h.description, h.location, h.price_per_night, h.image_url,
  h.guests, h.total_rating, h.rating_count, h.created_at`

const getHotelSQL = `SELECT` + hotelColumns + `
FROM hotels h
WHERE h.id = ?
`

const listHotelsSQL = `SELECT` + hotelColumns + `
FROM hotels h
ORDER BY h.id
`

const listHotelIDsSQL = `SELECT id FROM hotels ORDER BY id`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

// Plain INSERT: a 1062 on the primary key means "already there", one on
// uq_users_email is a real conflict. ON DUPLICATE KEY would hide the latter.
const insertUserSQL = `
INSERT INTO users (id, email, username, role)
VALUES (?, ?, ?, ?)
`

const getUserSQL = `
SELECT id, email, username, role, created_at
FROM users
WHERE id = ?
`

const updateUsernameSQL = `UPDATE users SET username = ? WHERE id = ?`

const updateRoleSQL = `UPDATE users SET role = ? WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings
  (user_id, hotel_id, special_info, days_count, guests, all_inclusive, total_price, check_in_date, check_out_date)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const getBookingCreatedAtSQL = `SELECT created_at FROM bookings WHERE id = ?`

const listBookingsByUserSQL = `
SELECT
  b.id, b.user_id, b.hotel_id, b.special_info, b.days_count, b.guests,
  b.all_inclusive, b.total_price, b.check_in_date, b.check_out_date, b.created_at,
  h.name, h.location, h.image_url, h.price_per_night, h.total_rating, h.rating_count
FROM bookings b
JOIN hotels h ON h.id = b.hotel_id
WHERE b.user_id = ?
ORDER BY b.id
`

// -----------------------------------------------------------------------------
// REVIEWS & RATING COUNTERS
// -----------------------------------------------------------------------------

const hasReviewSQL = `SELECT EXISTS(SELECT 1 FROM opinions WHERE hotel_id = ? AND user_id = ?)`

const listReviewsSQL = `
SELECT o.id, o.user_id, o.hotel_id, o.rating, o.content, o.created_at, u.username
FROM opinions o
JOIN users u ON u.id = o.user_id
WHERE o.hotel_id = ?
ORDER BY o.id
`

const insertReviewSQL = `
INSERT INTO opinions (user_id, hotel_id, rating, content)
VALUES (?, ?, ?, ?)
`

const getReviewCreatedAtSQL = `SELECT created_at FROM opinions WHERE id = ?`

// Single statement so concurrent submissions cannot lose an increment.
const incrementRatingSQL = `
UPDATE hotels
SET total_rating = total_rating + ?,
    rating_count = rating_count + 1
WHERE id = ?
`

const lockRatingSQL = `
SELECT total_rating, rating_count
FROM hotels
WHERE id = ?
FOR UPDATE
`

const sumRatingsSQL = `
SELECT CAST(COALESCE(SUM(rating), 0) AS SIGNED), COUNT(*)
FROM opinions
WHERE hotel_id = ?
`

const setRatingSQL = `
UPDATE hotels
SET total_rating = ?, rating_count = ?
WHERE id = ?
`
