package repositories

import (
	"database/sql"
	"errors"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/utils"
)

// BookingRepo owns booking rows and, as the booking ledger's data access,
// is the only place that moves a trip's available_seats counter during
// booking creation and cancellation.
type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BookingRepo) GetByID(q intdb.Queryer, id int64) (models.Booking, error) {
	var b models.Booking
	err := q.QueryRow(
		`SELECT id, trip_id, customer_id, seat_number, booked_at FROM bookings WHERE id=?`, id,
	).Scan(&b.ID, &b.TripID, &b.CustomerID, &b.SeatNumber, &b.BookedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
		}
		return models.Booking{}, err
	}
	return b, nil
}

// SeatTaken checks seat occupancy. Callers racing on the same trip hold the
// trip row lock, so the answer stays true until commit.
func (r BookingRepo) SeatTaken(q intdb.Queryer, tripID int64, seat int) (bool, error) {
	var n int
	err := q.QueryRow(
		`SELECT COUNT(*) FROM bookings WHERE trip_id=? AND seat_number=?`, tripID, seat,
	).Scan(&n)
	return n > 0, err
}

func (r BookingRepo) CountByTrip(q intdb.Queryer, tripID int64) (int, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM bookings WHERE trip_id=?`, tripID).Scan(&n)
	return n, err
}

func (r BookingRepo) Insert(q intdb.Queryer, b models.Booking) (int64, error) {
	res, err := q.Exec(
		`INSERT INTO bookings (trip_id, customer_id, seat_number, booked_at) VALUES (?, ?, ?, ?)`,
		b.TripID, b.CustomerID, b.SeatNumber, utils.FormatDateTime(b.BookedAt),
	)
	if err != nil {
		if intdb.IsDuplicate(err) {
			return 0, domain.ConflictError{Resource: "booking", Msg: "seat already booked"}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepo) Delete(q intdb.Queryer, id int64) error {
	res, err := q.Exec(`DELETE FROM bookings WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "booking", ID: id}
	}
	return nil
}

// DeleteByTrip removes every booking of a trip; used by the explicit
// trip-delete cascade. Seats are not restored because the trip goes with
// them.
func (r BookingRepo) DeleteByTrip(q intdb.Queryer, tripID int64) error {
	_, err := q.Exec(`DELETE FROM bookings WHERE trip_id=?`, tripID)
	return err
}

// AdjustSeats moves the available_seats counter by delta. Must run in the
// same transaction as the booking insert or delete it pairs with.
func (r BookingRepo) AdjustSeats(q intdb.Queryer, tripID int64, delta int) error {
	_, err := q.Exec(`UPDATE trips SET available_seats = available_seats + ? WHERE id=?`, delta, tripID)
	return err
}

const bookingDetailSelect = `
	SELECT bk.id, bk.trip_id, bk.customer_id, bk.seat_number, bk.booked_at,
	       u.username, t.departure_time
	FROM bookings bk
	JOIN users u ON u.id = bk.customer_id
	JOIN trips t ON t.id = bk.trip_id`

func (r BookingRepo) ListByCustomer(customerID int64) ([]models.BookingDetail, error) {
	rows, err := r.db().Query(
		bookingDetailSelect+` WHERE bk.customer_id=? ORDER BY bk.booked_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

func (r BookingRepo) ListAll() ([]models.BookingDetail, error) {
	rows, err := r.db().Query(bookingDetailSelect + ` ORDER BY bk.booked_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

func (r BookingRepo) ListByTrip(tripID int64) ([]models.BookingDetail, error) {
	rows, err := r.db().Query(
		bookingDetailSelect+` WHERE bk.trip_id=? ORDER BY bk.seat_number ASC`, tripID)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(rows)
}

func collectBookingDetails(rows *sql.Rows) ([]models.BookingDetail, error) {
	defer rows.Close()

	out := []models.BookingDetail{}
	for rows.Next() {
		var d models.BookingDetail
		if err := rows.Scan(&d.ID, &d.TripID, &d.CustomerID, &d.SeatNumber, &d.BookedAt,
			&d.CustomerName, &d.DepartureTime); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
