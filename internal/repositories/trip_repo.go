package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "backend/internal/config"
	intdb "backend/internal/db"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/utils"
)

// TripRepo owns trip rows and the trip_crew attachment table. Seat counter
// writes during booking go through BookingRepo; this repo only touches
// available_seats on administrative edits.
type TripRepo struct {
	DB *sql.DB
}

func (r TripRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripSelect = `
	SELECT t.id, t.route_id, t.bus_id, COALESCE(b.capacity, 0),
	       t.organizer_id, t.driver_id, t.departure_time, t.available_seats
	FROM trips t
	LEFT JOIN buses b ON b.id = t.bus_id`

func scanTrip(scan func(dest ...any) error) (models.Trip, error) {
	var (
		t     models.Trip
		busID sql.NullInt64
	)
	err := scan(&t.ID, &t.RouteID, &busID, &t.BusCapacity,
		&t.OrganizerID, &t.DriverID, &t.DepartureTime, &t.AvailableSeats)
	if err != nil {
		return models.Trip{}, err
	}
	if busID.Valid {
		id := busID.Int64
		t.BusID = &id
	}
	return t, nil
}

func (r TripRepo) GetByID(q intdb.Queryer, id int64) (models.Trip, error) {
	row := q.QueryRow(tripSelect+` WHERE t.id=?`, id)
	t, err := scanTrip(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip", ID: id}
		}
		return models.Trip{}, err
	}
	t.CrewIDs, err = r.LoadCrew(q, id)
	return t, err
}

// GetForUpdate locks the trip row for the rest of the transaction. All seat
// availability checks and counter writes happen under this lock, which is
// what serializes competing bookings on the same trip.
func (r TripRepo) GetForUpdate(q intdb.Queryer, id int64) (models.Trip, error) {
	row := q.QueryRow(tripSelect+` WHERE t.id=? FOR UPDATE`, id)
	t, err := scanTrip(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip", ID: id}
		}
		return models.Trip{}, err
	}
	return t, nil
}

func (r TripRepo) LoadCrew(q intdb.Queryer, tripID int64) ([]int64, error) {
	rows, err := q.Query(`SELECT user_id FROM trip_crew WHERE trip_id=? ORDER BY user_id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r TripRepo) Create(q intdb.Queryer, t models.Trip) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO trips (route_id, bus_id, organizer_id, driver_id, departure_time, available_seats)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.RouteID, t.BusID, t.OrganizerID, t.DriverID,
		utils.FormatDateTime(t.DepartureTime), t.AvailableSeats,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ReplaceCrew swaps the full crew list; partial replacement never happens.
func (r TripRepo) ReplaceCrew(q intdb.Queryer, tripID int64, crew []int64) error {
	if _, err := q.Exec(`DELETE FROM trip_crew WHERE trip_id=?`, tripID); err != nil {
		return err
	}
	for _, userID := range crew {
		if _, err := q.Exec(`INSERT INTO trip_crew (trip_id, user_id) VALUES (?, ?)`, tripID, userID); err != nil {
			return err
		}
	}
	return nil
}

// UpdateFields applies the provided fields only, PATCH-style.
func (r TripRepo) UpdateFields(q intdb.Queryer, id int64, upd models.TripUpdate) error {
	sets := []string{}
	args := []any{}

	if upd.BusID != nil {
		sets = append(sets, "bus_id=?")
		args = append(args, *upd.BusID)
	}
	if upd.DriverID != nil {
		sets = append(sets, "driver_id=?")
		args = append(args, *upd.DriverID)
	}
	if upd.DepartureTime != nil {
		sets = append(sets, "departure_time=?")
		args = append(args, utils.FormatDateTime(*upd.DepartureTime))
	}
	if upd.AvailableSeats != nil {
		sets = append(sets, "available_seats=?")
		args = append(args, *upd.AvailableSeats)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := q.Exec(`UPDATE trips SET `+strings.Join(sets, ",")+` WHERE id=?`, args...)
	return err
}

func (r TripRepo) Delete(q intdb.Queryer, id int64) error {
	res, err := q.Exec(`DELETE FROM trips WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "trip", ID: id}
	}
	return nil
}

func (r TripRepo) DeleteCrew(q intdb.Queryer, tripID int64) error {
	_, err := q.Exec(`DELETE FROM trip_crew WHERE trip_id=?`, tripID)
	return err
}

const tripOrder = ` ORDER BY t.departure_time DESC`

// ListAll returns every trip, newest departure first.
func (r TripRepo) ListAll() ([]models.Trip, error) {
	rows, err := r.db().Query(tripSelect + tripOrder)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListBookable returns trips a customer may see: future departure and at
// least one free seat.
func (r TripRepo) ListBookable(now string) ([]models.Trip, error) {
	rows, err := r.db().Query(
		tripSelect+` WHERE t.departure_time >= ? AND t.available_seats > 0`+tripOrder, now)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListForStaff returns trips where the user is the driver, a crew member or
// the organizer.
func (r TripRepo) ListForStaff(userID int64) ([]models.Trip, error) {
	rows, err := r.db().Query(
		tripSelect+` WHERE t.driver_id=? OR t.organizer_id=?
			OR t.id IN (SELECT trip_id FROM trip_crew WHERE user_id=?)`+tripOrder,
		userID, userID, userID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r TripRepo) collect(rows *sql.Rows) ([]models.Trip, error) {
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		crew, err := r.LoadCrew(r.db(), out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].CrewIDs = crew
	}
	return out, nil
}
