package services

import (
	"testing"
	"time"

	"backend/internal/domain"
	"backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var tripColumns = []string{
	"id", "route_id", "bus_id", "capacity",
	"organizer_id", "driver_id", "departure_time", "available_seats",
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func customer(id int64) domain.Principal {
	return domain.Principal{ID: id, Username: "cust", Roles: domain.NewRoleSet(domain.RoleCustomer)}
}

func bookingServiceFor(db *sqlmockDB) BookingService {
	return BookingService{
		DB:       db.DB,
		Bookings: repositories.BookingRepo{DB: db.DB},
		Trips:    repositories.TripRepo{DB: db.DB},
		Users:    repositories.UserRepo{DB: db.DB},
		Now:      fixedNow,
	}
}

func TestCreateBookingDecrementsSeats(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings").WithArgs(int64(9), 12).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	db.mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(7, 1))
	db.mock.ExpectExec("UPDATE trips SET available_seats").WithArgs(-1, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectCommit()

	booking, err := svc.Create(customer(11), 9, 12)
	if err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}
	if booking.ID != 7 || booking.SeatNumber != 12 || booking.CustomerID != 11 {
		t.Fatalf("unexpected booking returned: %+v", booking)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBookingSeatAlreadyTaken(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(24 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings").WithArgs(int64(9), 12).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	db.mock.ExpectRollback()

	_, err := svc.Create(customer(11), 9, 12)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict for an occupied seat, got %v", err)
	}
}

func TestCreateBookingNoSeatsLeft(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(24 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 0))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings").WithArgs(int64(9), 12).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	db.mock.ExpectRollback()

	_, err := svc.Create(customer(11), 9, 12)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict when the trip is full, got %v", err)
	}
}

func TestCreateBookingPastTrip(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(-1 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectRollback()

	_, err := svc.Create(customer(11), 9, 12)
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state for a departed trip, got %v", err)
	}
}

func TestCreateBookingTripWithoutBus(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(24 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, nil, 0, 2, 4, departure, 0))
	db.mock.ExpectRollback()

	_, err := svc.Create(customer(11), 9, 12)
	if !domain.IsInvalidState(err) {
		t.Fatalf("expected invalid state for a busless trip, got %v", err)
	}
}

func TestCreateBookingSeatOutOfRange(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(24 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectRollback()

	_, err := svc.Create(customer(11), 9, 41)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for seat 41 on a 40-seat bus, got %v", err)
	}
}

func TestCreateBookingWithoutRolesFallsBackToCustomer(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	departure := fixedNow().Add(24 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings").WithArgs(int64(9), 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	db.mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(8, 1))
	db.mock.ExpectExec("UPDATE trips SET available_seats").WithArgs(-1, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectCommit()

	roleless := domain.Principal{ID: 11, Username: "new", Roles: domain.NewRoleSet()}
	if _, err := svc.Create(roleless, 9, 1); err != nil {
		t.Fatalf("principal without roles should book as a customer, got %v", err)
	}
}

func TestDeleteBookingRestoresSeat(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM bookings WHERE id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "trip_id", "customer_id", "seat_number", "booked_at"}).
			AddRow(7, 9, 11, 12, fixedNow()))
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, fixedNow().Add(time.Hour), 4))
	db.mock.ExpectExec("DELETE FROM bookings WHERE id").WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectExec("UPDATE trips SET available_seats").WithArgs(1, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectCommit()

	if err := svc.Delete(customer(11), 7); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteBookingOwnedBySomeoneElse(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := bookingServiceFor(db)

	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM bookings WHERE id").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "trip_id", "customer_id", "seat_number", "booked_at"}).
			AddRow(7, 9, 99, 12, fixedNow()))
	db.mock.ExpectRollback()

	err := svc.Delete(customer(11), 7)
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for someone else's booking, got %v", err)
	}
}

func TestCreateBookingUnauthenticated(t *testing.T) {
	svc := BookingService{}
	_, err := svc.Create(domain.Principal{}, 9, 1)
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}
