package services

import (
	"errors"
	"testing"
	"time"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	routeColumns = []string{"id", "origin_branch_id", "destination_branch_id", "duration_seconds", "distance_km"}
	busColumns   = []string{"id", "plate_number", "capacity", "branch_id"}
	userColumns  = []string{"id", "username", "email", "created_at"}
)

func organizer(id int64) domain.Principal {
	return domain.Principal{ID: id, Username: "org", Roles: domain.NewRoleSet(domain.RoleOrganizer)}
}

func tripServiceFor(db *sqlmockDB) TripService {
	return TripService{
		DB:       db.DB,
		Trips:    repositories.TripRepo{DB: db.DB},
		Bookings: repositories.BookingRepo{DB: db.DB},
		Routes:   repositories.RouteRepo{DB: db.DB},
		Buses:    repositories.BusRepo{DB: db.DB},
		Users:    repositories.UserRepo{DB: db.DB},
		Now:      fixedNow,
	}
}

func expectRouteLookup(db *sqlmockDB, id int64) {
	db.mock.ExpectQuery("FROM routes WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(routeColumns).AddRow(id, 1, 2, 7200, 150.0))
}

func expectBusLookup(db *sqlmockDB, id int64, capacity int) {
	db.mock.ExpectQuery("FROM buses WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(busColumns).AddRow(id, "B 1234 XYZ", capacity, 1))
}

func expectUserLookup(db *sqlmockDB, id int64, name string) {
	db.mock.ExpectQuery("FROM users WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id, name, name+"@example.com", fixedNow()))
}

func TestCreateTripHappyPath(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	expectRouteLookup(db, 1)
	expectBusLookup(db, 3, 40)
	expectUserLookup(db, 2, "org")
	expectUserLookup(db, 4, "drv")
	db.mock.ExpectQuery("SELECT id FROM users WHERE id IN").WithArgs(int64(5), int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(6))
	db.mock.ExpectBegin()
	db.mock.ExpectExec("INSERT INTO trips").
		WillReturnResult(sqlmock.NewResult(9, 1))
	db.mock.ExpectExec("DELETE FROM trip_crew").WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	db.mock.ExpectExec("INSERT INTO trip_crew").WithArgs(int64(9), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectExec("INSERT INTO trip_crew").WithArgs(int64(9), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectCommit()

	trip, err := svc.Create(organizer(2), TripInput{
		RouteID:        1,
		BusID:          3,
		OrganizerID:    2,
		DriverID:       4,
		CrewIDs:        []int64{5, 6},
		DepartureTime:  fixedNow().Add(48 * time.Hour),
		AvailableSeats: 40,
	})
	if err != nil {
		t.Fatalf("expected trip creation to succeed, got %v", err)
	}
	if trip.ID != 9 || trip.AvailableSeats != 40 {
		t.Fatalf("unexpected trip returned: %+v", trip)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateTripSeatsAboveCapacity(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	expectRouteLookup(db, 1)
	expectBusLookup(db, 3, 40)

	_, err := svc.Create(organizer(2), TripInput{
		RouteID:        1,
		BusID:          3,
		OrganizerID:    2,
		DriverID:       4,
		DepartureTime:  fixedNow().Add(48 * time.Hour),
		AvailableSeats: 41,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for 41 seats on a 40-seat bus, got %v", err)
	}
}

func TestCreateTripDepartureInThePast(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	expectRouteLookup(db, 1)
	expectBusLookup(db, 3, 40)

	_, err := svc.Create(organizer(2), TripInput{
		RouteID:        1,
		BusID:          3,
		OrganizerID:    2,
		DriverID:       4,
		DepartureTime:  fixedNow().Add(-time.Minute),
		AvailableSeats: 10,
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for a past departure, got %v", err)
	}
}

func TestCreateTripUnknownCrewMemberRejectsWholeList(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	expectRouteLookup(db, 1)
	expectBusLookup(db, 3, 40)
	expectUserLookup(db, 2, "org")
	expectUserLookup(db, 4, "drv")
	// id 77 does not come back from the lookup
	db.mock.ExpectQuery("SELECT id FROM users WHERE id IN").WithArgs(int64(5), int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	_, err := svc.Create(organizer(2), TripInput{
		RouteID:        1,
		BusID:          3,
		OrganizerID:    2,
		DriverID:       4,
		CrewIDs:        []int64{5, 77},
		DepartureTime:  fixedNow().Add(48 * time.Hour),
		AvailableSeats: 10,
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found for the missing crew member, got %v", err)
	}
	if nf.ID != 77 {
		t.Fatalf("error should name crew member 77, got %+v", nf)
	}
}

func TestCreateTripForbiddenForDriver(t *testing.T) {
	svc := TripService{}
	driver := domain.Principal{ID: 4, Username: "drv", Roles: domain.NewRoleSet(domain.RoleDriver)}
	_, err := svc.Create(driver, TripInput{})
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for a driver creating trips, got %v", err)
	}
}

func TestUpdateTripSeatCountBoundedByUnclaimedSeats(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings WHERE trip_id").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(35))
	db.mock.ExpectRollback()

	// 35 seats are booked on a 40-seat bus; setting 6 free seats would imply
	// 41 claims.
	six := 6
	_, err := svc.Update(organizer(2), 9, models.TripUpdate{AvailableSeats: &six})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTripBusSwapRecomputesSeats(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 30))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings WHERE trip_id").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	expectBusLookup(db, 8, 50)
	// counter becomes 50 - 10
	db.mock.ExpectExec("UPDATE trips SET").WithArgs(int64(8), 40, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectCommit()
	// fresh read after commit
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 8, 50, 2, 4, departure, 40))
	db.mock.ExpectQuery("SELECT user_id FROM trip_crew").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	busID := int64(8)
	trip, err := svc.Update(organizer(2), 9, models.TripUpdate{BusID: &busID})
	if err != nil {
		t.Fatalf("expected bus swap to succeed, got %v", err)
	}
	if trip.AvailableSeats != 40 {
		t.Fatalf("expected recomputed counter 40, got %d", trip.AvailableSeats)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateTripBusTooSmallForActiveBookings(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 10))
	db.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings WHERE trip_id").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	expectBusLookup(db, 8, 20)
	db.mock.ExpectRollback()

	busID := int64(8)
	_, err := svc.Update(organizer(2), 9, models.TripUpdate{BusID: &busID})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for a 20-seat bus with 30 bookings, got %v", err)
	}
}

func TestDeleteTripRemovesBookingsFirst(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectBegin()
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectExec("DELETE FROM bookings WHERE trip_id").WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	db.mock.ExpectExec("DELETE FROM trip_crew").WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	db.mock.ExpectExec("DELETE FROM trips WHERE id").WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	db.mock.ExpectCommit()

	if err := svc.Delete(organizer(2), 9); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if err := db.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListTripsCustomerSeesOnlyBookable(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectQuery("available_seats > 0").
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectQuery("SELECT user_id FROM trip_crew").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	trips, err := svc.List(customer(11))
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(trips) != 1 || trips[0].ID != 9 {
		t.Fatalf("unexpected list result: %+v", trips)
	}
}

func TestGetTripHiddenFromUnassignedDriver(t *testing.T) {
	db := newSqlmockDB(t)
	defer db.Close()
	svc := tripServiceFor(db)

	departure := fixedNow().Add(48 * time.Hour)
	db.mock.ExpectQuery("FROM trips t").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(9, 1, 3, 40, 2, 4, departure, 5))
	db.mock.ExpectQuery("SELECT user_id FROM trip_crew").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

	stranger := domain.Principal{ID: 42, Username: "other-driver", Roles: domain.NewRoleSet(domain.RoleDriver)}
	_, err := svc.Get(stranger, 9)
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for an unassigned driver, got %v", err)
	}
}
