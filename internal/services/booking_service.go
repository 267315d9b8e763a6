package services

import (
	"database/sql"
	"fmt"
	"time"

	"backend/internal/authz"
	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// BookingService is the booking ledger: the only writer of booking rows and
// the only mover of a trip's available_seats counter. Every check in Create
// and Delete runs against the snapshot held by the trip row lock, so two
// requests racing for the same seat or the last seat serialize on the trip.
type BookingService struct {
	DB        *sql.DB
	Bookings  repositories.BookingRepo
	Trips     repositories.TripRepo
	Users     repositories.UserRepo
	Now       func() time.Time
	RequestID string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// Create books one seat for the calling customer. Validation order: trip
// exists, trip has a bus, trip is in the future, seat number in range, seat
// free, seats left. The booking insert and the counter decrement commit as
// one unit; losers of a seat race get ConflictError and no side effects.
func (s BookingService) Create(p domain.Principal, tripID int64, seatNumber int) (models.Booking, error) {
	if err := authz.Authorize(p, authz.OpCreateBooking); err != nil {
		return models.Booking{}, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	trip, err := s.Trips.GetForUpdate(tx, tripID)
	if err != nil {
		return models.Booking{}, err
	}
	if trip.BusID == nil {
		return models.Booking{}, domain.InvalidStateError{
			Resource: "trip",
			Msg:      "no bus assigned yet",
		}
	}
	now := s.now()
	if trip.DepartureTime.Before(now) {
		return models.Booking{}, domain.InvalidStateError{
			Resource: "trip",
			Msg:      "cannot book a past trip",
		}
	}
	if seatNumber < 1 || seatNumber > trip.BusCapacity {
		return models.Booking{}, domain.ValidationError{
			Field: "seatNumber",
			Msg:   fmt.Sprintf("must be between 1 and %d", trip.BusCapacity),
		}
	}
	taken, err := s.Bookings.SeatTaken(tx, tripID, seatNumber)
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	if taken {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "seat already booked"}
	}
	if trip.AvailableSeats <= 0 {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "no available seats on this trip"}
	}

	booking := models.Booking{
		TripID:     tripID,
		CustomerID: p.ID,
		SeatNumber: seatNumber,
		BookedAt:   now,
	}
	id, err := s.Bookings.Insert(tx, booking)
	if err != nil {
		if domain.IsConflict(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.InternalError{Err: err}
	}
	if err := s.Bookings.AdjustSeats(tx, tripID, -1); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}

	booking.ID = id
	utils.LogEvent(s.RequestID, "bookings", "create",
		fmt.Sprintf("booking_id=%d trip_id=%d seat=%d", id, tripID, seatNumber))
	return booking, nil
}

// Delete cancels the caller's own booking and restores exactly one seat to
// the parent trip, atomically with the row removal.
func (s BookingService) Delete(p domain.Principal, bookingID int64) error {
	if err := authz.Authorize(p, authz.OpDeleteBooking); err != nil {
		return err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	booking, err := s.Bookings.GetByID(tx, bookingID)
	if err != nil {
		return err
	}
	if booking.CustomerID != p.ID {
		return domain.ForbiddenError{Msg: "you can only delete your own bookings"}
	}
	// Lock the trip so the restore cannot interleave with a concurrent
	// booking on the same trip.
	if _, err := s.Trips.GetForUpdate(tx, booking.TripID); err != nil {
		return err
	}
	if err := s.Bookings.Delete(tx, bookingID); err != nil {
		return err
	}
	if err := s.Bookings.AdjustSeats(tx, booking.TripID, +1); err != nil {
		return domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "bookings", "delete",
		fmt.Sprintf("booking_id=%d trip_id=%d seat=%d", bookingID, booking.TripID, booking.SeatNumber))
	return nil
}

func (s BookingService) ListMine(p domain.Principal) ([]models.BookingDetail, error) {
	if err := authz.Authorize(p, authz.OpListMyBookings); err != nil {
		return nil, err
	}
	return s.Bookings.ListByCustomer(p.ID)
}

func (s BookingService) ListAll(p domain.Principal) ([]models.BookingDetail, error) {
	if err := authz.Authorize(p, authz.OpListAllBookings); err != nil {
		return nil, err
	}
	return s.Bookings.ListAll()
}

// ListForCustomer lets managers and organizers inspect one customer's
// bookings.
func (s BookingService) ListForCustomer(p domain.Principal, customerID int64) ([]models.BookingDetail, error) {
	if err := authz.Authorize(p, authz.OpListCustomerBookings); err != nil {
		return nil, err
	}
	if _, err := s.Users.GetByID(customerID); err != nil {
		return nil, err
	}
	return s.Bookings.ListByCustomer(customerID)
}

// Get returns a single booking. Managers and organizers see any booking;
// customers only their own.
func (s BookingService) Get(p domain.Principal, bookingID int64) (models.Booking, error) {
	if err := authz.Authorize(p, authz.OpGetBooking); err != nil {
		return models.Booking{}, err
	}
	booking, err := s.Bookings.GetByID(s.db(), bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if p.Roles.Has(domain.RoleManager) || p.Roles.Has(domain.RoleOrganizer) {
		return booking, nil
	}
	if booking.CustomerID != p.ID {
		return models.Booking{}, domain.ForbiddenError{Msg: "you can only view your own bookings"}
	}
	return booking, nil
}
