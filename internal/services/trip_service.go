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

// TripService is the trip registry. It validates every reference before any
// write, keeps crew replacement atomic and decides which trips each role can
// see. Seat counter movement during booking belongs to BookingService.
type TripService struct {
	DB        *sql.DB
	Trips     repositories.TripRepo
	Bookings  repositories.BookingRepo
	Routes    repositories.RouteRepo
	Buses     repositories.BusRepo
	Users     repositories.UserRepo
	Now       func() time.Time
	RequestID string
}

func (s TripService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s TripService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// TripInput carries the full field set required at creation.
type TripInput struct {
	RouteID        int64
	BusID          int64
	OrganizerID    int64
	DriverID       int64
	CrewIDs        []int64
	DepartureTime  time.Time
	AvailableSeats int
}

func (s TripService) Create(p domain.Principal, in TripInput) (models.Trip, error) {
	if err := authz.Authorize(p, authz.OpCreateTrip); err != nil {
		return models.Trip{}, err
	}

	if _, err := s.Routes.GetByID(in.RouteID); err != nil {
		return models.Trip{}, err
	}
	bus, err := s.Buses.GetByID(in.BusID)
	if err != nil {
		return models.Trip{}, err
	}
	if in.AvailableSeats < 1 || in.AvailableSeats > bus.Capacity {
		return models.Trip{}, domain.ValidationError{
			Field: "availableSeats",
			Msg:   fmt.Sprintf("must be between 1 and bus capacity (%d)", bus.Capacity),
		}
	}
	if in.DepartureTime.Before(s.now()) {
		return models.Trip{}, domain.ValidationError{
			Field: "departureTime",
			Msg:   "cannot be in the past",
		}
	}
	if _, err := s.Users.GetByID(in.OrganizerID); err != nil {
		if domain.IsNotFound(err) {
			return models.Trip{}, domain.NotFoundError{Resource: "organizer", ID: in.OrganizerID}
		}
		return models.Trip{}, err
	}
	if _, err := s.Users.GetByID(in.DriverID); err != nil {
		if domain.IsNotFound(err) {
			return models.Trip{}, domain.NotFoundError{Resource: "driver", ID: in.DriverID}
		}
		return models.Trip{}, err
	}
	if err := s.resolveCrew(in.CrewIDs); err != nil {
		return models.Trip{}, err
	}

	trip := models.Trip{
		RouteID:        in.RouteID,
		BusID:          &in.BusID,
		BusCapacity:    bus.Capacity,
		OrganizerID:    in.OrganizerID,
		DriverID:       in.DriverID,
		CrewIDs:        in.CrewIDs,
		DepartureTime:  in.DepartureTime.UTC(),
		AvailableSeats: in.AvailableSeats,
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	id, err := s.Trips.Create(tx, trip)
	if err != nil {
		_ = tx.Rollback()
		return models.Trip{}, domain.InternalError{Err: err}
	}
	if err := s.Trips.ReplaceCrew(tx, id, in.CrewIDs); err != nil {
		_ = tx.Rollback()
		return models.Trip{}, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}

	trip.ID = id
	utils.LogEvent(s.RequestID, "trips", "create", fmt.Sprintf("trip_id=%d route_id=%d", id, in.RouteID))
	return trip, nil
}

// Update applies a partial edit. Each provided field is validated against
// the same constraints as creation; the seat bound is checked against the
// bus that will be in effect after the update. The whole edit runs with the
// trip row locked so the active booking count cannot move underneath it.
func (s TripService) Update(p domain.Principal, id int64, upd models.TripUpdate) (models.Trip, error) {
	if err := authz.Authorize(p, authz.OpUpdateTrip); err != nil {
		return models.Trip{}, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	trip, err := s.Trips.GetForUpdate(tx, id)
	if err != nil {
		return models.Trip{}, err
	}
	activeBookings, err := s.Bookings.CountByTrip(tx, id)
	if err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}

	effectiveCapacity := trip.BusCapacity
	if upd.BusID != nil {
		bus, err := s.Buses.GetByID(*upd.BusID)
		if err != nil {
			return models.Trip{}, err
		}
		if bus.Capacity < activeBookings {
			return models.Trip{}, domain.ValidationError{
				Field: "busId",
				Msg:   fmt.Sprintf("bus capacity %d is below the %d active bookings", bus.Capacity, activeBookings),
			}
		}
		effectiveCapacity = bus.Capacity
		// A bus swap without an explicit seat count recomputes the counter
		// so it keeps matching capacity minus active bookings.
		if upd.AvailableSeats == nil {
			recomputed := bus.Capacity - activeBookings
			upd.AvailableSeats = &recomputed
		}
	}
	if upd.AvailableSeats != nil {
		v := *upd.AvailableSeats
		if effectiveCapacity == 0 {
			return models.Trip{}, domain.ValidationError{
				Field: "availableSeats",
				Msg:   "trip has no assigned bus",
			}
		}
		if v < 0 || v > effectiveCapacity {
			return models.Trip{}, domain.ValidationError{
				Field: "availableSeats",
				Msg:   fmt.Sprintf("must be between 0 and bus capacity (%d)", effectiveCapacity),
			}
		}
		if v+activeBookings > effectiveCapacity {
			return models.Trip{}, domain.ValidationError{
				Field: "availableSeats",
				Msg:   fmt.Sprintf("only %d seats are unclaimed on this bus", effectiveCapacity-activeBookings),
			}
		}
	}
	if upd.DriverID != nil {
		if _, err := s.Users.GetByID(*upd.DriverID); err != nil {
			if domain.IsNotFound(err) {
				return models.Trip{}, domain.NotFoundError{Resource: "driver", ID: *upd.DriverID}
			}
			return models.Trip{}, err
		}
	}
	if upd.DepartureTime != nil && upd.DepartureTime.Before(s.now()) {
		return models.Trip{}, domain.ValidationError{
			Field: "departureTime",
			Msg:   "cannot be in the past",
		}
	}
	if upd.CrewIDs != nil {
		if err := s.resolveCrew(*upd.CrewIDs); err != nil {
			return models.Trip{}, err
		}
	}

	if err := s.Trips.UpdateFields(tx, id, upd); err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}
	if upd.CrewIDs != nil {
		if err := s.Trips.ReplaceCrew(tx, id, *upd.CrewIDs); err != nil {
			return models.Trip{}, domain.InternalError{Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Trip{}, domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "trips", "update", fmt.Sprintf("trip_id=%d", id))
	return s.Trips.GetByID(s.db(), id)
}

// Delete removes a trip and, explicitly and in the same transaction, every
// booking that depends on it. No seat restoration: the trip ceases to exist.
func (s TripService) Delete(p domain.Principal, id int64) error {
	if err := authz.Authorize(p, authz.OpDeleteTrip); err != nil {
		return err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return domain.InternalError{Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.Trips.GetForUpdate(tx, id); err != nil {
		return err
	}
	if err := s.Bookings.DeleteByTrip(tx, id); err != nil {
		return domain.InternalError{Err: err}
	}
	if err := s.Trips.DeleteCrew(tx, id); err != nil {
		return domain.InternalError{Err: err}
	}
	if err := s.Trips.Delete(tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Err: err}
	}

	utils.LogEvent(s.RequestID, "trips", "delete", fmt.Sprintf("trip_id=%d", id))
	return nil
}

// List returns the role-dependent view: customers get bookable future trips,
// driving staff their own assignments, organizers and managers everything.
func (s TripService) List(p domain.Principal) ([]models.Trip, error) {
	if err := authz.Authorize(p, authz.OpListTrips); err != nil {
		return nil, err
	}

	switch {
	case p.Roles.Has(domain.RoleCustomer) || p.Roles.Empty():
		return s.Trips.ListBookable(utils.FormatDateTime(s.now()))
	case p.Roles.Has(domain.RoleDriver) || p.Roles.Has(domain.RoleCrew):
		return s.Trips.ListForStaff(p.ID)
	default:
		return s.Trips.ListAll()
	}
}

// Get fetches one trip and applies the list filter as a visibility check.
// A trip the filter would hide is reported as forbidden, not missing.
func (s TripService) Get(p domain.Principal, id int64) (models.Trip, error) {
	if err := authz.Authorize(p, authz.OpGetTrip); err != nil {
		return models.Trip{}, err
	}
	trip, err := s.Trips.GetByID(s.db(), id)
	if err != nil {
		return models.Trip{}, err
	}
	if err := s.checkVisibility(p, trip); err != nil {
		return models.Trip{}, err
	}
	return trip, nil
}

func (s TripService) checkVisibility(p domain.Principal, trip models.Trip) error {
	switch {
	case p.Roles.Has(domain.RoleCustomer) || p.Roles.Empty():
		if trip.DepartureTime.Before(s.now()) || trip.AvailableSeats <= 0 {
			return domain.ForbiddenError{Msg: "you are not allowed to view this trip"}
		}
	case p.Roles.Has(domain.RoleDriver) || p.Roles.Has(domain.RoleCrew):
		if trip.DriverID == p.ID || trip.OrganizerID == p.ID {
			return nil
		}
		for _, crewID := range trip.CrewIDs {
			if crewID == p.ID {
				return nil
			}
		}
		return domain.ForbiddenError{Msg: "you are not allowed to view this trip"}
	}
	return nil
}

// resolveCrew rejects the whole crew list when any id is unknown, naming the
// first missing one. Partial crews are never attached.
func (s TripService) resolveCrew(ids []int64) error {
	missing, err := s.Users.MissingIDs(ids)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if len(missing) > 0 {
		return domain.NotFoundError{Resource: "crew member", ID: missing[0]}
	}
	return nil
}
