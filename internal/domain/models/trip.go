package models

import "time"

// Trip is a scheduled departure on a route. BusID is nil when the assigned
// bus was retired; such trips cannot be booked. AvailableSeats is owned by
// the booking ledger: it always equals bus capacity minus active bookings.
type Trip struct {
	ID             int64     `json:"id"`
	RouteID        int64     `json:"routeId"`
	BusID          *int64    `json:"busId"`
	BusCapacity    int       `json:"busCapacity,omitempty"`
	OrganizerID    int64     `json:"organizerId"`
	DriverID       int64     `json:"driverId"`
	CrewIDs        []int64   `json:"crewIds"`
	DepartureTime  time.Time `json:"departureTime"`
	AvailableSeats int       `json:"availableSeats"`
}

// TripUpdate supports PATCH-style updates via key presence; nil fields are
// left untouched. A non-nil CrewIDs replaces the whole crew list.
type TripUpdate struct {
	BusID          *int64
	DriverID       *int64
	CrewIDs        *[]int64
	DepartureTime  *time.Time
	AvailableSeats *int
}
