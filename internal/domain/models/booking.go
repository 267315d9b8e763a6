package models

import "time"

// Booking is a customer's claim on one seat of one trip. Seat numbers are
// unique per trip; the (trip_id, seat_number) unique key backs that up.
type Booking struct {
	ID         int64     `json:"id"`
	TripID     int64     `json:"tripId"`
	CustomerID int64     `json:"customerId"`
	SeatNumber int       `json:"seatNumber"`
	BookedAt   time.Time `json:"bookedAt"`
}

// BookingDetail joins in the fields list endpoints and documents need.
type BookingDetail struct {
	Booking
	CustomerName  string    `json:"customerName,omitempty"`
	DepartureTime time.Time `json:"departureTime"`
}
