package services

import (
	"bytes"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"backend/internal/authz"
	intconfig "backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders PDFs: the per-trip passenger manifest for driving
// staff and the per-booking e-ticket for customers.
type DocsService struct {
	DB        *sql.DB
	Trips     repositories.TripRepo
	Bookings  repositories.BookingRepo
	Routes    repositories.RouteRepo
	Branches  repositories.BranchRepo
	RequestID string
}

func (s DocsService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

type manifestData struct {
	TripID        int64
	RouteLabel    string
	DepartureTime time.Time
	Capacity      int
	Bookings      []models.BookingDetail
}

// TripManifest lists a trip's passengers by seat. Drivers and crew can only
// pull manifests for trips they are assigned to.
func (s DocsService) TripManifest(p domain.Principal, tripID int64) ([]byte, string, error) {
	if err := authz.Authorize(p, authz.OpTripManifest); err != nil {
		return nil, "", err
	}
	trip, err := s.Trips.GetByID(s.db(), tripID)
	if err != nil {
		return nil, "", err
	}
	if !p.Roles.Has(domain.RoleManager) && !p.Roles.Has(domain.RoleOrganizer) {
		if !tripStaffed(trip, p.ID) {
			return nil, "", domain.ForbiddenError{Msg: "you are not assigned to this trip"}
		}
	}

	bookings, err := s.Bookings.ListByTrip(tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "trip_manifest", fmt.Sprintf("trip_id=%d", tripID))
	return buildManifestPDF(manifestData{
		TripID:        trip.ID,
		RouteLabel:    s.routeLabel(trip.RouteID),
		DepartureTime: trip.DepartureTime,
		Capacity:      trip.BusCapacity,
		Bookings:      bookings,
	})
}

type ticketData struct {
	BookingID     int64
	TripID        int64
	SeatNumber    int
	CustomerName  string
	RouteLabel    string
	DepartureTime time.Time
	BookedAt      time.Time
}

// BookingTicket renders the e-ticket for the owning customer.
func (s DocsService) BookingTicket(p domain.Principal, bookingID int64) ([]byte, string, error) {
	if err := authz.Authorize(p, authz.OpBookingTicket); err != nil {
		return nil, "", err
	}
	booking, err := s.Bookings.GetByID(s.db(), bookingID)
	if err != nil {
		return nil, "", err
	}
	if booking.CustomerID != p.ID {
		return nil, "", domain.ForbiddenError{Msg: "you can only view your own bookings"}
	}
	trip, err := s.Trips.GetByID(s.db(), booking.TripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "booking_ticket", fmt.Sprintf("booking_id=%d", bookingID))
	return buildTicketPDF(ticketData{
		BookingID:     booking.ID,
		TripID:        trip.ID,
		SeatNumber:    booking.SeatNumber,
		CustomerName:  p.Username,
		RouteLabel:    s.routeLabel(trip.RouteID),
		DepartureTime: trip.DepartureTime,
		BookedAt:      booking.BookedAt,
	})
}

func tripStaffed(trip models.Trip, userID int64) bool {
	if trip.DriverID == userID || trip.OrganizerID == userID {
		return true
	}
	for _, id := range trip.CrewIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// routeLabel is best-effort; documents still render when catalog lookups
// fail.
func (s DocsService) routeLabel(routeID int64) string {
	rt, err := s.Routes.GetByID(routeID)
	if err != nil {
		return fmt.Sprintf("route #%d", routeID)
	}
	origin, err := s.Branches.GetByID(rt.OriginID)
	if err != nil {
		return fmt.Sprintf("route #%d", routeID)
	}
	dest, err := s.Branches.GetByID(rt.DestinationID)
	if err != nil {
		return fmt.Sprintf("route #%d", routeID)
	}
	return fmt.Sprintf("%s (%s) -> %s (%s)", origin.Name, origin.CityName, dest.Name, dest.CityName)
}

func buildManifestPDF(d manifestData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Manifest", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP MANIFEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Trip       : #%d", d.TripID),
		fmt.Sprintf("Route      : %s", d.RouteLabel),
		fmt.Sprintf("Departure  : %s", utils.FormatDateTime(d.DepartureTime)),
		fmt.Sprintf("Passengers : %d / %d seats", len(d.Bookings), d.Capacity),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(20, 7, "Seat")
	pdf.Cell(0, 7, "Passenger")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	for _, b := range d.Bookings {
		pdf.Cell(20, 7, fmt.Sprintf("%d", b.SeatNumber))
		pdf.Cell(0, 7, b.CustomerName)
		pdf.Ln(7)
	}
	if len(d.Bookings) == 0 {
		pdf.Cell(0, 7, "No bookings yet.")
		pdf.Ln(7)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("MANIFEST_TRIP_%d.pdf", d.TripID), nil
}

func buildTicketPDF(d ticketData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger  : %s", safe(d.CustomerName, "-")),
		fmt.Sprintf("Seat       : %d", d.SeatNumber),
		fmt.Sprintf("Route      : %s", d.RouteLabel),
		fmt.Sprintf("Departure  : %s", utils.FormatDateTime(d.DepartureTime)),
		fmt.Sprintf("Booked at  : %s", utils.FormatDateTime(d.BookedAt)),
		fmt.Sprintf("Ticket code: TCK-%d-%d", d.TripID, d.BookingID),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This e-ticket is valid for one passenger on the seat shown above. Please present it at departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("ETICKET_%d.pdf", d.BookingID), nil
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
