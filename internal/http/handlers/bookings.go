package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

func bookings(c *gin.Context) services.BookingService {
	return services.BookingService{RequestID: middleware.GetRequestID(c)}
}

type bookingPayload struct {
	TripID     int64 `json:"tripId" binding:"required"`
	SeatNumber int   `json:"seatNumber" binding:"required"`
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req bookingPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	booking, err := bookings(c).Create(middleware.GetPrincipal(c), req.TripID, req.SeatNumber)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// DELETE /api/bookings/:id
func DeleteBooking(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	if err := bookings(c).Delete(middleware.GetPrincipal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/bookings/my
func GetMyBookings(c *gin.Context) {
	list, err := bookings(c).ListMine(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// GET /api/bookings
func GetBookings(c *gin.Context) {
	list, err := bookings(c).ListAll(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// GET /api/bookings/:id
func GetBookingByID(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	booking, err := bookings(c).Get(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// GET /api/customers/:id/bookings
func GetCustomerBookings(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	list, err := bookings(c).ListForCustomer(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// GET /api/bookings/:id/ticket
func GetBookingTicket(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := docs.BookingTicket(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
