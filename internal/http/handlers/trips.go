package handlers

import (
	"net/http"

	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/http/middleware"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func trips(c *gin.Context) services.TripService {
	return services.TripService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/trips
func GetTrips(c *gin.Context) {
	list, err := trips(c).List(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": list})
}

// GET /api/trips/:id
func GetTripByID(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	trip, err := trips(c).Get(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

type tripPayload struct {
	RouteID        int64   `json:"routeId" binding:"required"`
	BusID          int64   `json:"busId" binding:"required"`
	OrganizerID    int64   `json:"organizerId" binding:"required"`
	DriverID       int64   `json:"driverId" binding:"required"`
	CrewIDs        []int64 `json:"crewIds"`
	DepartureTime  string  `json:"departureTime" binding:"required"`
	AvailableSeats int     `json:"availableSeats" binding:"required"`
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var req tripPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	departure, err := utils.ParseDateTime(req.DepartureTime)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: "departureTime", Msg: "expected format YYYY-MM-DD HH:MM:SS"})
		return
	}
	trip, err := trips(c).Create(middleware.GetPrincipal(c), services.TripInput{
		RouteID:        req.RouteID,
		BusID:          req.BusID,
		OrganizerID:    req.OrganizerID,
		DriverID:       req.DriverID,
		CrewIDs:        req.CrewIDs,
		DepartureTime:  departure,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trip": trip})
}

type tripUpdatePayload struct {
	BusID          *int64   `json:"busId"`
	DriverID       *int64   `json:"driverId"`
	CrewIDs        *[]int64 `json:"crewIds"`
	DepartureTime  *string  `json:"departureTime"`
	AvailableSeats *int     `json:"availableSeats"`
}

// PATCH /api/trips/:id
func UpdateTrip(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	var req tripUpdatePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	upd := models.TripUpdate{
		BusID:          req.BusID,
		DriverID:       req.DriverID,
		CrewIDs:        req.CrewIDs,
		AvailableSeats: req.AvailableSeats,
	}
	if req.DepartureTime != nil {
		departure, err := utils.ParseDateTime(*req.DepartureTime)
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "departureTime", Msg: "expected format YYYY-MM-DD HH:MM:SS"})
			return
		}
		upd.DepartureTime = &departure
	}
	trip, err := trips(c).Update(middleware.GetPrincipal(c), id, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// DELETE /api/trips/:id
func DeleteTrip(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	if err := trips(c).Delete(middleware.GetPrincipal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/trips/:id/manifest
func GetTripManifest(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	docs := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := docs.TripManifest(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
