package handlers

import (
	"net/http"

	"backend/internal/http/middleware"
	"backend/internal/services"

	"github.com/gin-gonic/gin"
)

func catalog(c *gin.Context) services.CatalogService {
	return services.CatalogService{RequestID: middleware.GetRequestID(c)}
}

// GET /api/cities
func GetCities(c *gin.Context) {
	cities, err := catalog(c).ListCities(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// GET /api/cities/:id
func GetCityByID(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	city, err := catalog(c).GetCity(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city})
}

type cityPayload struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/cities
func CreateCity(c *gin.Context) {
	var req cityPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	city, err := catalog(c).CreateCity(middleware.GetPrincipal(c), req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"city": city})
}

type cityUpdatePayload struct {
	Name *string `json:"name"`
}

// PUT /api/cities/:id
func UpdateCity(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	var req cityUpdatePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	city, err := catalog(c).UpdateCity(middleware.GetPrincipal(c), id, req.Name)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city})
}

// DELETE /api/cities/:id
func DeleteCity(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	if err := catalog(c).DeleteCity(middleware.GetPrincipal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/branches
func GetBranches(c *gin.Context) {
	branches, err := catalog(c).ListBranches(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// GET /api/branches/:id
func GetBranchByID(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	branch, err := catalog(c).GetBranch(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": branch})
}

type branchPayload struct {
	Name   string `json:"name" binding:"required"`
	CityID int64  `json:"cityId" binding:"required"`
}

// POST /api/branches
func CreateBranch(c *gin.Context) {
	var req branchPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	branch, err := catalog(c).CreateBranch(middleware.GetPrincipal(c), req.Name, req.CityID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"branch": branch})
}

type branchUpdatePayload struct {
	Name   *string `json:"name"`
	CityID *int64  `json:"cityId"`
}

// PUT /api/branches/:id
func UpdateBranch(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	var req branchUpdatePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	branch, err := catalog(c).UpdateBranch(middleware.GetPrincipal(c), id, req.Name, req.CityID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch": branch})
}

// DELETE /api/branches/:id
func DeleteBranch(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	if err := catalog(c).DeleteBranch(middleware.GetPrincipal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/buses
func GetBuses(c *gin.Context) {
	buses, err := catalog(c).ListBuses(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// GET /api/buses/:id
func GetBusByID(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	bus, err := catalog(c).GetBus(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

type busPayload struct {
	PlateNumber string `json:"plateNumber" binding:"required"`
	Capacity    int    `json:"capacity" binding:"required"`
	BranchID    int64  `json:"branchId" binding:"required"`
}

// POST /api/buses
func CreateBus(c *gin.Context) {
	var req busPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	bus, err := catalog(c).CreateBus(middleware.GetPrincipal(c), req.PlateNumber, req.Capacity, req.BranchID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bus": bus})
}

type busUpdatePayload struct {
	PlateNumber *string `json:"plateNumber"`
	Capacity    *int    `json:"capacity"`
	BranchID    *int64  `json:"branchId"`
}

// PUT /api/buses/:id
func UpdateBus(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	var req busUpdatePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	bus, err := catalog(c).UpdateBus(middleware.GetPrincipal(c), id, req.PlateNumber, req.Capacity, req.BranchID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// DELETE /api/buses/:id
func DeleteBus(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	if err := catalog(c).DeleteBus(middleware.GetPrincipal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/routes
func GetRoutes(c *gin.Context) {
	routes, err := catalog(c).ListRoutes(middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/routes/:id
func GetRouteByID(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	route, err := catalog(c).GetRoute(middleware.GetPrincipal(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

type routePayload struct {
	OriginID      int64   `json:"originId" binding:"required"`
	DestinationID int64   `json:"destinationId" binding:"required"`
	Duration      string  `json:"duration" binding:"required"`
	DistanceKM    float64 `json:"distanceKm" binding:"required"`
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var req routePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := catalog(c).CreateRoute(middleware.GetPrincipal(c),
		req.OriginID, req.DestinationID, req.Duration, req.DistanceKM)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

type routeUpdatePayload struct {
	OriginID      *int64   `json:"originId"`
	DestinationID *int64   `json:"destinationId"`
	Duration      *string  `json:"duration"`
	DistanceKM    *float64 `json:"distanceKm"`
}

// PUT /api/routes/:id
func UpdateRoute(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	var req routeUpdatePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := catalog(c).UpdateRoute(middleware.GetPrincipal(c), id, services.RouteUpdate{
		OriginID:      req.OriginID,
		DestinationID: req.DestinationID,
		Duration:      req.Duration,
		DistanceKM:    req.DistanceKM,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// DELETE /api/routes/:id
func DeleteRoute(c *gin.Context) {
	id, ok := IDParamOrError(c, "id")
	if !ok {
		return
	}
	if err := catalog(c).DeleteRoute(middleware.GetPrincipal(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
