package services

import (
	"fmt"
	"strings"

	"backend/internal/authz"
	"backend/internal/domain"
	"backend/internal/domain/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

// CatalogService manages the reference entities trips point at: cities,
// branches, buses and routes. Plain record management; the only invariants
// are uniqueness and referential existence.
type CatalogService struct {
	Cities    repositories.CityRepo
	Branches  repositories.BranchRepo
	Buses     repositories.BusRepo
	Routes    repositories.RouteRepo
	RequestID string
}

func (s CatalogService) ListCities(p domain.Principal) ([]models.City, error) {
	if err := authz.Authorize(p, authz.OpListCities); err != nil {
		return nil, err
	}
	return s.Cities.List()
}

func (s CatalogService) GetCity(p domain.Principal, id int64) (models.City, error) {
	if err := authz.Authorize(p, authz.OpGetCity); err != nil {
		return models.City{}, err
	}
	return s.Cities.GetByID(id)
}

func (s CatalogService) CreateCity(p domain.Principal, name string) (models.City, error) {
	if err := authz.Authorize(p, authz.OpCreateCity); err != nil {
		return models.City{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.City{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
	}
	taken, err := s.Cities.NameTaken(name, 0)
	if err != nil {
		return models.City{}, domain.InternalError{Err: err}
	}
	if taken {
		return models.City{}, domain.ConflictError{Resource: "city", Msg: "name already exists"}
	}
	id, err := s.Cities.Create(name)
	if err != nil {
		return models.City{}, err
	}
	utils.LogEvent(s.RequestID, "catalog", "create_city", fmt.Sprintf("city_id=%d", id))
	return models.City{ID: id, Name: name}, nil
}

func (s CatalogService) UpdateCity(p domain.Principal, id int64, name *string) (models.City, error) {
	if err := authz.Authorize(p, authz.OpUpdateCity); err != nil {
		return models.City{}, err
	}
	city, err := s.Cities.GetByID(id)
	if err != nil {
		return models.City{}, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return models.City{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
		}
		taken, err := s.Cities.NameTaken(n, id)
		if err != nil {
			return models.City{}, domain.InternalError{Err: err}
		}
		if taken {
			return models.City{}, domain.ConflictError{Resource: "city", Msg: "name already exists"}
		}
		if err := s.Cities.UpdateName(id, n); err != nil {
			return models.City{}, err
		}
		city.Name = n
	}
	return city, nil
}

func (s CatalogService) DeleteCity(p domain.Principal, id int64) error {
	if err := authz.Authorize(p, authz.OpDeleteCity); err != nil {
		return err
	}
	return s.Cities.Delete(id)
}

func (s CatalogService) ListBranches(p domain.Principal) ([]models.Branch, error) {
	if err := authz.Authorize(p, authz.OpListBranches); err != nil {
		return nil, err
	}
	return s.Branches.List()
}

func (s CatalogService) GetBranch(p domain.Principal, id int64) (models.Branch, error) {
	if err := authz.Authorize(p, authz.OpGetBranch); err != nil {
		return models.Branch{}, err
	}
	return s.Branches.GetByID(id)
}

func (s CatalogService) CreateBranch(p domain.Principal, name string, cityID int64) (models.Branch, error) {
	if err := authz.Authorize(p, authz.OpCreateBranch); err != nil {
		return models.Branch{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Branch{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
	}
	city, err := s.Cities.GetByID(cityID)
	if err != nil {
		return models.Branch{}, err
	}
	id, err := s.Branches.Create(name, cityID)
	if err != nil {
		return models.Branch{}, err
	}
	utils.LogEvent(s.RequestID, "catalog", "create_branch", fmt.Sprintf("branch_id=%d", id))
	return models.Branch{ID: id, Name: name, CityID: cityID, CityName: city.Name}, nil
}

func (s CatalogService) UpdateBranch(p domain.Principal, id int64, name *string, cityID *int64) (models.Branch, error) {
	if err := authz.Authorize(p, authz.OpUpdateBranch); err != nil {
		return models.Branch{}, err
	}
	branch, err := s.Branches.GetByID(id)
	if err != nil {
		return models.Branch{}, err
	}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return models.Branch{}, domain.ValidationError{Field: "name", Msg: "must not be empty"}
		}
		branch.Name = n
	}
	if cityID != nil {
		city, err := s.Cities.GetByID(*cityID)
		if err != nil {
			return models.Branch{}, err
		}
		branch.CityID = city.ID
		branch.CityName = city.Name
	}
	if err := s.Branches.Update(id, branch.Name, branch.CityID); err != nil {
		return models.Branch{}, err
	}
	return branch, nil
}

func (s CatalogService) DeleteBranch(p domain.Principal, id int64) error {
	if err := authz.Authorize(p, authz.OpDeleteBranch); err != nil {
		return err
	}
	return s.Branches.Delete(id)
}

func (s CatalogService) ListBuses(p domain.Principal) ([]models.Bus, error) {
	if err := authz.Authorize(p, authz.OpListBuses); err != nil {
		return nil, err
	}
	return s.Buses.List()
}

func (s CatalogService) GetBus(p domain.Principal, id int64) (models.Bus, error) {
	if err := authz.Authorize(p, authz.OpGetBus); err != nil {
		return models.Bus{}, err
	}
	return s.Buses.GetByID(id)
}

func (s CatalogService) CreateBus(p domain.Principal, plate string, capacity int, branchID int64) (models.Bus, error) {
	if err := authz.Authorize(p, authz.OpCreateBus); err != nil {
		return models.Bus{}, err
	}
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return models.Bus{}, domain.ValidationError{Field: "plateNumber", Msg: "must not be empty"}
	}
	if capacity < 1 {
		return models.Bus{}, domain.ValidationError{Field: "capacity", Msg: "must be at least 1"}
	}
	taken, err := s.Buses.PlateTaken(plate, 0)
	if err != nil {
		return models.Bus{}, domain.InternalError{Err: err}
	}
	if taken {
		return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "plate number already exists"}
	}
	if _, err := s.Branches.GetByID(branchID); err != nil {
		return models.Bus{}, err
	}
	id, err := s.Buses.Create(plate, capacity, branchID)
	if err != nil {
		return models.Bus{}, err
	}
	utils.LogEvent(s.RequestID, "catalog", "create_bus", fmt.Sprintf("bus_id=%d plate=%s", id, plate))
	return models.Bus{ID: id, PlateNumber: plate, Capacity: capacity, BranchID: branchID}, nil
}

func (s CatalogService) UpdateBus(p domain.Principal, id int64, plate *string, capacity *int, branchID *int64) (models.Bus, error) {
	if err := authz.Authorize(p, authz.OpUpdateBus); err != nil {
		return models.Bus{}, err
	}
	bus, err := s.Buses.GetByID(id)
	if err != nil {
		return models.Bus{}, err
	}
	if plate != nil {
		pl := strings.ToUpper(strings.TrimSpace(*plate))
		if pl == "" {
			return models.Bus{}, domain.ValidationError{Field: "plateNumber", Msg: "must not be empty"}
		}
		taken, err := s.Buses.PlateTaken(pl, id)
		if err != nil {
			return models.Bus{}, domain.InternalError{Err: err}
		}
		if taken {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "plate number already exists"}
		}
		bus.PlateNumber = pl
	}
	if capacity != nil {
		if *capacity < 1 {
			return models.Bus{}, domain.ValidationError{Field: "capacity", Msg: "must be at least 1"}
		}
		bus.Capacity = *capacity
	}
	if branchID != nil {
		if _, err := s.Branches.GetByID(*branchID); err != nil {
			return models.Bus{}, err
		}
		bus.BranchID = *branchID
	}
	if err := s.Buses.Update(id, bus.PlateNumber, bus.Capacity, bus.BranchID); err != nil {
		return models.Bus{}, err
	}
	return bus, nil
}

func (s CatalogService) DeleteBus(p domain.Principal, id int64) error {
	if err := authz.Authorize(p, authz.OpDeleteBus); err != nil {
		return err
	}
	return s.Buses.Delete(id)
}

func (s CatalogService) ListRoutes(p domain.Principal) ([]models.Route, error) {
	if err := authz.Authorize(p, authz.OpListRoutes); err != nil {
		return nil, err
	}
	routes, err := s.Routes.List()
	if err != nil {
		return nil, err
	}
	for i := range routes {
		routes[i].DurationText = utils.FormatDuration(routes[i].Duration)
	}
	return routes, nil
}

func (s CatalogService) GetRoute(p domain.Principal, id int64) (models.Route, error) {
	if err := authz.Authorize(p, authz.OpGetRoute); err != nil {
		return models.Route{}, err
	}
	rt, err := s.Routes.GetByID(id)
	if err != nil {
		return models.Route{}, err
	}
	rt.DurationText = utils.FormatDuration(rt.Duration)
	return rt, nil
}

func (s CatalogService) CreateRoute(p domain.Principal, originID, destinationID int64, duration string, distanceKM float64) (models.Route, error) {
	if err := authz.Authorize(p, authz.OpCreateRoute); err != nil {
		return models.Route{}, err
	}
	if originID == destinationID {
		return models.Route{}, domain.ValidationError{Field: "destinationId", Msg: "origin and destination cannot be the same"}
	}
	if _, err := s.Branches.GetByID(originID); err != nil {
		if domain.IsNotFound(err) {
			return models.Route{}, domain.NotFoundError{Resource: "origin branch", ID: originID}
		}
		return models.Route{}, err
	}
	if _, err := s.Branches.GetByID(destinationID); err != nil {
		if domain.IsNotFound(err) {
			return models.Route{}, domain.NotFoundError{Resource: "destination branch", ID: destinationID}
		}
		return models.Route{}, err
	}
	d, err := utils.ParseDuration(duration)
	if err != nil {
		return models.Route{}, domain.ValidationError{Field: "duration", Msg: err.Error()}
	}
	if distanceKM <= 0 {
		return models.Route{}, domain.ValidationError{Field: "distanceKm", Msg: "must be positive"}
	}
	rt := models.Route{OriginID: originID, DestinationID: destinationID, Duration: d, DistanceKM: distanceKM}
	id, err := s.Routes.Create(rt)
	if err != nil {
		return models.Route{}, err
	}
	rt.ID = id
	rt.DurationText = utils.FormatDuration(d)
	utils.LogEvent(s.RequestID, "catalog", "create_route", fmt.Sprintf("route_id=%d", id))
	return rt, nil
}

// RouteUpdate is a PATCH-style edit of a route.
type RouteUpdate struct {
	OriginID      *int64
	DestinationID *int64
	Duration      *string
	DistanceKM    *float64
}

func (s CatalogService) UpdateRoute(p domain.Principal, id int64, upd RouteUpdate) (models.Route, error) {
	if err := authz.Authorize(p, authz.OpUpdateRoute); err != nil {
		return models.Route{}, err
	}
	rt, err := s.Routes.GetByID(id)
	if err != nil {
		return models.Route{}, err
	}
	if upd.OriginID != nil {
		if _, err := s.Branches.GetByID(*upd.OriginID); err != nil {
			if domain.IsNotFound(err) {
				return models.Route{}, domain.NotFoundError{Resource: "origin branch", ID: *upd.OriginID}
			}
			return models.Route{}, err
		}
		rt.OriginID = *upd.OriginID
	}
	if upd.DestinationID != nil {
		if _, err := s.Branches.GetByID(*upd.DestinationID); err != nil {
			if domain.IsNotFound(err) {
				return models.Route{}, domain.NotFoundError{Resource: "destination branch", ID: *upd.DestinationID}
			}
			return models.Route{}, err
		}
		rt.DestinationID = *upd.DestinationID
	}
	if rt.OriginID == rt.DestinationID {
		return models.Route{}, domain.ValidationError{Field: "destinationId", Msg: "origin and destination cannot be the same"}
	}
	if upd.Duration != nil {
		d, err := utils.ParseDuration(*upd.Duration)
		if err != nil {
			return models.Route{}, domain.ValidationError{Field: "duration", Msg: err.Error()}
		}
		rt.Duration = d
	}
	if upd.DistanceKM != nil {
		if *upd.DistanceKM <= 0 {
			return models.Route{}, domain.ValidationError{Field: "distanceKm", Msg: "must be positive"}
		}
		rt.DistanceKM = *upd.DistanceKM
	}
	if err := s.Routes.Update(rt); err != nil {
		return models.Route{}, err
	}
	rt.DurationText = utils.FormatDuration(rt.Duration)
	return rt, nil
}

func (s CatalogService) DeleteRoute(p domain.Principal, id int64) error {
	if err := authz.Authorize(p, authz.OpDeleteRoute); err != nil {
		return err
	}
	return s.Routes.Delete(id)
}
