// Package authz is the authorization gate: a single policy table mapping
// operations to the roles allowed to perform them, checked before any
// service logic runs.
package authz

import (
	"backend/internal/domain"
)

// Operation identifies a gated service operation.
type Operation string

const (
	OpListCities Operation = "cities.list"
	OpGetCity    Operation = "cities.get"
	OpCreateCity Operation = "cities.create"
	OpUpdateCity Operation = "cities.update"
	OpDeleteCity Operation = "cities.delete"

	OpListBranches Operation = "branches.list"
	OpGetBranch    Operation = "branches.get"
	OpCreateBranch Operation = "branches.create"
	OpUpdateBranch Operation = "branches.update"
	OpDeleteBranch Operation = "branches.delete"

	OpListBuses Operation = "buses.list"
	OpGetBus    Operation = "buses.get"
	OpCreateBus Operation = "buses.create"
	OpUpdateBus Operation = "buses.update"
	OpDeleteBus Operation = "buses.delete"

	OpListRoutes  Operation = "routes.list"
	OpGetRoute    Operation = "routes.get"
	OpCreateRoute Operation = "routes.create"
	OpUpdateRoute Operation = "routes.update"
	OpDeleteRoute Operation = "routes.delete"

	OpListTrips    Operation = "trips.list"
	OpGetTrip      Operation = "trips.get"
	OpCreateTrip   Operation = "trips.create"
	OpUpdateTrip   Operation = "trips.update"
	OpDeleteTrip   Operation = "trips.delete"
	OpTripManifest Operation = "trips.manifest"

	OpCreateBooking        Operation = "bookings.create"
	OpDeleteBooking        Operation = "bookings.delete"
	OpListMyBookings       Operation = "bookings.list_mine"
	OpListAllBookings      Operation = "bookings.list_all"
	OpGetBooking           Operation = "bookings.get"
	OpListCustomerBookings Operation = "bookings.list_customer"
	OpBookingTicket        Operation = "bookings.ticket"

	OpChangeUserRole Operation = "users.change_role"
)

var policy = map[Operation][]domain.Role{
	OpListCities: {domain.RoleManager, domain.RoleOrganizer},
	OpGetCity:    {domain.RoleManager, domain.RoleOrganizer},
	OpCreateCity: {domain.RoleManager},
	OpUpdateCity: {domain.RoleManager},
	OpDeleteCity: {domain.RoleManager},

	OpListBranches: {domain.RoleManager, domain.RoleOrganizer},
	OpGetBranch:    {domain.RoleManager, domain.RoleOrganizer},
	OpCreateBranch: {domain.RoleManager},
	OpUpdateBranch: {domain.RoleManager},
	OpDeleteBranch: {domain.RoleManager},

	OpListBuses: {domain.RoleManager},
	OpGetBus:    {domain.RoleManager},
	OpCreateBus: {domain.RoleManager},
	OpUpdateBus: {domain.RoleManager},
	OpDeleteBus: {domain.RoleManager},

	OpListRoutes:  {domain.RoleManager, domain.RoleOrganizer},
	OpGetRoute:    {domain.RoleManager, domain.RoleOrganizer},
	OpCreateRoute: {domain.RoleManager},
	OpUpdateRoute: {domain.RoleManager},
	OpDeleteRoute: {domain.RoleManager},

	OpListTrips:    {domain.RoleManager, domain.RoleOrganizer, domain.RoleCustomer, domain.RoleDriver, domain.RoleCrew},
	OpGetTrip:      {domain.RoleManager, domain.RoleOrganizer, domain.RoleCustomer, domain.RoleDriver, domain.RoleCrew},
	OpCreateTrip:   {domain.RoleOrganizer, domain.RoleManager},
	OpUpdateTrip:   {domain.RoleOrganizer, domain.RoleManager},
	OpDeleteTrip:   {domain.RoleOrganizer, domain.RoleManager},
	OpTripManifest: {domain.RoleManager, domain.RoleOrganizer, domain.RoleDriver, domain.RoleCrew},

	OpCreateBooking:        {domain.RoleCustomer},
	OpDeleteBooking:        {domain.RoleCustomer},
	OpListMyBookings:       {domain.RoleCustomer},
	OpListAllBookings:      {domain.RoleManager, domain.RoleOrganizer},
	OpGetBooking:           {domain.RoleManager, domain.RoleOrganizer, domain.RoleCustomer},
	OpListCustomerBookings: {domain.RoleManager, domain.RoleOrganizer},
	OpBookingTicket:        {domain.RoleCustomer},

	OpChangeUserRole: {domain.RoleManager},
}

// AllowedRoles exposes the policy entry for an operation.
func AllowedRoles(op Operation) []domain.Role {
	return policy[op]
}

// Authorize decides whether the principal may perform op. Rules, in order:
// unauthenticated principals are rejected outright; the manager role is
// always allowed; a principal with no roles at all falls back to customer
// access; otherwise any overlap between the principal's roles and the
// operation's allowed list grants access.
func Authorize(p domain.Principal, op Operation) error {
	if !p.Authenticated() {
		return domain.AuthorizationError{}
	}

	allowed, ok := policy[op]
	if !ok {
		return domain.ForbiddenError{Msg: "unknown operation"}
	}

	if p.Roles.Has(domain.RoleManager) {
		return nil
	}

	if p.Roles.Empty() {
		for _, r := range allowed {
			if r == domain.RoleCustomer {
				return nil
			}
		}
		return domain.ForbiddenError{Msg: "you do not have permission to perform this action"}
	}

	for _, r := range allowed {
		if p.Roles.Has(r) {
			return nil
		}
	}
	return domain.ForbiddenError{Msg: "you do not have permission to perform this action"}
}
