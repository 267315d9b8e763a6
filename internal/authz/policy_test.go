package authz

import (
	"testing"

	"backend/internal/domain"
)

func principal(id int64, roles ...domain.Role) domain.Principal {
	return domain.Principal{ID: id, Username: "u", Roles: domain.NewRoleSet(roles...)}
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	err := Authorize(domain.Principal{}, OpListTrips)
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error for zero principal, got %v", err)
	}
}

func TestAuthorizeManagerAlwaysAllowed(t *testing.T) {
	mgr := principal(1, domain.RoleManager)
	for op := range policy {
		if err := Authorize(mgr, op); err != nil {
			t.Fatalf("manager rejected for %s: %v", op, err)
		}
	}
}

func TestAuthorizeRolelessFallsBackToCustomer(t *testing.T) {
	fresh := principal(2)

	if err := Authorize(fresh, OpCreateBooking); err != nil {
		t.Fatalf("roleless principal should book like a customer, got %v", err)
	}
	if err := Authorize(fresh, OpListTrips); err != nil {
		t.Fatalf("roleless principal should list trips like a customer, got %v", err)
	}
	if err := Authorize(fresh, OpCreateTrip); !domain.IsForbidden(err) {
		t.Fatalf("roleless principal must not create trips, got %v", err)
	}
	if err := Authorize(fresh, OpListBuses); !domain.IsForbidden(err) {
		t.Fatalf("roleless principal must not list buses, got %v", err)
	}
}

func TestAuthorizeRoleIntersection(t *testing.T) {
	cases := []struct {
		name  string
		p     domain.Principal
		op    Operation
		allow bool
	}{
		{"organizer creates trip", principal(3, domain.RoleOrganizer), OpCreateTrip, true},
		{"organizer cannot create bus", principal(3, domain.RoleOrganizer), OpCreateBus, false},
		{"driver lists trips", principal(4, domain.RoleDriver), OpListTrips, true},
		{"driver cannot book", principal(4, domain.RoleDriver), OpCreateBooking, false},
		{"crew sees manifest", principal(5, domain.RoleCrew), OpTripManifest, true},
		{"customer books", principal(6, domain.RoleCustomer), OpCreateBooking, true},
		{"customer cannot list cities", principal(6, domain.RoleCustomer), OpListCities, false},
		{"driver and customer books", principal(7, domain.RoleDriver, domain.RoleCustomer), OpCreateBooking, true},
		{"customer cannot change roles", principal(6, domain.RoleCustomer), OpChangeUserRole, false},
	}

	for _, tc := range cases {
		err := Authorize(tc.p, tc.op)
		if tc.allow && err != nil {
			t.Errorf("%s: expected allow, got %v", tc.name, err)
		}
		if !tc.allow && !domain.IsForbidden(err) {
			t.Errorf("%s: expected forbidden, got %v", tc.name, err)
		}
	}
}

func TestAuthorizeUnknownOperation(t *testing.T) {
	err := Authorize(principal(1, domain.RoleManager), Operation("nope"))
	if !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for unknown operation, got %v", err)
	}
}

func TestAllowedRoles(t *testing.T) {
	roles := AllowedRoles(OpCreateBooking)
	if len(roles) != 1 || roles[0] != domain.RoleCustomer {
		t.Fatalf("unexpected allowed roles for booking creation: %v", roles)
	}
}
