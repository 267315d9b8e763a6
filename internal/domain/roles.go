package domain

import "strings"

// Role is the closed set of roles a user can hold. Role names are stored
// lowercase; parsing is case-insensitive.
type Role string

const (
	RoleManager   Role = "manager"
	RoleOrganizer Role = "organizer"
	RoleDriver    Role = "driver"
	RoleCrew      Role = "crew"
	RoleCustomer  Role = "customer"
)

// AllRoles lists every valid role, in privilege order.
var AllRoles = []Role{RoleManager, RoleOrganizer, RoleDriver, RoleCrew, RoleCustomer}

// ParseRole normalizes a role name. The second return is false for names
// outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// RoleSet is the resolved role membership of a principal.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) Empty() bool { return len(s) == 0 }

// Principal is an authenticated actor together with its resolved roles.
// A zero ID means "not authenticated".
type Principal struct {
	ID       int64
	Username string
	Roles    RoleSet
}

func (p Principal) Authenticated() bool { return p.ID > 0 }
