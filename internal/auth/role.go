// internal/auth/role.go
//
// The three account roles and where each one lands after login.
//
// Notes
// -----
// • Roles are a closed set.  ParseRole is the only way to turn request or
//   database text into a Role, so an unknown string never reaches a check.
// • There is no hierarchy.  Admin is not implicitly district or controlroom.
// • Oxford commas, two spaces after periods.

package auth

// Role is an account type.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDistrict    Role = "district"
	RoleControlRoom Role = "controlroom"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleDistrict, RoleControlRoom}

// ParseRole converts s to a Role.  ok is false for anything unknown.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleDistrict, RoleControlRoom:
		return Role(s), true
	}
	return "", false
}

// LandingPath returns the page a role is sent to after login or password
// change.  Unknown roles go to the public landing page.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleDistrict:
		return "/district/dashboard"
	case RoleControlRoom:
		return "/district/controlroom_dashboard"
	}
	return "/"
}

func (r Role) String() string { return string(r) }
