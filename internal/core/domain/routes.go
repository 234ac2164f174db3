package domain

import "strings"

// Canonical paths used by redirects and route classification.
const (
	PathRoot       = "/"
	PathLogin      = "/login"
	PathRegister   = "/register"
	PathStorefront = "/products"
	PathDashboard  = "/protected/dashboard"

	protectedPrefix = "/protected"
)

// RouteClass is the static classification of a path.
type RouteClass int

const (
	RoutePublic    RouteClass = iota // reachable by anyone
	RouteAuthOnly                    // login/register; bounce authenticated users away
	RouteProtected                   // requires a live non-customer session
)

// Classify tags a path as public, auth-only, or protected. Unknown paths
// default to public; the backend still rejects unauthenticated API calls.
func Classify(path string) RouteClass {
	switch {
	case path == protectedPrefix || strings.HasPrefix(path, protectedPrefix+"/"):
		return RouteProtected
	case path == PathLogin || strings.HasPrefix(path, PathLogin+"/"),
		path == PathRegister || strings.HasPrefix(path, PathRegister+"/"):
		return RouteAuthOnly
	default:
		return RoutePublic
	}
}

// viewRoles narrows role access for specific protected subpaths beyond the
// blanket non-customer rule. Paths absent from the table accept any staff
// role.
var viewRoles = map[string][]string{
	"/protected/users":     {RoleAdmin, RoleManager},
	"/protected/employees": {RoleAdmin, RoleManager},
	"/protected/reports":   {RoleAdmin, RoleManager},
	"/protected/about-us":  {RoleAdmin},
}

// AllowedRoles returns the role set permitted on a protected path.
func AllowedRoles(path string) []string {
	for prefix, roles := range viewRoles {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return roles
		}
	}
	return []string{RoleAdmin, RoleManager, RoleStaff}
}
