package domain

// Outcome is the verdict of the route policy engine.
type Outcome int

const (
	Allow             Outcome = iota
	RedirectLogin             // deny unauthenticated
	RedirectRoleHome          // deny unauthorized; actor stays logged in
)

// Decision pairs an outcome with the redirect target, when any.
type Decision struct {
	Outcome  Outcome
	Location string
}

var allow = Decision{Outcome: Allow}

// Decide is the route policy engine: a pure function over already-resolved
// session state, evaluated in server middleware before any handler renders
// and re-used verbatim by the per-view guard. An authenticated customer on
// a protected path is redirected to the storefront, never to login — deny
// unauthenticated and deny unauthorized are distinct verdicts.
func Decide(hasSession bool, role, path string) Decision {
	switch Classify(path) {
	case RouteProtected:
		if !hasSession {
			return Decision{Outcome: RedirectLogin, Location: PathLogin}
		}
		if !StaffRole(role) {
			return Decision{Outcome: RedirectRoleHome, Location: RoleHome(role)}
		}
		return allow
	case RouteAuthOnly:
		if hasSession {
			return Decision{Outcome: RedirectRoleHome, Location: RoleHome(role)}
		}
		return allow
	default:
		return allow
	}
}
