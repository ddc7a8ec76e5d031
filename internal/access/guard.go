// Package access decides what the current identity may see and do.
//
// Two checks exist and both apply. Route gating decides whether a screen
// may be shown at all. Action checks run again at the point of a mutating
// call, so a screen open to staff still cannot delete through it.
package access

import (
	"fmt"
	"slices"

	"github.com/roach88/clinicdesk/internal/domain"
)

// Decision is the outcome of a route check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Decide applies route gating. A nil identity is always redirected; a nil
// or empty required set allows any identity.
func Decide(id *domain.Identity, required []domain.Role) Decision {
	if id == nil {
		return RedirectToLogin
	}
	if len(required) == 0 {
		return Allow
	}
	if slices.Contains(required, id.Role) {
		return Allow
	}
	return RedirectToLogin
}

// Route names a screen.
type Route string

const (
	RouteRoot         Route = ""
	RouteLogin        Route = "login"
	RouteSignup       Route = "signup"
	RouteDashboard    Route = "dashboard"
	RoutePatients     Route = "patients"
	RouteAppointments Route = "appointments"
	RouteDoctors      Route = "doctors"
)

type routeRule struct {
	public   bool
	roles    []domain.Role
	redirect Route
}

var routes = map[Route]routeRule{
	RouteRoot:         {public: true, redirect: RouteDashboard},
	RouteLogin:        {public: true},
	RouteSignup:       {public: true},
	RouteDashboard:    {roles: []domain.Role{domain.RoleAdmin, domain.RoleStaff}},
	RoutePatients:     {roles: []domain.Role{domain.RoleAdmin, domain.RoleStaff}},
	RouteAppointments: {roles: []domain.Role{domain.RoleAdmin, domain.RoleStaff}},
	RouteDoctors:      {roles: []domain.Role{domain.RoleAdmin, domain.RoleStaff}},
}

// Navigate resolves a route for id. It returns the route to render, which
// is RouteLogin when the guard redirects. Unknown routes return an error.
func Navigate(id *domain.Identity, route Route) (Route, error) {
	rule, ok := routes[route]
	if !ok {
		return "", fmt.Errorf("unknown route %q", route)
	}
	if rule.redirect != "" {
		return Navigate(id, rule.redirect)
	}
	if rule.public {
		return route, nil
	}
	if Decide(id, rule.roles) == RedirectToLogin {
		return RouteLogin, nil
	}
	return route, nil
}

// RequiredRoles returns the roles a route demands, or nil for public routes.
func RequiredRoles(route Route) []domain.Role {
	return slices.Clone(routes[route].roles)
}
