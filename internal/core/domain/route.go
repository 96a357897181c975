package domain

import (
	"errors"
	"fmt"
)

// Access classifies who may reach a route.
type Access int

const (
	// AccessPublic routes are reachable by anyone.
	AccessPublic Access = iota
	// AccessAnonymousOnly routes (the login screen) bounce authenticated
	// callers to the fallback instead.
	AccessAnonymousOnly
	// AccessAuthenticated routes require any resolved identity.
	AccessAuthenticated
	// AccessRoles routes require one of the listed roles.
	AccessRoles
)

var ErrInvalidRoutePolicy = errors.New("invalid route policy")

// RoutePolicy declares the access rule for a single route, including its
// unauthenticated fallback. Fallbacks are per route, not global: some pages
// bounce to the login screen, others to home.
type RoutePolicy struct {
	Path     string
	Access   Access
	Roles    []Role
	Fallback string
}

// Decision is the outcome of gating one request against one policy.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Validate rejects unusable policies at startup. A role-restricted route
// with an empty role set would deny everyone and is always a configuration
// mistake.
func (p RoutePolicy) Validate() error {
	if p.Path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidRoutePolicy)
	}
	if p.Access == AccessRoles && len(p.Roles) == 0 {
		return fmt.Errorf("%w: %s restricts roles but allows none", ErrInvalidRoutePolicy, p.Path)
	}
	if p.Access != AccessPublic && p.Fallback == "" {
		return fmt.Errorf("%w: %s has no fallback", ErrInvalidRoutePolicy, p.Path)
	}
	return nil
}

// Decide gates a session against the policy. The decision depends only on
// Role values, never on any displayed role name.
func (p RoutePolicy) Decide(s Session) Decision {
	switch p.Access {
	case AccessPublic:
		return Decision{Allow: true}
	case AccessAnonymousOnly:
		if s.Authenticated() {
			return Decision{RedirectTo: p.Fallback}
		}
		return Decision{Allow: true}
	case AccessAuthenticated:
		if s.Authenticated() {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: p.Fallback}
	case AccessRoles:
		if s.Authenticated() {
			for _, r := range p.Roles {
				if s.Role() == r {
					return Decision{Allow: true}
				}
			}
		}
		return Decision{RedirectTo: p.Fallback}
	default:
		return Decision{RedirectTo: p.Fallback}
	}
}
