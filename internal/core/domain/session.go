package domain

import "errors"

var ErrUnauthorized = errors.New("credential rejected")
var ErrNotApproved = errors.New("account pending administrator approval")
var ErrForbidden = errors.New("insufficient role")
var ErrUserNotFound = errors.New("user not found")
var ErrBackendUnavailable = errors.New("backend unavailable")

// Identity is the resolved caller: who they are and what they may do.
// It is derived transiently from a credential and never persisted.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the authorization state of a caller. The zero value is
// anonymous.
type Session struct {
	Identity *Identity
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// AuthenticatedAs returns a session carrying the given identity.
func AuthenticatedAs(id Identity) Session {
	return Session{Identity: &id}
}

// Authenticated reports whether the session carries a resolved identity.
func (s Session) Authenticated() bool {
	return s.Identity != nil
}

// Role returns the session's role, or RoleUnknown for anonymous sessions.
func (s Session) Role() Role {
	if s.Identity == nil {
		return RoleUnknown
	}
	return s.Identity.Role
}
