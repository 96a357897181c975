package domain

import (
	"errors"
	"testing"
)

func TestRoutePolicy_PublicAlwaysAllows(t *testing.T) {
	p := RoutePolicy{Path: "/", Access: AccessPublic}
	sessions := []Session{
		Anonymous(),
		AuthenticatedAs(Identity{Role: RoleAdministrator}),
		AuthenticatedAs(Identity{Role: RoleUnknown}),
	}
	for _, s := range sessions {
		if d := p.Decide(s); !d.Allow {
			t.Fatalf("public route denied session with role %s", s.Role())
		}
	}
}

func TestRoutePolicy_AuthenticatedRedirectsAnonymous(t *testing.T) {
	p := RoutePolicy{Path: "/user/profile", Access: AccessAuthenticated, Fallback: "/login"}

	d := p.Decide(Anonymous())
	if d.Allow {
		t.Fatalf("anonymous session must not pass an authenticated route")
	}
	if d.RedirectTo != "/login" {
		t.Fatalf("expected redirect to /login, got %q", d.RedirectTo)
	}

	if d := p.Decide(AuthenticatedAs(Identity{Role: RoleApplicant})); !d.Allow {
		t.Fatalf("authenticated session must pass")
	}
}

func TestRoutePolicy_RoleMismatchRedirects(t *testing.T) {
	p := RoutePolicy{Path: "/user/list", Access: AccessRoles, Roles: []Role{RoleAdministrator}, Fallback: "/"}

	d := p.Decide(AuthenticatedAs(Identity{Role: RoleEmployer}))
	if d.Allow {
		t.Fatalf("employer must not pass an administrator-only route")
	}
	if d.RedirectTo != "/" {
		t.Fatalf("expected redirect to /, got %q", d.RedirectTo)
	}
}

func TestRoutePolicy_RoleMatchAllows(t *testing.T) {
	p := RoutePolicy{Path: "/resume", Access: AccessRoles, Roles: []Role{RoleApplicant}, Fallback: "/"}

	if d := p.Decide(AuthenticatedAs(Identity{Email: "a@b.com", Role: RoleFromID(3)})); !d.Allow {
		t.Fatalf("applicant must pass an applicant route")
	}
	if d := p.Decide(Anonymous()); d.Allow {
		t.Fatalf("anonymous session must not pass a role route")
	}
}

func TestRoutePolicy_AnonymousOnly(t *testing.T) {
	p := RoutePolicy{Path: "/login", Access: AccessAnonymousOnly, Fallback: "/"}

	if d := p.Decide(Anonymous()); !d.Allow {
		t.Fatalf("anonymous session must reach the login screen")
	}
	d := p.Decide(AuthenticatedAs(Identity{Role: RoleApplicant}))
	if d.Allow || d.RedirectTo != "/" {
		t.Fatalf("authenticated session must bounce home, got %+v", d)
	}
}

func TestRoutePolicy_Validate(t *testing.T) {
	cases := []struct {
		name   string
		policy RoutePolicy
		ok     bool
	}{
		{"public", RoutePolicy{Path: "/", Access: AccessPublic}, true},
		{"roles", RoutePolicy{Path: "/user/list", Access: AccessRoles, Roles: []Role{RoleAdministrator}, Fallback: "/"}, true},
		{"empty role set", RoutePolicy{Path: "/user/list", Access: AccessRoles, Fallback: "/"}, false},
		{"missing fallback", RoutePolicy{Path: "/resume", Access: AccessAuthenticated}, false},
		{"empty path", RoutePolicy{Access: AccessPublic}, false},
	}

	for _, tc := range cases {
		err := tc.policy.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected validation error", tc.name)
			}
			if !errors.Is(err, ErrInvalidRoutePolicy) {
				t.Fatalf("%s: expected ErrInvalidRoutePolicy, got %v", tc.name, err)
			}
		}
	}
}

func TestRoleFromID(t *testing.T) {
	if RoleFromID(1) != RoleAdministrator || RoleFromID(2) != RoleEmployer || RoleFromID(3) != RoleApplicant {
		t.Fatalf("known role ids mapped incorrectly")
	}
	for _, id := range []int{0, -1, 4, 99} {
		if RoleFromID(id) != RoleUnknown {
			t.Fatalf("role id %d must map to unknown", id)
		}
	}
}
