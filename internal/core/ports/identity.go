package ports

import (
	"context"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

// IdentityProvider resolves a bearer credential into an identity against the
// platform backend. Implementations must distinguish the failure modes:
// domain.ErrUnauthorized for a rejected credential, domain.ErrNotApproved
// for a valid but unmoderated account, and a wrapped
// domain.ErrBackendUnavailable for transport failures.
type IdentityProvider interface {
	Resolve(ctx context.Context, credential string) (domain.Identity, error)
}

// Authenticator exchanges login credentials for a bearer credential.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// UserDirectory maps an email address to the backend's stable user id.
type UserDirectory interface {
	UserID(ctx context.Context, credential, email string) (string, error)
}

// IdentityCache is the single authoritative cache of resolved identities,
// invalidated explicitly on logout.
type IdentityCache interface {
	Get(ctx context.Context, credential string) (domain.Identity, bool, error)
	Set(ctx context.Context, credential string, id domain.Identity) error
	Invalidate(ctx context.Context, credential string) error
}
