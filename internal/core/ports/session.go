package ports

import (
	"context"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

// SessionResolver computes the authorization state of a caller.
type SessionResolver interface {
	// Resolve returns the session for a credential. An empty credential
	// yields an anonymous session without any network call. Rejected
	// credentials degrade to anonymous; domain.ErrNotApproved is returned
	// alongside an anonymous session so callers can surface the pending
	// moderation state.
	Resolve(ctx context.Context, credential string) (domain.Session, error)

	// Invalidate drops any cached identity for the credential.
	Invalidate(ctx context.Context, credential string)

	// Menu computes the navigation menu for a session.
	Menu(s domain.Session) []domain.MenuEntry
}
