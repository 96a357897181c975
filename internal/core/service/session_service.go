package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
	"github.com/skillbridge/resume-gateway/internal/metrics"
)

const defaultResolveTimeout = 5 * time.Second

// SessionService resolves bearer credentials into sessions. It keeps one
// authoritative identity cache and collapses concurrent resolutions of the
// same credential, so independently rendered consumers (navigation bar and
// page body) never trigger duplicate lookups.
type SessionService struct {
	provider ports.IdentityProvider
	cache    ports.IdentityCache
	timeout  time.Duration
	group    singleflight.Group
	log      zerolog.Logger
}

func NewSessionService(provider ports.IdentityProvider, cache ports.IdentityCache, timeout time.Duration, log zerolog.Logger) *SessionService {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	return &SessionService{provider: provider, cache: cache, timeout: timeout, log: log}
}

// Resolve implements ports.SessionResolver.
//
// Failure semantics: a rejected credential degrades to anonymous and drops
// the cached identity; a transport failure degrades to anonymous but keeps
// the cache intact, so a transient outage never logs the caller out.
func (s *SessionService) Resolve(ctx context.Context, credential string) (domain.Session, error) {
	if credential == "" {
		return domain.Anonymous(), nil
	}

	if id, ok, err := s.cache.Get(ctx, credential); err == nil && ok {
		metrics.IdentityCacheTotal.WithLabelValues("hit").Inc()
		return domain.AuthenticatedAs(id), nil
	} else if err != nil {
		s.log.Warn().Err(err).Msg("identity cache read failed")
	}
	metrics.IdentityCacheTotal.WithLabelValues("miss").Inc()

	v, err, _ := s.group.Do(credential, func() (any, error) {
		// Detached from the request context: a concurrent caller may
		// still be waiting on this flight after the first one goes away.
		lookupCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		id, err := s.provider.Resolve(lookupCtx, credential)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(lookupCtx, credential, id); err != nil {
			s.log.Warn().Err(err).Msg("identity cache write failed")
		}
		return id, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			if cerr := s.cache.Invalidate(ctx, credential); cerr != nil {
				s.log.Warn().Err(cerr).Msg("identity cache invalidation failed")
			}
			return domain.Anonymous(), nil
		case errors.Is(err, domain.ErrNotApproved):
			return domain.Anonymous(), domain.ErrNotApproved
		default:
			s.log.Warn().Err(err).Msg("identity lookup failed, degrading to anonymous")
			return domain.Anonymous(), nil
		}
	}

	return domain.AuthenticatedAs(v.(domain.Identity)), nil
}

// Invalidate implements ports.SessionResolver.
func (s *SessionService) Invalidate(ctx context.Context, credential string) {
	if credential == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, credential); err != nil {
		s.log.Warn().Err(err).Msg("identity cache invalidation failed")
	}
}

// Menu implements ports.SessionResolver.
func (s *SessionService) Menu(sess domain.Session) []domain.MenuEntry {
	return domain.MenuFor(sess)
}
