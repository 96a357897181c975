package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
	"github.com/skillbridge/resume-gateway/internal/metrics"
)

// Context keys set by the Session middleware.
const (
	KeySession         = "session"
	KeyCredential      = "credential"
	KeyPendingApproval = "pending_approval"
)

// Session resolves the caller's bearer credential once per request and
// injects the session into the echo context. It never fails the request
// itself: resolution errors degrade to an anonymous session so public
// pages always render.
func Session(resolver ports.SessionResolver, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := CredentialFromRequest(c, cookieName)
			c.Set(KeyCredential, credential)

			sess, err := resolver.Resolve(c.Request().Context(), credential)
			outcome := "anonymous"
			switch {
			case errors.Is(err, domain.ErrNotApproved):
				c.Set(KeyPendingApproval, true)
				outcome = "pending_approval"
			case sess.Authenticated():
				outcome = "authenticated"
			}
			metrics.SessionResolutionsTotal.WithLabelValues(outcome).Inc()

			c.Set(KeySession, sess)
			return next(c)
		}
	}
}

// CredentialFromRequest extracts the bearer credential from the
// Authorization header, falling back to the session cookie.
func CredentialFromRequest(c echo.Context, cookieName string) string {
	if auth := c.Request().Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionFromContext returns the session injected by the Session middleware.
// Missing middleware yields an anonymous session.
func SessionFromContext(c echo.Context) domain.Session {
	if sess, ok := c.Get(KeySession).(domain.Session); ok {
		return sess
	}
	return domain.Anonymous()
}

// PendingApproval reports whether the caller holds a valid credential for an
// account still awaiting moderation.
func PendingApproval(c echo.Context) bool {
	pending, _ := c.Get(KeyPendingApproval).(bool)
	return pending
}
