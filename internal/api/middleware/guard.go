package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/metrics"
)

// Guard enforces a route policy against the session resolved by the Session
// middleware. It is the single gate for every route: pages never
// re-implement their own role checks.
//
// A caller whose account awaits moderation gets a blocking 403 on any route
// that requires authentication instead of a login redirect: the credential
// is valid, a login round-trip would not help.
func Guard(policy domain.RoutePolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requiresAuth := policy.Access == domain.AccessAuthenticated || policy.Access == domain.AccessRoles
			if requiresAuth && PendingApproval(c) {
				metrics.GuardDecisionsTotal.WithLabelValues(policy.Path, "redirect").Inc()
				return domain.ErrNotApproved
			}

			decision := policy.Decide(SessionFromContext(c))
			if decision.Allow {
				metrics.GuardDecisionsTotal.WithLabelValues(policy.Path, "allow").Inc()
				return next(c)
			}

			metrics.GuardDecisionsTotal.WithLabelValues(policy.Path, "redirect").Inc()
			return c.Redirect(http.StatusFound, decision.RedirectTo)
		}
	}
}
