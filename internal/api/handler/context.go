package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/skillbridge/resume-gateway/internal/api/middleware"
	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

// ctxSession extracts the state injected by the Session middleware: the
// resolved session and the raw credential it was derived from.
func ctxSession(c echo.Context) (domain.Session, string) {
	sess := middleware.SessionFromContext(c)
	credential, _ := c.Get(middleware.KeyCredential).(string)
	return sess, credential
}
