package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skillbridge/resume-gateway/internal/api/middleware"
	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
	"github.com/skillbridge/resume-gateway/internal/metrics"
)

// SessionHandler owns the credential lifecycle: login stores the bearer
// under the well-known cookie key, logout destroys it.
type SessionHandler struct {
	auth       ports.Authenticator
	resolver   ports.SessionResolver
	cookieName string
	secure     bool
}

func NewSessionHandler(auth ports.Authenticator, resolver ports.SessionResolver, cookieName string, secure bool) *SessionHandler {
	return &SessionHandler{auth: auth, resolver: resolver, cookieName: cookieName, secure: secure}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Authenticated   bool               `json:"authenticated"`
	PendingApproval bool               `json:"pending_approval,omitempty"`
	Email           string             `json:"email,omitempty"`
	Role            string             `json:"role,omitempty"`
	Menu            []domain.MenuEntry `json:"menu"`
}

// Login exchanges credentials for a bearer token.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	c.SetCookie(h.sessionCookie(token, 24*time.Hour))
	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

// Logout destroys the stored credential and its cached identity.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      204
// @Router       /auth/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	credential := middleware.CredentialFromRequest(c, h.cookieName)
	if credential != "" {
		h.resolver.Invalidate(c.Request().Context(), credential)
	}

	expired := h.sessionCookie("", -time.Hour)
	c.SetCookie(expired)
	return c.NoContent(http.StatusNoContent)
}

// Session reports the caller's authorization state and navigation menu.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	sess, _ := ctxSession(c)

	res := sessionResponse{
		Authenticated:   sess.Authenticated(),
		PendingApproval: middleware.PendingApproval(c),
		Menu:            h.resolver.Menu(sess),
	}
	if sess.Authenticated() {
		res.Email = sess.Identity.Email
		res.Role = sess.Role().String()
	}
	return c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
