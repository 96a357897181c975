package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/skillbridge/resume-gateway/docs"
	"github.com/skillbridge/resume-gateway/internal/api/handler"
	"github.com/skillbridge/resume-gateway/internal/api/middleware"
	"github.com/skillbridge/resume-gateway/internal/core/domain"
	"github.com/skillbridge/resume-gateway/internal/core/ports"
)

// Dependencies carries everything the router needs wired in.
type Dependencies struct {
	Resolver   ports.SessionResolver
	Auth       ports.Authenticator
	Chats      ports.ChatOpener
	Proxy      *handler.ProxyHandler
	Health     *handler.HealthHandler
	Readiness  *handler.ReadinessHandler
	CookieName string
	Secure     bool
	Log        zerolog.Logger
}

// pagePolicies is the authoritative route table: one policy per page route,
// mirroring the application's navigation structure. Role restrictions follow
// the backend's own endpoint rules so a denied page never even reaches it.
func pagePolicies() []domain.RoutePolicy {
	anyRole := domain.AccessAuthenticated
	return []domain.RoutePolicy{
		{Path: "/login", Access: domain.AccessAnonymousOnly, Fallback: "/"},
		{Path: "/user/profile", Access: anyRole, Fallback: "/login"},
		{Path: "/user/list/:filtration", Access: domain.AccessRoles, Roles: []domain.Role{domain.RoleAdministrator}, Fallback: "/"},
		{Path: "/resume", Access: domain.AccessRoles, Roles: []domain.Role{domain.RoleApplicant}, Fallback: "/"},
		{Path: "/resume/list", Access: anyRole, Fallback: "/login"},
		{Path: "/resume/get-resume/:resumeId", Access: anyRole, Fallback: "/login"},
		{Path: "/resume/statistics", Access: anyRole, Fallback: "/login"},
		{Path: "/team", Access: domain.AccessRoles, Roles: []domain.Role{domain.RoleEmployer}, Fallback: "/"},
		{Path: "/team/list", Access: anyRole, Fallback: "/"},
		{Path: "/team/get-team/:teamId", Access: anyRole, Fallback: "/"},
		{Path: "/chat/list", Access: domain.AccessRoles, Roles: []domain.Role{domain.RoleAdministrator}, Fallback: "/"},
	}
}

// NewRouter builds the Echo instance with all routes registered. Route
// policies are validated here so a misconfigured table fails startup, not a
// request.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("resume_gateway"))
	e.Use(middleware.Session(deps.Resolver, deps.CookieName))

	// --- Session lifecycle ---
	sessionHandler := handler.NewSessionHandler(deps.Auth, deps.Resolver, deps.CookieName, deps.Secure)
	e.POST("/auth/login", sessionHandler.Login)
	e.POST("/auth/logout", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Session)

	// --- Chat bridge ---
	chatHandler := handler.NewChatHandler(deps.Chats, deps.Log)
	chatPolicy := domain.RoutePolicy{Path: "/chat/ws/:target", Access: domain.AccessAuthenticated, Fallback: "/"}
	if err := chatPolicy.Validate(); err != nil {
		return nil, err
	}
	e.GET("/chat/ws/:target", chatHandler.Connect, middleware.Guard(chatPolicy))

	// --- Guarded page resources (proxied to the backend) ---
	for _, policy := range pagePolicies() {
		if err := policy.Validate(); err != nil {
			return nil, fmt.Errorf("route table: %w", err)
		}
		e.Any(policy.Path, deps.Proxy.Forward, middleware.Guard(policy))
	}

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	e.GET("/health", deps.Health.Liveness)
	e.GET("/health/ready", deps.Readiness.Readiness)

	return e, nil
}
