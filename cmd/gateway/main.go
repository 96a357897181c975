package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillbridge/resume-gateway/internal/api"
	"github.com/skillbridge/resume-gateway/internal/api/handler"
	"github.com/skillbridge/resume-gateway/internal/core/service"
	"github.com/skillbridge/resume-gateway/internal/infrastructure/backend"
	"github.com/skillbridge/resume-gateway/internal/infrastructure/config"
	redisdb "github.com/skillbridge/resume-gateway/internal/infrastructure/db/redis"
	"github.com/skillbridge/resume-gateway/internal/infrastructure/ws"
	"github.com/skillbridge/resume-gateway/pkg/logger"
)

// @title        Resume Platform Gateway API
// @version      1.0
// @description  Session gateway for the resume platform: authorization gate, navigation, and chat bridge.
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "resume-gateway",
	})

	ctx := context.Background()

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	backendClient, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger.Component("backend"))
	if err != nil {
		log.Fatal().Err(err).Msg("backend client init failed")
	}

	identityCache := redisdb.NewIdentityCache(rdb, cfg.Session.CacheTTL)
	sessions := service.NewSessionService(backendClient, identityCache, cfg.Session.ResolveTimeout, logger.Component("session"))

	dialer := ws.NewDialer(cfg.Backend.WSURL)
	chats := service.NewChatService(sessions, backendClient, backendClient, dialer,
		service.ReconnectPolicy{Attempts: cfg.Chat.ReconnectAttempts, Backoff: cfg.Chat.ReconnectBackoff},
		logger.Component("chat"))

	proxy, err := handler.NewProxyHandler(cfg.Backend.BaseURL, logger.Component("proxy"))
	if err != nil {
		log.Fatal().Err(err).Msg("proxy init failed")
	}

	e, err := api.NewRouter(api.Dependencies{
		Resolver:   sessions,
		Auth:       backendClient,
		Chats:      chats,
		Proxy:      proxy,
		Health:     handler.NewHealthHandler(),
		Readiness:  handler.NewReadinessHandler(rdb, cfg.Backend.BaseURL),
		CookieName: cfg.CookieName,
		Secure:     cfg.Env == "production",
		Log:        logger.Component("http"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router init failed")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.BaseURL).Msg("gateway started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
