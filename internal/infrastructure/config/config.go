package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CookieName is the well-known key under which the bearer credential
	// is persisted on the client.
	CookieName string `env:"SESSION_COOKIE, default=access_token"`

	Backend BackendConfig
	Session SessionConfig
	Chat    ChatConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	BaseURL string        `env:"BACKEND_BASE_URL, default=http://localhost:7676"`
	WSURL   string        `env:"BACKEND_WS_URL,   default=ws://localhost:7676"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
}

type SessionConfig struct {
	// CacheTTL bounds how long a revoked credential can keep serving a
	// cached identity.
	CacheTTL       time.Duration `env:"SESSION_CACHE_TTL,       default=60s"`
	ResolveTimeout time.Duration `env:"SESSION_RESOLVE_TIMEOUT, default=5s"`
}

type ChatConfig struct {
	ReconnectAttempts int           `env:"CHAT_RECONNECT_ATTEMPTS, default=3"`
	ReconnectBackoff  time.Duration `env:"CHAT_RECONNECT_BACKOFF,  default=500ms"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
