package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillbridge/resume-gateway/internal/core/domain"
)

const defaultIdentityTTL = time.Minute

// IdentityCache is the authoritative short-lived cache of resolved
// identities, shared across gateway instances. Keys carry a credential
// digest, never the credential itself.
// Key format: session:<sha256(credential)>
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache creates an IdentityCache wrapping the given Redis client.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{client: client, ttl: ttl}
}

type cachedIdentity struct {
	Email  string `json:"email"`
	RoleID int    `json:"role_id"`
}

// Get implements ports.IdentityCache.
func (c *IdentityCache) Get(ctx context.Context, credential string) (domain.Identity, bool, error) {
	raw, err := c.client.Get(ctx, c.key(credential)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Identity{}, false, nil
	}
	if err != nil {
		return domain.Identity{}, false, fmt.Errorf("identity cache get: %w", err)
	}

	var entry cachedIdentity
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.Identity{}, false, fmt.Errorf("identity cache decode: %w", err)
	}
	return domain.Identity{Email: entry.Email, Role: domain.RoleFromID(entry.RoleID)}, true, nil
}

// Set implements ports.IdentityCache. Entries expire after the cache TTL so
// a revoked credential can outlive its welcome by at most that long.
func (c *IdentityCache) Set(ctx context.Context, credential string, id domain.Identity) error {
	raw, err := json.Marshal(cachedIdentity{Email: id.Email, RoleID: int(id.Role)})
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(credential), raw, c.ttl).Err()
}

// Invalidate implements ports.IdentityCache.
func (c *IdentityCache) Invalidate(ctx context.Context, credential string) error {
	return c.client.Del(ctx, c.key(credential)).Err()
}

func (c *IdentityCache) key(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return "session:" + hex.EncodeToString(sum[:])
}
