package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"restaurant-backend/shared/apperr"
	"restaurant-backend/shared/config"
	"restaurant-backend/shared/database/models/auth"
	"restaurant-backend/shared/database/repositories"
)

const revokedKeyPrefix = "revoked:"

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RevocationCache is a read-through redis cache in front of a durable ledger.
// The ledger stays the authority: redis failures are logged and the ledger answers.
type RevocationCache struct {
	client *redis.Client
	ledger repositories.Ledger
	maxTTL time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewRevocationCache wraps ledger. maxTTL bounds cache entries whose token expiry is unknown;
// pass the refresh token lifetime.
func NewRevocationCache(client *redis.Client, ledger repositories.Ledger, maxTTL time.Duration, log zerolog.Logger) *RevocationCache {
	return &RevocationCache{
		client: client,
		ledger: ledger,
		maxTTL: maxTTL,
		log:    log.With().Str("component", "revocation_cache").Logger(),
		now:    time.Now,
	}
}

func revokedKey(tokenID string) string {
	return revokedKeyPrefix + tokenID
}

// Record writes the durable ledger first, then marks the id in redis until the token expires.
func (c *RevocationCache) Record(ctx context.Context, token *auth.RevokedToken) error {
	err := c.ledger.Record(ctx, token)
	if err != nil && !errors.Is(err, apperr.E(apperr.AlreadyRevoked)) {
		return err
	}

	c.remember(ctx, token.TokenID, token.ExpiresAt)
	return err
}

func (c *RevocationCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, err := c.client.Get(ctx, revokedKey(tokenID)).Result()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("token_id", tokenID).Msg("redis lookup failed, using ledger")
	}

	revoked, err := c.ledger.IsRevoked(ctx, tokenID)
	if err != nil {
		return false, err
	}
	// Only positive answers are cached; a miss must not hide a later revocation.
	if revoked {
		c.remember(ctx, tokenID, time.Time{})
	}
	return revoked, nil
}

// remember stores the id with a TTL up to expiresAt, or maxTTL when expiresAt is zero.
func (c *RevocationCache) remember(ctx context.Context, tokenID string, expiresAt time.Time) {
	ttl := c.maxTTL
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(c.now())
	}
	if ttl <= 0 {
		return
	}

	if err := c.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("token_id", tokenID).Msg("failed to cache revoked token")
	}
}
