package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "revoked:"

// RevocationSet invalidates tokens before their natural expiry, backed by
// a TTL'd key set in Redis. Reads are best-effort: if the cache is down,
// tokens are treated as not revoked so requests are never blocked on it.
type RevocationSet struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewRevocationSet(client *redis.Client, logger *zap.SugaredLogger) *RevocationSet {
	return &RevocationSet{client: client, ttl: 24 * time.Hour, logger: logger}
}

// Revoke adds a token to the set. The entry outlives any reasonable
// request retry window and is garbage-collected by Redis via TTL.
func (s *RevocationSet) Revoke(ctx context.Context, tokenString string) error {
	if err := s.client.Set(ctx, revokedKeyPrefix+tokenString, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token was revoked. Cache errors are logged
// and reported as not revoked.
func (s *RevocationSet) IsRevoked(ctx context.Context, tokenString string) bool {
	err := s.client.Get(ctx, revokedKeyPrefix+tokenString).Err()
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warnw("revocation check failed, treating token as valid", "err", err)
	}
	return false
}
