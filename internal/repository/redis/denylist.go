package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const denylistPrefix = "denylist:"

// TokenDenylist tracks invalidated access tokens per user. Logout pushes
// the presented token here; the auth middleware rejects any token found
// on the list even if its signature and expiry are still valid.
type TokenDenylist struct {
	client *Client
	ttl    time.Duration
}

// NewTokenDenylist creates a denylist whose entries outlive the longest
// token lifetime.
func NewTokenDenylist(client *Client, ttl time.Duration) *TokenDenylist {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenDenylist{client: client, ttl: ttl}
}

func (d *TokenDenylist) key(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", denylistPrefix, userID.String())
}

// Invalidate adds the token to the user's deny-list.
func (d *TokenDenylist) Invalidate(ctx context.Context, userID uuid.UUID, token string) error {
	key := d.key(userID)

	pipe := d.client.rdb.Pipeline()
	pipe.SAdd(ctx, key, token)
	pipe.Expire(ctx, key, d.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// IsInvalidated reports whether the token has been revoked for the user.
func (d *TokenDenylist) IsInvalidated(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	revoked, err := d.client.rdb.SIsMember(ctx, d.key(userID), token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return revoked, nil
}
