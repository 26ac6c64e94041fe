package cache

import (
	"context"
	"fmt"
	"time"
)

// DenyToken revokes jti until the token would have expired anyway.
func (c *Cache) DenyToken(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, denyKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *Cache) IsTokenDenied(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, denyKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

func denyKey(jti string) string {
	return "denylist:" + jti
}
