package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/opustools/opustools-go/internal/port"
	"github.com/redis/go-redis/v9"
)

const allowanceWindow = 24 * time.Hour

// IncrementConversions counts one job-creating request of client for the
// kind tool on the UTC day of at. The increment and the expiry travel in one
// MULTI block, so a counter never outlives its window.
func (c *Cache) IncrementConversions(ctx context.Context, kind port.JobKind, client string, at time.Time) (int64, error) {
	key := allowanceKey(kind, client, at)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, allowanceWindow)
		return nil
	})
	if incrErr := incr.Err(); incrErr != nil {
		return 0, fmt.Errorf("redis incr failed: %w", incrErr)
	}
	if err != nil {
		return incr.Val(), fmt.Errorf("redis expire failed: %w", err)
	}
	return incr.Val(), nil
}

func allowanceKey(kind port.JobKind, client string, at time.Time) string {
	return "allowance:" + string(kind) + ":" + at.UTC().Format(time.DateOnly) + ":" + client
}
