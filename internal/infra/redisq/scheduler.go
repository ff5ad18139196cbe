package redisq

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"gitdelayed/internal/domain"
)

// Due returns the operations whose score is at or before now. Equal scores
// come back in member order.
func (c *Client) Due(ctx context.Context, now time.Time) ([]domain.Operation, error) {
	ids, err := c.Rdb.ZRangeByScore(ctx, c.queueKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmtFloat(score(now)),
	}).Result()
	if err != nil {
		return nil, storageErr("list due operations", err)
	}
	return c.fetch(ctx, ids)
}
