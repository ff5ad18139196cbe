// Package redisq stores the operation queue in Redis: a sorted set of ids
// scored by scheduled time, one JSON document per operation and a list for
// the execution log.
package redisq

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/config"
	"gitdelayed/internal/domain"
)

type Client struct {
	Cfg config.Redis
	Rdb *redis.Client
}

func New(cfg config.Redis) *Client {
	log.Debug().Msgf("using redis at %s", cfg.Addr)
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Client{Cfg: cfg, Rdb: c}
}

// Connect checks that the server answers.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis connection failed: %w", domain.ErrStorage, err)
	}
	log.Ctx(ctx).Debug().Str("prefix", c.Cfg.Prefix).Msg("connected to redis")
	return nil
}

func (c *Client) Close() error {
	return c.Rdb.Close()
}

func (c *Client) queueKey() string       { return c.Cfg.Prefix + ":queue" }
func (c *Client) opKey(id string) string { return c.Cfg.Prefix + ":op:" + id }
func (c *Client) logKey() string         { return c.Cfg.Prefix + ":log" }

func score(t time.Time) float64 { return float64(t.UnixMilli()) }

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func storageErr(action string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, action, err)
}
