package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/domain"
	"gitdelayed/internal/ports"
)

var _ ports.Store = (*Client)(nil)

func (c *Client) Add(ctx context.Context, op domain.Operation) error {
	b, err := json.Marshal(op)
	if err != nil {
		return storageErr("encode operation", err)
	}
	_, err = c.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, c.opKey(op.ID), b, 0)
		p.ZAdd(ctx, c.queueKey(), redis.Z{Score: score(op.ScheduledTime), Member: op.ID})
		return nil
	})
	if err != nil {
		return storageErr("add operation", err)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, id string) (bool, error) {
	var zrem *redis.IntCmd
	_, err := c.Rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		zrem = p.ZRem(ctx, c.queueKey(), id)
		p.Del(ctx, c.opKey(id))
		return nil
	})
	if err != nil {
		return false, storageErr("remove operation", err)
	}
	return zrem.Val() > 0, nil
}

func (c *Client) Load(ctx context.Context) ([]domain.Operation, error) {
	ids, err := c.Rdb.ZRange(ctx, c.queueKey(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("list operations", err)
	}
	return c.fetch(ctx, ids)
}

func (c *Client) Get(ctx context.Context, id string) (domain.Operation, error) {
	raw, err := c.Rdb.Get(ctx, c.opKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Operation{}, fmt.Errorf("%w: %s", domain.ErrOperationNotFound, id)
	}
	if err != nil {
		return domain.Operation{}, storageErr("get operation", err)
	}
	return decodeOp(raw)
}

// fetch loads the documents for ids, keeping their order. Ids whose document
// disappeared in between are dropped.
func (c *Client) fetch(ctx context.Context, ids []string) ([]domain.Operation, error) {
	ops := make([]domain.Operation, 0, len(ids))
	if len(ids) == 0 {
		return ops, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.opKey(id)
	}
	vals, err := c.Rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storageErr("load operations", err)
	}

	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			log.Ctx(ctx).Warn().Str("id", ids[i]).Msg("queued id has no document")
			continue
		}
		op, err := decodeOp(raw)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOp(raw string) (domain.Operation, error) {
	var op domain.Operation
	if err := json.Unmarshal([]byte(raw), &op); err != nil {
		return domain.Operation{}, fmt.Errorf("%w: %w: decode operation: %w", domain.ErrStorage, domain.ErrCorruptStore, err)
	}
	if op.State == "" {
		op.State = domain.StatePending
	}
	return op, nil
}

func (c *Client) AppendLog(ctx context.Context, entry domain.LogEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return storageErr("encode log entry", err)
	}
	if err := c.Rdb.RPush(ctx, c.logKey(), b).Err(); err != nil {
		return storageErr("append log entry", err)
	}
	return nil
}

func (c *Client) LoadLogs(ctx context.Context) ([]domain.LogEntry, error) {
	raws, err := c.Rdb.LRange(ctx, c.logKey(), 0, -1).Result()
	if err != nil {
		return nil, storageErr("load log", err)
	}
	entries := make([]domain.LogEntry, 0, len(raws))
	for _, raw := range raws {
		var e domain.LogEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("%w: %w: decode log entry: %w", domain.ErrStorage, domain.ErrCorruptStore, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
