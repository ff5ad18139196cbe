// Package infra selects the store backend named by the configuration.
package infra

import (
	"context"
	"fmt"

	"gitdelayed/internal/config"
	"gitdelayed/internal/infra/filestore"
	"gitdelayed/internal/infra/redisq"
	"gitdelayed/internal/ports"
)

// OpenStore returns the configured store and a function releasing it.
func OpenStore(ctx context.Context, cfg *config.Config) (ports.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		cli := redisq.New(cfg.Redis)
		if err := cli.Connect(ctx); err != nil {
			_ = cli.Close()
			return nil, nil, err
		}
		return cli, cli.Close, nil
	case config.BackendFile, "":
		s := filestore.New(cfg.Home, filestore.WithLockPolicy(cfg.LockAttempts, cfg.LockBackoff))
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
