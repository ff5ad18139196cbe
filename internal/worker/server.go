package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gitdelayed/internal/config"
	"gitdelayed/internal/daemon"
	"gitdelayed/internal/executor"
	"gitdelayed/internal/gitops"
	"gitdelayed/internal/infra"
	"gitdelayed/internal/usecase"
)

// Run is the body of the daemon process. It owns the pid file for as long as
// the scheduler loop runs and returns once SIGINT or SIGTERM arrives.
func Run(cfg *config.Config) error {
	mgr := daemon.New(cfg.Home)
	if err := mgr.Claim(); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Release(); err != nil {
			log.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	logFile, err := os.OpenFile(cfg.Path(daemon.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()

	logger := zerolog.New(logFile).With().Timestamp().Int("pid", os.Getpid()).Logger()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	store, closeStore, err := infra.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := &usecase.Runner{
		Store:      store,
		Executor:   executor.New(gitops.New()),
		Interval:   cfg.PollInterval,
		RetryDelay: cfg.RetryDelay,
	}

	log.Ctx(ctx).Info().Str("home", cfg.Home).Str("backend", cfg.Backend).Msg("daemon running")
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Ctx(ctx).Info().Msg("daemon exiting")
	return nil
}
