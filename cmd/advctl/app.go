package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/adventure/internal/adventurer"
	"github.com/cory-johannsen/adventure/internal/config"
	"github.com/cory-johannsen/adventure/internal/observability"
	"github.com/cory-johannsen/adventure/internal/storage/postgres"
	"github.com/cory-johannsen/adventure/internal/storage/redis"
)

// app carries state shared by every subcommand. svc and logger are built on
// first use unless a test has already set them.
type app struct {
	configPath string
	timeout    time.Duration

	svc      *adventurer.Service
	balances *postgres.BalanceRepository
	logger   *zap.Logger
	closers  []func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "advctl",
		Short:         "Adventure operator CLI",
		Long:          `advctl encodes and decodes game seeds, previews encounters, and inspects or edits character inventories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "configs/dev.yaml", "path to configuration file")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "per-command timeout")

	root.AddCommand(newSeedCmd())
	root.AddCommand(newEncounterCmd(a))
	root.AddCommand(newSheetCmd(a))
	root.AddCommand(newBackpackCmd(a))
	root.AddCommand(newEquipCmd(a))
	root.AddCommand(newUnequipCmd(a))
	root.AddCommand(newLootCmd(a))
	root.AddCommand(newLoadoutCmd(a))
	root.AddCommand(newBalanceCmd(a))
	return root
}

func (a *app) context() (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), a.timeout)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// service builds the character service from the configured store and lock.
func (a *app) service(ctx context.Context) (*adventurer.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if a.logger == nil {
		a.logger, err = observability.NewLogger(cfg.Logging, "advctl")
		if err != nil {
			return nil, fmt.Errorf("initializing logger: %w", err)
		}
		a.closers = append(a.closers, func() { _ = a.logger.Sync() })
	}

	var rc redis.Client
	if cfg.NeedsRedis() {
		rc, err = redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
	}

	var (
		store adventurer.Store
		bank  adventurer.Bank
	)
	switch cfg.Adventure.Store {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		store = pool.Adventurers()
		a.balances = pool.Balances()
		bank = a.balances
	case "redis":
		store = redis.NewStore(rc)
	}

	var locker adventurer.Locker = adventurer.NewMemoryLocker()
	if cfg.Adventure.Lock == "redis" {
		locker = redis.NewLocker(rc, cfg.Adventure.LockTTL, a.logger)
	}

	a.svc = adventurer.NewService(store, locker, bank, nil, cfg.Adventure.LockWait, a.logger)
	return a.svc, nil
}
