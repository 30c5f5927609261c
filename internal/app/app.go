// Package app wires configuration, storage, and services into one container.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jcarver/folio/internal/common"
	"github.com/jcarver/folio/internal/interfaces"
	"github.com/jcarver/folio/internal/services/allocation"
	"github.com/jcarver/folio/internal/services/market"
	"github.com/jcarver/folio/internal/services/position"
	"github.com/jcarver/folio/internal/storage"
)

// App holds the application's shared dependencies.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	Transactions interfaces.TransactionService
	Allocations  interfaces.AllocationService
	Market       interfaces.MarketSearcher

	StartupTime time.Time
}

// NewApp creates the application container: storage first, then services in
// dependency order.
func NewApp(config *common.Config, logger *common.Logger) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()
	logger.Info().Str("version", common.GetFullVersion()).Msg("Starting folio-server")

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	startup := time.Now()
	recordStartup(storageManager, logger, startup)

	transactions := position.NewService(storageManager, logger)
	allocations := allocation.NewService(storageManager, transactions, logger)

	searcher := market.NewSearcher(
		market.WithSearchURL(config.Market.SearchURL),
		market.WithRateLimit(config.Market.RateLimit),
		market.WithTimeout(config.Market.GetTimeout()),
		market.WithCacheTTL(config.Market.GetCacheTTL()),
		market.WithLogger(logger),
	)

	return &App{
		Config:       config,
		Logger:       logger,
		Storage:      storageManager,
		Transactions: transactions,
		Allocations:  allocations,
		Market:       searcher,
		StartupTime:  startup,
	}, nil
}

// recordStartup logs the previous startup time (if recorded) and stores the
// current one in the system KV area.
func recordStartup(storageManager interfaces.StorageManager, logger *common.Logger, now time.Time) {
	ctx := context.Background()
	store := storageManager.InternalStore()
	if prev, err := store.GetSystemKV(ctx, "last_startup"); err == nil && prev != "" {
		logger.Info().Str("last_startup", prev).Msg("Previous startup recorded")
	}
	if err := store.SetSystemKV(ctx, "last_startup", now.UTC().Format(time.RFC3339)); err != nil {
		logger.Warn().Err(err).Msg("Failed to record startup time")
	}
}

// Close releases application resources.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
