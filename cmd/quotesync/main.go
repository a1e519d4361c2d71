package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ndewijer/stock-quote-sync/internal/config"
	"github.com/ndewijer/stock-quote-sync/internal/database"
	"github.com/ndewijer/stock-quote-sync/internal/logging"
	"github.com/ndewijer/stock-quote-sync/internal/repository"
	"github.com/ndewijer/stock-quote-sync/internal/scheduler"
	"github.com/ndewijer/stock-quote-sync/internal/service"
	"github.com/ndewijer/stock-quote-sync/internal/yahoo"
)

const usage = `Usage: quotesync <data-directory>

Downloads the latest daily price of every tracked security and stores it in
the accountsData.ibank database inside <data-directory>.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns its exit code:
// 0 on success, 1 when the sync failed, 2 on a usage error.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger := logging.New(stdout, stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open database connection
	dbPath, err := database.DataFile(args[0], cfg.Database.FileName)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid data directory")
		return 1
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open database")
		return 1
	}
	defer db.Close()

	logger.Info().Msgf("Processing SQLite file %s", dbPath)

	// Create quote client
	yahooClient := yahoo.NewFinanceClient(
		yahoo.WithBaseURL(cfg.Quote.BaseURL),
		yahoo.WithHTTPClient(newTransport(cfg.Quote, cfg.Sync.Concurrency)),
		yahoo.WithUserAgent(cfg.Quote.UserAgent),
	)

	// Create repositories
	securityRepo := repository.NewSecurityRepository(db)
	priceRepo := repository.NewPriceRepository(db, cfg.Sync.Tags)

	// Create services
	fetchService := service.NewFetchService(yahooClient, cfg.Sync.Concurrency, logger)
	reconcileService := service.NewReconcileService(priceRepo, logger)
	syncService := service.NewSyncService(
		db,
		securityRepo,
		fetchService,
		reconcileService,
		cfg.Sync.MaxSymbolLength,
		logger,
	)

	if cfg.Sync.Schedule != "" {
		sched, err := scheduler.New(cfg.Sync.Schedule, syncService, logger)
		if err != nil {
			logger.Error().Err(err).Msg("Invalid schedule")
			return 1
		}
		if err := sched.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Scheduler stopped")
			return 1
		}
		return 0
	}

	if _, err := syncService.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to synchronize security prices")
		return 1
	}

	return 0
}

func newTransport(cfg config.QuoteConfig, concurrency int) yahoo.HTTPClient {
	if cfg.Transport == config.TransportResty {
		return yahoo.NewRestyTransport(cfg.Timeout, concurrency)
	}
	return yahoo.NewHTTPClient(cfg.Timeout, concurrency)
}
