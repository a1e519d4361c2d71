package testutil

import (
	"database/sql"
	"testing"

	"github.com/ndewijer/stock-quote-sync/internal/logging"
	"github.com/ndewijer/stock-quote-sync/internal/model"
	"github.com/ndewijer/stock-quote-sync/internal/repository"
	"github.com/ndewijer/stock-quote-sync/internal/service"
	"github.com/ndewijer/stock-quote-sync/internal/yahoo"
)

func NewTestFetchService(t *testing.T, yahooClient yahoo.Client, concurrency int) *service.FetchService {
	t.Helper()

	return service.NewFetchService(yahooClient, concurrency, logging.Discard())
}

func NewTestReconcileService(t *testing.T, db *sql.DB) *service.ReconcileService {
	t.Helper()

	priceRepo := repository.NewPriceRepository(db, model.DefaultPriceRowTags())

	return service.NewReconcileService(priceRepo, logging.Discard())
}

// NewTestSyncService wires the full pipeline against db and yahooClient.
func NewTestSyncService(t *testing.T, db *sql.DB, yahooClient yahoo.Client, concurrency int) *service.SyncService {
	t.Helper()

	return service.NewSyncService(
		db,
		repository.NewSecurityRepository(db),
		NewTestFetchService(t, yahooClient, concurrency),
		NewTestReconcileService(t, db),
		service.DefaultMaxSymbolLength,
		logging.Discard(),
	)
}

// NewTestYahooClient returns a real client pointed at server.
func NewTestYahooClient(t *testing.T, server *QuoteServer, concurrency int) *yahoo.FinanceClient {
	t.Helper()

	return yahoo.NewFinanceClient(
		yahoo.WithBaseURL(server.BaseURL()),
		yahoo.WithHTTPClient(yahoo.NewHTTPClient(DefaultTestTimeout, concurrency)),
	)
}
