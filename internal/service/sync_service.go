package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/stock-quote-sync/internal/logging"
	"github.com/ndewijer/stock-quote-sync/internal/model"
	"github.com/ndewijer/stock-quote-sync/internal/repository"
)

// DefaultMaxSymbolLength is the longest symbol the quote source is asked for.
const DefaultMaxSymbolLength = 5

// SyncService runs the security → quote → zprice pipeline once per call.
type SyncService struct {
	db               *sql.DB
	securityRepo     *repository.SecurityRepository
	fetchService     *FetchService
	reconcileService *ReconcileService
	maxSymbolLength  int
	logger           zerolog.Logger
}

// NewSyncService creates a new SyncService with the provided dependencies.
func NewSyncService(
	db *sql.DB,
	securityRepo *repository.SecurityRepository,
	fetchService *FetchService,
	reconcileService *ReconcileService,
	maxSymbolLength int,
	logger zerolog.Logger,
) *SyncService {
	if maxSymbolLength < 1 {
		maxSymbolLength = DefaultMaxSymbolLength
	}
	return &SyncService{
		db:               db,
		securityRepo:     securityRepo,
		fetchService:     fetchService,
		reconcileService: reconcileService,
		maxSymbolLength:  maxSymbolLength,
		logger:           logger,
	}
}

// Run synchronizes prices for all eligible securities.
//
// The workflow:
//  1. Reads securities with symbols of at most the configured length
//  2. Downloads their latest quotes concurrently (failures per security are skipped)
//  3. Writes the fetched prices in a single transaction, committed only if
//     every write succeeded
//
// No transaction is opened when nothing was fetched.
//
// Returns:
//   - model.SyncSummary: Counts for the run and its elapsed time
//   - error: Storage errors, ErrQuoteSourceUnavailable, or context errors
func (s *SyncService) Run(ctx context.Context) (model.SyncSummary, error) {
	start := time.Now()
	summary := model.SyncSummary{RunID: uuid.New().String()}

	ctx = logging.WithRunID(ctx, s.logger, summary.RunID[:8])
	logger := logging.FromContext(ctx, s.logger)

	securities, err := s.securityRepo.GetSyncableSecurities(ctx, s.maxSymbolLength)
	if err != nil {
		return summary, err
	}
	summary.Found = len(securities)
	logger.Info().Msgf("Found %d securities", summary.Found)

	records, err := s.fetchService.FetchPrices(ctx, securities)
	if err != nil {
		return summary, err
	}
	summary.Fetched = len(records)
	logger.Info().Msgf("Downloaded prices for %d of %d securities", summary.Fetched, summary.Found)

	if len(records) > 0 {
		result, err := s.persist(ctx, records)
		if err != nil {
			return summary, err
		}
		summary.Updated = result.Updated
		summary.Inserted = result.Inserted
		summary.Persisted = result.Processed()
	}

	summary.Elapsed = time.Since(start)
	logger.Info().
		Int("updated", summary.Updated).
		Int("inserted", summary.Inserted).
		Msgf("Persisted prices for %d securities", summary.Persisted)
	logger.Info().Msgf("Security prices synchronized in %.3fs", summary.Elapsed.Seconds())

	return summary, nil
}

func (s *SyncService) persist(ctx context.Context, records []model.PriceRecord) (model.ReconcileResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ReconcileResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := s.reconcileService.ReconcilePrices(ctx, tx, records)
	if err != nil {
		return model.ReconcileResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ReconcileResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
