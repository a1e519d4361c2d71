package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/logging"
	"github.com/ndewijer/stock-quote-sync/internal/model"
	"github.com/ndewijer/stock-quote-sync/internal/repository"
)

// ReconcileService persists fetched prices into zprice.
type ReconcileService struct {
	priceRepo *repository.PriceRepository
	logger    zerolog.Logger
}

// NewReconcileService creates a new ReconcileService with the provided repository dependencies.
func NewReconcileService(priceRepo *repository.PriceRepository, logger zerolog.Logger) *ReconcileService {
	return &ReconcileService{
		priceRepo: priceRepo,
		logger:    logger,
	}
}

// ReconcilePrices writes every record with update-then-insert semantics:
// the row matching (entity, option, date key, security) is updated in place,
// and a new row is inserted only when none matched. Replaying the same
// records therefore leaves the table unchanged.
//
// When at least one record was written, the Price row of z_primarykey is
// reset to the highest zprice key. A missing bookkeeping row is logged, not
// returned.
//
// Statements run on tx when it is non-nil; committing is up to the caller.
//
// Parameters:
//   - ctx: Context for the storage calls
//   - tx: Transaction to write in, or nil to use the database directly
//   - records: Fetched prices in any order
//
// Returns:
//   - model.ReconcileResult: Counts of updated and inserted rows
//   - error: The first storage error; later records are not attempted
func (s *ReconcileService) ReconcilePrices(ctx context.Context, tx *sql.Tx, records []model.PriceRecord) (model.ReconcileResult, error) {
	logger := logging.FromContext(ctx, s.logger)

	repo := s.priceRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}

	var result model.ReconcileResult
	for _, record := range records {
		updated, err := repo.UpdatePrice(ctx, record)
		if err != nil {
			return result, err
		}

		if updated {
			result.Updated++
			logger.Debug().Msgf("Existing entry for %s updated", record.Symbol)
			continue
		}

		if err := repo.InsertPrice(ctx, record); err != nil {
			return result, err
		}
		result.Inserted++
		logger.Debug().Msgf("New entry for %s created", record.Symbol)
	}

	if result.Processed() == 0 {
		return result, nil
	}

	err := repo.RefreshPrimaryKey(ctx)
	if errors.Is(err, apperrors.ErrPrimaryKeyRowMissing) {
		logger.Warn().Err(err).Msg("Leaving key bookkeeping to the host application")
		return result, nil
	}
	if err != nil {
		return result, err
	}
	logger.Debug().Msg("Primary key for price updated")

	return result, nil
}
