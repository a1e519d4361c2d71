package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/logging"
	"github.com/ndewijer/stock-quote-sync/internal/model"
	"github.com/ndewijer/stock-quote-sync/internal/yahoo"
)

// DefaultConcurrency is the number of quote downloads allowed in flight at once.
const DefaultConcurrency = 4

// FetchService downloads the latest daily quote for a batch of securities.
type FetchService struct {
	yahooClient yahoo.Client
	concurrency int
	logger      zerolog.Logger
}

// NewFetchService creates a new FetchService. A concurrency below 1 is treated as 1.
func NewFetchService(yahooClient yahoo.Client, concurrency int, logger zerolog.Logger) *FetchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FetchService{
		yahooClient: yahooClient,
		concurrency: concurrency,
		logger:      logger,
	}
}

// FetchPrices downloads and normalizes the latest quote of every security.
//
// At most the configured number of downloads run at once; the rest start as
// slots free up. A security whose download returns a non-200 status, an
// unparseable body or a transport error is logged and left out of the
// result. The batch only fails when no download reached the quote source at
// all, or when ctx is done. The order of the result is unspecified.
//
// The client's connections are released before FetchPrices returns.
//
// Parameters:
//   - ctx: Cancels outstanding downloads; no new ones start once it is done
//   - securities: Securities to fetch, typically from GetSyncableSecurities
//
// Returns:
//   - []model.PriceRecord: One record per successfully fetched security
//   - error: ErrQuoteSourceUnavailable or the context error
func (s *FetchService) FetchPrices(ctx context.Context, securities []model.Security) ([]model.PriceRecord, error) {
	defer s.yahooClient.Close()

	logger := logging.FromContext(ctx, s.logger)

	var (
		mu          sync.Mutex
		records     = make([]model.PriceRecord, 0, len(securities))
		unreachable int
		firstErr    error
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, security := range securities {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			record, err := s.fetchPrice(ctx, logger, security)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				records = append(records, record)
			case errors.Is(err, apperrors.ErrNoQuoteData), errors.Is(err, apperrors.ErrMalformedQuote):
				logger.Warn().Err(err).Msgf("No price for %s", security.Symbol)
			case ctx.Err() != nil:
				// reported once after Wait
			default:
				unreachable++
				if firstErr == nil {
					firstErr = err
				}
				logger.Warn().Err(err).Msgf("Download failed for %s", security.Symbol)
			}
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(securities) > 0 && unreachable == len(securities) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQuoteSourceUnavailable, firstErr)
	}

	return records, nil
}

func (s *FetchService) fetchPrice(ctx context.Context, logger zerolog.Logger, security model.Security) (model.PriceRecord, error) {
	logger.Debug().Msgf("Downloading prices for %s...", security.Symbol)

	quote, err := s.yahooClient.QueryDailyQuote(ctx, security.Symbol)
	if err != nil {
		return model.PriceRecord{}, err
	}

	record, err := quote.PriceRecord(security)
	if err != nil {
		return model.PriceRecord{}, err
	}

	logger.Info().
		Str("date", record.Date.Format(time.DateOnly)).
		Stringer("open", record.Open).
		Stringer("high", record.High).
		Stringer("low", record.Low).
		Stringer("close", record.Close).
		Int64("volume", record.Volume).
		Msgf("Fetched %s", record.Symbol)

	return record, nil
}
