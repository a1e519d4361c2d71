package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined quotes per symbol instead of making actual API calls
// and records how many queries were in flight at once.
type MockYahooClient struct {
	mu        sync.Mutex
	quotes    map[string]yahoo.Quote
	errors    map[string]error
	delay     time.Duration
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	// QueryCount tracks how many times QueryDailyQuote was called
	QueryCount atomic.Int32
	// CloseCount tracks how many times Close was called
	CloseCount atomic.Int32
}

// NewMockYahooClient creates a mock that answers ErrNoQuoteData for every
// symbol until configured otherwise.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		quotes: make(map[string]yahoo.Quote),
		errors: make(map[string]error),
	}
}

// WithQuote configures the quote returned for symbol.
func (m *MockYahooClient) WithQuote(symbol string, quote yahoo.Quote) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[symbol] = quote
	return m
}

// WithError configures the error returned for symbol.
func (m *MockYahooClient) WithError(symbol string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[symbol] = err
	return m
}

// WithDelay makes every query take at least d, so overlapping calls are observable.
func (m *MockYahooClient) WithDelay(d time.Duration) *MockYahooClient {
	m.delay = d
	return m
}

// MaxInFlight returns the highest number of concurrent queries observed.
func (m *MockYahooClient) MaxInFlight() int {
	return int(m.maxFlight.Load())
}

// QueryDailyQuote returns the configured quote or error for symbol.
func (m *MockYahooClient) QueryDailyQuote(ctx context.Context, symbol string) (yahoo.Quote, error) {
	m.QueryCount.Add(1)
	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxFlight.Load()
		if current <= seen || m.maxFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to query %s: %w", symbol, ctx.Err())
		case <-time.After(m.delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errors[symbol]; ok {
		return nil, err
	}
	if quote, ok := m.quotes[symbol]; ok {
		return quote, nil
	}
	return nil, fmt.Errorf("%w: %s: HTTP 404", apperrors.ErrNoQuoteData, symbol)
}

// Close records that the client released its connections.
func (m *MockYahooClient) Close() {
	m.CloseCount.Add(1)
}

// CreateMockQuote creates a quote row with the given date and closing price.
// Open, high and low are derived from close; volume is fixed.
func CreateMockQuote(date string, closePrice float64) yahoo.Quote {
	return yahoo.Quote{
		yahoo.ColumnDate:   date,
		yahoo.ColumnOpen:   fmt.Sprintf("%.2f", closePrice-0.5),
		yahoo.ColumnHigh:   fmt.Sprintf("%.2f", closePrice+1),
		yahoo.ColumnLow:    fmt.Sprintf("%.2f", closePrice-1),
		yahoo.ColumnClose:  fmt.Sprintf("%.2f", closePrice),
		"Adj Close":        fmt.Sprintf("%.2f", closePrice),
		yahoo.ColumnVolume: "1000000",
	}
}
