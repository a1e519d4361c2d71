package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
)

// DefaultBaseURL is the history download endpoint of Yahoo Finance.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v7/finance/download"

// Client fetches the latest daily quote for a symbol.
type Client interface {
	QueryDailyQuote(ctx context.Context, symbol string) (Quote, error)
	Close()
}

// FinanceClient provides methods for fetching daily quotes from Yahoo Finance.
// It wraps an HTTPClient so the transport can be swapped without touching
// request or parsing logic.
type FinanceClient struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
}

// Option configures a FinanceClient.
type Option func(*FinanceClient)

// WithBaseURL sets the download endpoint. The symbol is appended as a path segment.
func WithBaseURL(baseURL string) Option {
	return func(c *FinanceClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the transport.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *FinanceClient) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(userAgent string) Option {
	return func(c *FinanceClient) {
		c.header.Set("User-Agent", userAgent)
	}
}

// NewFinanceClient creates a new Yahoo Finance client. Without options it
// talks to DefaultBaseURL over http.DefaultClient.
func NewFinanceClient(options ...Option) *FinanceClient {
	c := &FinanceClient{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	c.header.Set("Accept", "text/csv")
	for _, option := range options {
		option(c)
	}
	return c
}

// QueryDailyQuote downloads the most recent daily record for symbol.
//
// Only a 200 response is read. Any other status is drained and reported as
// ErrNoQuoteData so the connection can be reused. Transport failures are
// returned wrapped but without a sentinel, letting callers tell "source
// unreachable" apart from "no data for this symbol".
//
// Parameters:
//   - ctx: Context for the HTTP request
//   - symbol: Ticker as known to Yahoo Finance, escaped into the URL path
//
// Returns:
//   - Quote: First data row keyed by column header
//   - error: ErrNoQuoteData, ErrMalformedQuote, or a transport error
func (c *FinanceClient) QueryDailyQuote(ctx context.Context, symbol string) (Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.quoteURL(symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", symbol, err)
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s: HTTP %d", apperrors.ErrNoQuoteData, symbol, resp.StatusCode)
	}

	quote, err := ParseQuote(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	return quote, nil
}

// Close releases idle connections held by the transport, if it pools any.
func (c *FinanceClient) Close() {
	if closer, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}

func (c *FinanceClient) quoteURL(symbol string) string {
	return c.baseURL + "/" + url.PathEscape(symbol) + "?interval=1d&events=history"
}
