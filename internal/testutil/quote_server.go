package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// QuoteServerPath is the download route served by QuoteServer.
const QuoteServerPath = "/v7/finance/download"

// QuoteServer is a stand-in for the Yahoo history download endpoint.
// Unknown symbols answer 404 like the real service.
type QuoteServer struct {
	server    *httptest.Server
	mu        sync.Mutex
	bodies    map[string]string
	statuses  map[string]int
	delay     time.Duration
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	requests  atomic.Int32
}

// NewQuoteServer starts a QuoteServer that is closed when the test completes.
func NewQuoteServer(t *testing.T) *QuoteServer {
	t.Helper()

	s := &QuoteServer{
		bodies:   make(map[string]string),
		statuses: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get(QuoteServerPath+"/{symbol}", s.handleDownload)

	s.server = httptest.NewServer(r)
	t.Cleanup(s.server.Close)

	return s
}

// BaseURL returns the endpoint to configure the quote client with.
func (s *QuoteServer) BaseURL() string {
	return s.server.URL + QuoteServerPath
}

// WithCSV serves body with status 200 for symbol.
func (s *QuoteServer) WithCSV(symbol, body string) *QuoteServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[symbol] = body
	s.statuses[symbol] = http.StatusOK
	return s
}

// WithQuote serves a single-row history download for symbol.
func (s *QuoteServer) WithQuote(symbol, date, open, high, low, closePrice string, volume int64) *QuoteServer {
	body := "Date,Open,High,Low,Close,Adj Close,Volume\n" +
		fmt.Sprintf("%s,%s,%s,%s,%s,%s,%d\n", date, open, high, low, closePrice, closePrice, volume)
	return s.WithCSV(symbol, body)
}

// WithStatus answers status for symbol.
func (s *QuoteServer) WithStatus(symbol string, status int) *QuoteServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[symbol] = status
	return s
}

// WithDelay holds every response for d.
func (s *QuoteServer) WithDelay(d time.Duration) *QuoteServer {
	s.delay = d
	return s
}

// Requests returns the number of downloads served.
func (s *QuoteServer) Requests() int {
	return int(s.requests.Load())
}

// MaxInFlight returns the highest number of concurrent downloads observed.
func (s *QuoteServer) MaxInFlight() int {
	return int(s.maxFlight.Load())
}

func (s *QuoteServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxFlight.Load()
		if current <= seen || s.maxFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	query := r.URL.Query()
	if query.Get("interval") != "1d" || query.Get("events") != "history" {
		http.Error(w, "unsupported query", http.StatusBadRequest)
		return
	}

	symbol := chi.URLParam(r, "symbol")

	s.mu.Lock()
	status, ok := s.statuses[symbol]
	body := s.bodies[symbol]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
