package yahoo_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/yahoo"
)

// trackingBody records whether the client closed the response body.
type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func response(status int, body string) (*http.Response, *trackingBody) {
	tb := &trackingBody{Reader: strings.NewReader(body)}
	return &http.Response{StatusCode: status, Body: tb}, tb
}

func TestFinanceClient_QueryDailyQuote(t *testing.T) {
	t.Parallel()

	t.Run("requests the daily history for the symbol", func(t *testing.T) {
		t.Parallel()

		// Arrange: a mock transport that inspects the outgoing request
		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		resp, body := response(http.StatusOK, aaplCSV)

		httpClient.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				require.Equal(t, http.MethodGet, req.Method)
				require.Equal(t, "http://quotes.test/download/AAPL?interval=1d&events=history", req.URL.String())
				require.Equal(t, "sync-test", req.Header.Get("User-Agent"))
				return resp, nil
			}).
			Times(1)

		client := yahoo.NewFinanceClient(
			yahoo.WithBaseURL("http://quotes.test/download/"),
			yahoo.WithHTTPClient(httpClient),
			yahoo.WithUserAgent("sync-test"),
		)

		// Act
		quote, err := client.QueryDailyQuote(t.Context(), "AAPL")

		// Assert
		require.NoError(t, err)
		require.Equal(t, "185.9", quote[yahoo.ColumnClose])
		require.True(t, body.closed, "response body must be closed")
	})

	t.Run("non-200 status is no data and the body is still closed", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusNoContent, http.StatusInternalServerError} {
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			resp, body := response(status, "Not Found")
			httpClient.EXPECT().Do(gomock.Any()).Return(resp, nil).Times(1)

			client := yahoo.NewFinanceClient(yahoo.WithHTTPClient(httpClient))
			_, err := client.QueryDailyQuote(t.Context(), "AAPL")

			require.ErrorIs(t, err, apperrors.ErrNoQuoteData)
			require.True(t, body.closed)
		}
	})

	t.Run("unparseable body is a malformed quote", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		resp, body := response(http.StatusOK, "")
		httpClient.EXPECT().Do(gomock.Any()).Return(resp, nil).Times(1)

		client := yahoo.NewFinanceClient(yahoo.WithHTTPClient(httpClient))
		_, err := client.QueryDailyQuote(t.Context(), "AAPL")

		require.ErrorIs(t, err, apperrors.ErrMalformedQuote)
		require.True(t, body.closed)
	})

	t.Run("transport failures carry no quote sentinel", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		dialErr := errors.New("dial tcp: connection refused")
		httpClient.EXPECT().Do(gomock.Any()).Return(nil, dialErr).Times(1)

		client := yahoo.NewFinanceClient(yahoo.WithHTTPClient(httpClient))
		_, err := client.QueryDailyQuote(t.Context(), "AAPL")

		require.ErrorIs(t, err, dialErr)
		require.NotErrorIs(t, err, apperrors.ErrNoQuoteData)
		require.NotErrorIs(t, err, apperrors.ErrMalformedQuote)
	})

	t.Run("symbols are escaped into a single path segment", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		httpClient := NewMockHTTPClient(ctrl)
		resp, _ := response(http.StatusOK, aaplCSV)
		httpClient.EXPECT().
			Do(gomock.Any()).
			DoAndReturn(func(req *http.Request) (*http.Response, error) {
				require.Equal(t, "/download/BRK%2FB", req.URL.EscapedPath())
				return resp, nil
			})

		client := yahoo.NewFinanceClient(yahoo.WithBaseURL("http://quotes.test/download"), yahoo.WithHTTPClient(httpClient))
		_, err := client.QueryDailyQuote(t.Context(), "BRK/B")
		require.NoError(t, err)
	})
}

// TestTransports runs the client against a real server over both transports.
//
// WHY: Swapping the transport must not change status handling or parsing.
func TestTransports(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/download/MISS" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, aaplCSV)
	}))
	t.Cleanup(server.Close)

	transports := map[string]yahoo.HTTPClient{
		"net/http": yahoo.NewHTTPClient(5*time.Second, 2),
		"resty":    yahoo.NewRestyTransport(5*time.Second, 2),
	}

	for name, transport := range transports {
		t.Run(name, func(t *testing.T) {
			client := yahoo.NewFinanceClient(
				yahoo.WithBaseURL(server.URL+"/download"),
				yahoo.WithHTTPClient(transport),
			)
			defer client.Close()

			quote, err := client.QueryDailyQuote(t.Context(), "AAPL")
			require.NoError(t, err)
			require.Equal(t, "2024-01-02", quote[yahoo.ColumnDate])

			_, err = client.QueryDailyQuote(t.Context(), "MISS")
			require.ErrorIs(t, err, apperrors.ErrNoQuoteData)
		})
	}

	require.Equal(t, int32(4), requests.Load())
}
