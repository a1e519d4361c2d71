package yahoo

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyTransport is an HTTPClient backed by resty. Responses are passed
// through unparsed, so the quote client handles status and body exactly as
// it does for net/http.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a resty transport over the same bounded
// connection pool NewHTTPClient builds.
func NewRestyTransport(timeout time.Duration, maxConnsPerHost int) *RestyTransport {
	return &RestyTransport{
		client: resty.NewWithClient(NewHTTPClient(timeout, maxConnsPerHost)),
	}
}

// Do executes req through resty. The caller owns the returned body.
func (t *RestyTransport) Do(req *http.Request) (*http.Response, error) {
	resp, err := t.client.R().
		SetContext(req.Context()).
		SetHeaderMultiValues(req.Header).
		SetDoNotParseResponse(true).
		Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}
	return resp.RawResponse, nil
}

// CloseIdleConnections releases pooled connections.
func (t *RestyTransport) CloseIdleConnections() {
	t.client.GetClient().CloseIdleConnections()
}
