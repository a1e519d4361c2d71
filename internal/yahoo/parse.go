package yahoo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
)

// ParseQuote reads a header-labeled CSV body and returns its first data row.
// Fields are keyed by header name, so the column order of the source does
// not matter. Only the presence of the required columns is checked here;
// their values are validated by Quote.PriceRecord.
func ParseQuote(r io.Reader) (Quote, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty body", apperrors.ErrMalformedQuote)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", apperrors.ErrMalformedQuote, err)
	}

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no data rows", apperrors.ErrMalformedQuote)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read data row: %v", apperrors.ErrMalformedQuote, err)
	}

	quote := make(Quote, len(header))
	for i, name := range header {
		quote[strings.TrimSpace(name)] = strings.TrimSpace(record[i])
	}

	for _, column := range requiredColumns {
		if _, ok := quote[column]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", apperrors.ErrMalformedQuote, column)
		}
	}

	return quote, nil
}
