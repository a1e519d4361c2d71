package yahoo

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/model"
)

// Column names of the daily history download.
const (
	ColumnDate   = "Date"
	ColumnOpen   = "Open"
	ColumnHigh   = "High"
	ColumnLow    = "Low"
	ColumnClose  = "Close"
	ColumnVolume = "Volume"
)

// requiredColumns lists the columns a quote must carry to become a price record.
var requiredColumns = []string{ColumnDate, ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume}

const dateLayout = "2006-01-02"

// Quote is the first data row of a history download, keyed by column header.
// Columns beyond the required ones (e.g. "Adj Close") are kept but unused.
type Quote map[string]string

// PriceRecord normalizes the quote and merges it with the security it was
// downloaded for.
//
// Returns:
//   - model.PriceRecord: Record with the date truncated to midnight UTC
//   - error: ErrMalformedQuote if any field fails to parse
func (q Quote) PriceRecord(security model.Security) (model.PriceRecord, error) {
	date, err := time.Parse(dateLayout, q[ColumnDate])
	if err != nil {
		return model.PriceRecord{}, q.malformed(security, ColumnDate)
	}

	prices := make(map[string]decimal.Decimal, 4)
	for _, column := range []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose} {
		price, err := decimal.NewFromString(q[column])
		if err != nil {
			return model.PriceRecord{}, q.malformed(security, column)
		}
		prices[column] = price
	}

	volume, err := strconv.ParseInt(q[ColumnVolume], 10, 64)
	if err != nil {
		return model.PriceRecord{}, q.malformed(security, ColumnVolume)
	}

	return model.PriceRecord{
		SecurityID: security.ID,
		Symbol:     security.Symbol,
		Date:       date,
		Open:       prices[ColumnOpen],
		High:       prices[ColumnHigh],
		Low:        prices[ColumnLow],
		Close:      prices[ColumnClose],
		Volume:     volume,
	}, nil
}

func (q Quote) malformed(security model.Security, column string) error {
	return fmt.Errorf("%w: %s: invalid %s %q", apperrors.ErrMalformedQuote, security.Symbol, column, q[column])
}
