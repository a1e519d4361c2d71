package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default row tags for the price entity inside the host's shared zprice table.
const (
	DefaultPriceEntity = 42
	DefaultPriceOption = 1
)

// PriceRecord is a normalized daily quote for a single security.
type PriceRecord struct {
	SecurityID string
	Symbol     string
	Date       time.Time
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     int64
}

// PriceRowTags identify price rows within the polymorphic zprice table.
// The values are opaque to this application.
type PriceRowTags struct {
	Entity int
	Option int
}

// DefaultPriceRowTags returns the tags used by the host application for price rows.
func DefaultPriceRowTags() PriceRowTags {
	return PriceRowTags{Entity: DefaultPriceEntity, Option: DefaultPriceOption}
}

// dateKeyEpoch is 2001-01-01 at noon. Both ends of the DateKey interval sit at
// noon so the stored value never straddles a day boundary in any time zone.
var dateKeyEpoch = time.Date(2001, time.January, 1, 12, 0, 0, 0, time.UTC)

// DateKey encodes the calendar date of t as seconds elapsed between the
// reference epoch and noon of that date. Only the year, month and day of t
// are used; its clock time and location are ignored.
//
// Rows written by older sync tools carry an extra 43200 seconds; matching
// those rows means adding that offset here.
func DateKey(t time.Time) int64 {
	y, m, d := t.Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return int64(noon.Sub(dateKeyEpoch) / time.Second)
}
