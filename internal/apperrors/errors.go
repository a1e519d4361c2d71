package apperrors

import "errors"

// Quote retrieval errors. The first two are absorbed per security by the
// price fetcher; only ErrQuoteSourceUnavailable fails a run.
var (
	// ErrNoQuoteData indicates the quote source answered with a non-success status for a symbol.
	ErrNoQuoteData = errors.New("no quote data")

	// ErrMalformedQuote indicates the quote body could not be parsed into a price record.
	ErrMalformedQuote = errors.New("malformed quote")

	// ErrQuoteSourceUnavailable indicates no request in the batch could reach the quote source.
	ErrQuoteSourceUnavailable = errors.New("quote source unavailable")
)

// Invocation and configuration errors.
var (
	// ErrMissingDataDir indicates the data directory argument does not name an existing directory.
	ErrMissingDataDir = errors.New("data directory not found")

	// ErrMissingDataFile indicates the data directory holds no database file.
	ErrMissingDataFile = errors.New("database file not found")

	// ErrInvalidConfig indicates an environment setting could not be parsed.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Data integrity errors.
var (
	// ErrPrimaryKeyRowMissing indicates z_primarykey has no row for the price entity.
	// It is reported as a warning; the host recreates the row on its next save.
	ErrPrimaryKeyRowMissing = errors.New("primary key row for Price not found")
)
