package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
)

// BusyTimeoutMillis is how long a statement waits for a lock held by the host application.
const BusyTimeoutMillis = 5000

// DataFile returns the path of the database file inside dataDir.
// Both the directory and the file must already exist.
func DataFile(dataDir, fileName string) (string, error) {
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", apperrors.ErrMissingDataDir, dataDir)
	}

	path := filepath.Join(dataDir, fileName)
	info, err = os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", apperrors.ErrMissingDataFile, path)
	}

	return path, nil
}

// DSN builds a read-write connection string for an existing database file.
// The file is never created, and every pooled connection gets the busy timeout.
func DSN(dbPath string) (string, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dbPath, err)
	}

	dsn := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: fmt.Sprintf("mode=rw&_pragma=busy_timeout(%d)", BusyTimeoutMillis),
	}
	return dsn.String(), nil
}

// Open opens a connection to the SQLite database
func Open(dbPath string) (*sql.DB, error) {
	dsn, err := DSN(dbPath)
	if err != nil {
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Serialize access the way the host application expects.
	db.SetMaxOpenConns(1)

	return db, nil
}
