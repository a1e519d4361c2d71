package testutil

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Test Package

	"github.com/ndewijer/stock-quote-sync/internal/database"
)

// DataFileName is the name of the fixture database inside its data directory.
const DataFileName = "accountsData.ibank"

// DefaultTestTimeout bounds every HTTP exchange made by test clients.
const DefaultTestTimeout = 5 * time.Second

//go:embed migrations/*.sql
var embedMigrations embed.FS

// TestDB is a fixture database file in a temporary data directory.
type TestDB struct {
	*sql.DB
	Dir  string
	Path string
}

// SetupTestDB creates a Banktivity-shaped SQLite file in a temporary directory
// and opens it the way the application does.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, DataFileName)

	if err := migrate(t.Context(), path); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return &TestDB{DB: db, Dir: dir, Path: path}
}

// migrate applies the fixture schema on its own connection so the
// application-facing handle starts from a clean pool.
func migrate(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return err
	}

	_, err = provider.Up(ctx)
	return err
}
