package database_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/database"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func TestDataFile(t *testing.T) {
	t.Run("joins directory and file name", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "accountsData.ibank"))

		path, err := database.DataFile(dir, "accountsData.ibank")
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "accountsData.ibank"), path)
	})

	t.Run("fails for a missing directory", func(t *testing.T) {
		_, err := database.DataFile(filepath.Join(t.TempDir(), "nope"), "accountsData.ibank")
		require.ErrorIs(t, err, apperrors.ErrMissingDataDir)
	})

	t.Run("fails for a missing file", func(t *testing.T) {
		_, err := database.DataFile(t.TempDir(), "accountsData.ibank")
		require.ErrorIs(t, err, apperrors.ErrMissingDataFile)
	})

	t.Run("fails when the name is a directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "accountsData.ibank"), 0o700))

		_, err := database.DataFile(dir, "accountsData.ibank")
		require.ErrorIs(t, err, apperrors.ErrMissingDataFile)
	})
}

func TestDSN(t *testing.T) {
	dsn, err := database.DSN(filepath.Join(t.TempDir(), "my data.ibank"))
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(dsn, "file:"), dsn)
	require.Contains(t, dsn, "my%20data.ibank")
	require.Contains(t, dsn, "mode=rw")
	require.Contains(t, dsn, "_pragma=busy_timeout(5000)")
}

// TestOpen tests opening the host database file.
//
// WHY: The file belongs to the host application. Opening must never create
// it, and every connection must wait on the host's locks instead of failing.
func TestOpen(t *testing.T) {
	t.Run("applies the busy timeout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.ibank")
		touch(t, path)

		db, err := database.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		var timeout int
		require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
		require.Equal(t, database.BusyTimeoutMillis, timeout)
	})

	t.Run("fresh connections get the busy timeout too", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.ibank")
		touch(t, path)

		db, err := database.Open(path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		db.SetMaxIdleConns(0)

		for range 3 {
			var timeout int
			require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
			require.Equal(t, database.BusyTimeoutMillis, timeout)
		}
	})

	t.Run("does not create a missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.ibank")

		db, err := database.Open(path)
		if err == nil {
			db.Close()
		}

		require.Error(t, err)
		require.NoFileExists(t, path)
	})
}
