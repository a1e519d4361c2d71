package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ndewijer/stock-quote-sync/internal/model"
)

// TestDateKey tests the calendar date encoding used in the zprice composite key.
//
// WHY: The key must match rows written by earlier runs, so it has to depend on
// the calendar date alone and never on clock time or zone.
func TestDateKey(t *testing.T) {
	t.Run("reference date encodes to zero", func(t *testing.T) {
		require.Equal(t, int64(0), model.DateKey(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("encodes whole days since the reference date", func(t *testing.T) {
		date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		days := date.Sub(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24

		require.Equal(t, int64(days)*86400, model.DateKey(date))
		require.Equal(t, int64(8474)*86400, model.DateKey(date))
	})

	t.Run("ignores clock time and location", func(t *testing.T) {
		est := time.FixedZone("EST", -5*3600)
		base := model.DateKey(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

		require.Equal(t, base, model.DateKey(time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)))
		require.Equal(t, base, model.DateKey(time.Date(2024, 1, 2, 1, 0, 0, 0, est)))
	})

	t.Run("distinct dates never collide", func(t *testing.T) {
		seen := make(map[int64]time.Time)
		start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
		for d := start; d.Year() < 2026; d = d.AddDate(0, 0, 1) {
			key := model.DateKey(d)
			prev, dup := seen[key]
			require.Falsef(t, dup, "%s and %s share key %d", prev, d, key)
			seen[key] = d
		}
	})

	t.Run("dates before the reference are negative", func(t *testing.T) {
		require.Equal(t, int64(-86400), model.DateKey(time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC)))
	})
}

func TestReconcileResult_Processed(t *testing.T) {
	require.Equal(t, 5, model.ReconcileResult{Updated: 2, Inserted: 3}.Processed())
	require.Zero(t, model.ReconcileResult{}.Processed())
}
