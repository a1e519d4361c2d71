package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/stock-quote-sync/internal/model"
)

// MakeID returns a new zuniqueid-style identifier.
func MakeID() string {
	return uuid.New().String()
}

// SecurityBuilder provides a fluent interface for creating test securities.
//
// Example usage:
//
//	security := testutil.NewSecurity("AAPL").Build(t, db)
//
//	security := testutil.NewSecurity("VWRL").
//	    WithName("Vanguard FTSE All-World").
//	    Build(t, db)
type SecurityBuilder struct {
	ID     string
	Symbol string
	Name   string
}

// NewSecurity creates a SecurityBuilder with sensible defaults.
func NewSecurity(symbol string) *SecurityBuilder {
	return &SecurityBuilder{
		ID:     MakeID(),
		Symbol: symbol,
		Name:   symbol + " Inc.",
	}
}

// WithID sets a custom ID.
func (b *SecurityBuilder) WithID(id string) *SecurityBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *SecurityBuilder) WithName(name string) *SecurityBuilder {
	b.Name = name
	return b
}

// Build inserts the security into zsecurity and returns it.
func (b *SecurityBuilder) Build(t *testing.T, db *sql.DB) model.Security {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO zsecurity (z_ent, z_opt, zuniqueid, zsymbol, zname) VALUES (55, 1, ?, ?, ?)`,
		b.ID, b.Symbol, b.Name,
	)
	if err != nil {
		t.Fatalf("Failed to create security: %v", err)
	}

	return model.Security{ID: b.ID, Symbol: b.Symbol}
}

// CreateSecurity inserts a security with default values.
func CreateSecurity(t *testing.T, db *sql.DB, symbol string) model.Security {
	t.Helper()
	return NewSecurity(symbol).Build(t, db)
}

// NewPriceRecord returns a price record for security on date with simple,
// distinguishable values derived from base.
func NewPriceRecord(security model.Security, date time.Time, base float64) model.PriceRecord {
	return model.PriceRecord{
		SecurityID: security.ID,
		Symbol:     security.Symbol,
		Date:       date,
		Open:       decimal.NewFromFloat(base),
		High:       decimal.NewFromFloat(base + 1),
		Low:        decimal.NewFromFloat(base - 1),
		Close:      decimal.NewFromFloat(base + 0.5),
		Volume:     int64(base * 1000),
	}
}

// PriceRow is a zprice row as stored.
type PriceRow struct {
	PK         int64
	Entity     int
	Option     int
	DateKey    int64
	SecurityID string
	Volume     int64
	Close      decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Open       decimal.Decimal
}

// GetPriceRows returns all zprice rows ordered by primary key.
func GetPriceRows(t *testing.T, db *sql.DB) []PriceRow {
	t.Helper()

	rows, err := db.QueryContext(context.Background(), `
		SELECT z_pk, z_ent, z_opt, zdate, zsecurityid,
		       zvolume, zclosingprice, zhighprice, zlowprice, zopeningprice
		FROM zprice
		ORDER BY z_pk
	`)
	if err != nil {
		t.Fatalf("Failed to query zprice: %v", err)
	}
	defer rows.Close()

	result := []PriceRow{}
	for rows.Next() {
		var r PriceRow
		if err := rows.Scan(
			&r.PK, &r.Entity, &r.Option, &r.DateKey, &r.SecurityID,
			&r.Volume, &r.Close, &r.High, &r.Low, &r.Open,
		); err != nil {
			t.Fatalf("Failed to scan zprice: %v", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Failed to iterate zprice: %v", err)
	}

	return result
}

// InsertPriceRow inserts a raw zprice row, e.g. one owned by another entity type.
func InsertPriceRow(t *testing.T, db *sql.DB, row PriceRow) int64 {
	t.Helper()

	result, err := db.Exec(`
		INSERT INTO zprice (
			z_ent, z_opt, zdate, zsecurityid,
			zvolume, zclosingprice, zhighprice, zlowprice, zopeningprice
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Entity, row.Option, row.DateKey, row.SecurityID,
		row.Volume, row.Close, row.High, row.Low, row.Open,
	)
	if err != nil {
		t.Fatalf("Failed to insert zprice row: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get inserted id: %v", err)
	}
	return id
}

// GetPrimaryKeyMax returns z_max of the named z_primarykey row.
func GetPrimaryKeyMax(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	var maxPK sql.NullInt64
	if err := db.QueryRow(`SELECT z_max FROM z_primarykey WHERE z_name = ?`, name).Scan(&maxPK); err != nil {
		t.Fatalf("Failed to read z_primarykey for %s: %v", name, err)
	}
	return maxPK.Int64
}

// DeletePrimaryKeyRow removes the named z_primarykey row.
func DeletePrimaryKeyRow(t *testing.T, db *sql.DB, name string) {
	t.Helper()

	if _, err := db.Exec(`DELETE FROM z_primarykey WHERE z_name = ?`, name); err != nil {
		t.Fatalf("Failed to delete z_primarykey row: %v", err)
	}
}
