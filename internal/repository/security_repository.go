package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/stock-quote-sync/internal/model"
)

// SecurityRepository reads tracked securities from the zsecurity table.
type SecurityRepository struct {
	db *sql.DB
}

// NewSecurityRepository creates a new SecurityRepository with the provided database connection.
func NewSecurityRepository(db *sql.DB) *SecurityRepository {
	return &SecurityRepository{db: db}
}

// GetSyncableSecurities returns every security whose symbol is at most
// maxSymbolLength characters, ordered by symbol. Longer symbols are
// host-internal identifiers that the quote source does not know.
func (r *SecurityRepository) GetSyncableSecurities(ctx context.Context, maxSymbolLength int) ([]model.Security, error) {
	query := `
		SELECT zuniqueid, zsymbol
		FROM zsecurity
		WHERE LENGTH(zsymbol) <= ?
		ORDER BY zsymbol
	`

	rows, err := r.db.QueryContext(ctx, query, maxSymbolLength)
	if err != nil {
		return nil, fmt.Errorf("failed to query zsecurity table: %w", err)
	}
	defer rows.Close()

	securities := []model.Security{}

	for rows.Next() {
		var s model.Security
		if err := rows.Scan(&s.ID, &s.Symbol); err != nil {
			return nil, fmt.Errorf("failed to scan zsecurity table results: %w", err)
		}
		securities = append(securities, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zsecurity table: %w", err)
	}

	return securities, nil
}
