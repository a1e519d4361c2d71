package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/stock-quote-sync/internal/apperrors"
	"github.com/ndewijer/stock-quote-sync/internal/model"
)

// PriceRepository writes daily prices into the zprice table and keeps the
// z_primarykey bookkeeping row in step with it.
type PriceRepository struct {
	db   *sql.DB
	tx   *sql.Tx
	tags model.PriceRowTags
}

// NewPriceRepository creates a new PriceRepository for rows carrying tags.
func NewPriceRepository(db *sql.DB, tags model.PriceRowTags) *PriceRepository {
	return &PriceRepository{db: db, tags: tags}
}

// WithTx returns a new PriceRepository scoped to the provided transaction.
func (r *PriceRepository) WithTx(tx *sql.Tx) *PriceRepository {
	return &PriceRepository{
		db:   r.db,
		tx:   tx,
		tags: r.tags,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PriceRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpdatePrice overwrites the OHLCV values of the existing row for the
// record's security and date.
//
// Returns:
//   - bool: true if a row was updated, false if none matched
//   - error: If the statement fails
func (r *PriceRepository) UpdatePrice(ctx context.Context, p model.PriceRecord) (bool, error) {
	query := `
		UPDATE zprice
		SET
			zvolume = ?,
			zclosingprice = ?,
			zhighprice = ?,
			zlowprice = ?,
			zopeningprice = ?
		WHERE
			z_ent = ? AND z_opt = ? AND
			zdate = ? AND zsecurityid = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Volume, p.Close, p.High, p.Low, p.Open,
		r.tags.Entity, r.tags.Option,
		model.DateKey(p.Date), p.SecurityID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update price for %s: %w", p.Symbol, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// InsertPrice adds a new row for the record's security and date.
func (r *PriceRepository) InsertPrice(ctx context.Context, p model.PriceRecord) error {
	query := `
		INSERT INTO zprice (
			z_ent, z_opt, zdate, zsecurityid,
			zvolume, zclosingprice, zhighprice, zlowprice, zopeningprice
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		r.tags.Entity, r.tags.Option, model.DateKey(p.Date), p.SecurityID,
		p.Volume, p.Close, p.High, p.Low, p.Open,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price for %s: %w", p.Symbol, err)
	}

	return nil
}

// RefreshPrimaryKey sets the Price bookkeeping row to the highest z_pk in zprice.
//
// Returns ErrPrimaryKeyRowMissing when the bookkeeping row does not exist.
func (r *PriceRepository) RefreshPrimaryKey(ctx context.Context) error {
	query := `
		UPDATE z_primarykey
		SET z_max = (SELECT MAX(z_pk) FROM zprice)
		WHERE z_name = 'Price'
	`

	result, err := r.getQuerier().ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to update z_primarykey: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrPrimaryKeyRowMissing
	}

	return nil
}
