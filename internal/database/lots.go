package database

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// CreateBuyLot mirrors a ledger lot into the audit table. lot.ID is the
// ledger's per-symbol sequence, kept so DB rows can be traced back to
// in-memory lots.
func (db *DB) CreateBuyLot(lot *models.BuyLot) error {
	query := `
		INSERT INTO buy_lots (
			symbol, lot_seq, quantity_original, quantity_remaining,
			unit_price, opened_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := db.conn.Exec(query,
		lot.Symbol, lot.ID, lot.QuantityOriginal, lot.QuantityRemaining,
		lot.UnitPrice, lot.OpenedAt, lot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create buy lot: %w", err)
	}
	return nil
}

// UpdateLotRemaining records a sell's consumption of a lot.
func (db *DB) UpdateLotRemaining(symbol string, lotSeq int64, remaining decimal.Decimal) error {
	query := `UPDATE buy_lots SET quantity_remaining = $3 WHERE symbol = $1 AND lot_seq = $2`
	result, err := db.conn.Exec(query, symbol, lotSeq, remaining)
	if err != nil {
		return fmt.Errorf("failed to update buy lot: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("buy lot not found: %s/%d", symbol, lotSeq)
	}
	return nil
}

// GetLotsBySymbol retrieves all lots for a symbol in FIFO order, drained
// lots included.
func (db *DB) GetLotsBySymbol(symbol string) ([]*models.BuyLot, error) {
	query := `
		SELECT lot_seq, symbol, quantity_original, quantity_remaining,
		       unit_price, opened_at, created_at
		FROM buy_lots
		WHERE symbol = $1
		ORDER BY opened_at ASC, lot_seq ASC
	`
	rows, err := db.conn.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query buy lots: %w", err)
	}
	defer rows.Close()

	var lots []*models.BuyLot
	for rows.Next() {
		var lot models.BuyLot
		err := rows.Scan(
			&lot.ID, &lot.Symbol, &lot.QuantityOriginal, &lot.QuantityRemaining,
			&lot.UnitPrice, &lot.OpenedAt, &lot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan buy lot: %w", err)
		}
		lots = append(lots, &lot)
	}

	return lots, nil
}

// GetOpenQuantity returns the sum of remaining quantity across the lots
// persisted for a symbol.
func (db *DB) GetOpenQuantity(symbol string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity_remaining), 0) FROM buy_lots WHERE symbol = $1`
	var total decimal.Decimal
	if err := db.conn.QueryRow(query, symbol).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get open quantity: %w", err)
	}
	return total, nil
}
