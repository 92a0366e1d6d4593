package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// CreateTrade inserts a new executed trade record.
func (db *DB) CreateTrade(t *models.Trade) error {
	query := `
		INSERT INTO trades (
			symbol, side, quantity, price, total_value,
			realized_pnl, realized_pnl_pct, order_id, executed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	now := time.Now()
	executedAt := t.ExecutedAt
	if executedAt.IsZero() {
		executedAt = now
	}

	var realizedPnl, realizedPnlPct interface{}
	if t.Side == models.TradeSideSell {
		realizedPnl = t.RealizedPnl
		realizedPnlPct = t.RealizedPnlPct
	}

	err := db.conn.QueryRow(query,
		t.Symbol, t.Side, t.Quantity, t.Price, t.TotalValue,
		realizedPnl, realizedPnlPct, t.OrderID, executedAt, now,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	t.ExecutedAt = executedAt
	t.CreatedAt = now
	return nil
}

// GetTradeByID retrieves a trade by ID.
func (db *DB) GetTradeByID(id int) (*models.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, price, total_value,
		       realized_pnl, realized_pnl_pct, order_id, executed_at, created_at
		FROM trades
		WHERE id = $1
	`
	return scanTrade(db.conn.QueryRow(query, id))
}

// GetTradesBySymbol retrieves trades for a symbol, newest first.
func (db *DB) GetTradesBySymbol(symbol string, limit int) ([]*models.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, price, total_value,
		       realized_pnl, realized_pnl_pct, order_id, executed_at, created_at
		FROM trades
		WHERE symbol = $1
		ORDER BY executed_at DESC
		LIMIT $2
	`
	return scanTrades(db.conn.Query(query, symbol, limit))
}

// GetAllTrades retrieves all trades, newest first, up to limit.
func (db *DB) GetAllTrades(limit int) ([]*models.Trade, error) {
	query := `
		SELECT id, symbol, side, quantity, price, total_value,
		       realized_pnl, realized_pnl_pct, order_id, executed_at, created_at
		FROM trades
		ORDER BY executed_at DESC
		LIMIT $1
	`
	return scanTrades(db.conn.Query(query, limit))
}

func scanTrade(row *sql.Row) (*models.Trade, error) {
	var t models.Trade
	var realizedPnl, realizedPnlPct, orderID sql.NullString

	err := row.Scan(
		&t.ID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.TotalValue,
		&realizedPnl, &realizedPnlPct, &orderID, &t.ExecutedAt, &t.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trade not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	applyNullables(&t, realizedPnl, realizedPnlPct, orderID)
	return &t, nil
}

func scanTrades(rows *sql.Rows, err error) ([]*models.Trade, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		var t models.Trade
		var realizedPnl, realizedPnlPct, orderID sql.NullString

		err := rows.Scan(
			&t.ID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.TotalValue,
			&realizedPnl, &realizedPnlPct, &orderID, &t.ExecutedAt, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		applyNullables(&t, realizedPnl, realizedPnlPct, orderID)
		trades = append(trades, &t)
	}

	return trades, nil
}

func applyNullables(t *models.Trade, realizedPnl, realizedPnlPct, orderID sql.NullString) {
	if realizedPnl.Valid {
		t.RealizedPnl, _ = decimal.NewFromString(realizedPnl.String)
	}
	if realizedPnlPct.Valid {
		t.RealizedPnlPct, _ = decimal.NewFromString(realizedPnlPct.String)
	}
	if orderID.Valid {
		t.OrderID = orderID.String
	}
}

// TradeStats holds aggregate performance counters over closed trades.
type TradeStats struct {
	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	WinRate       decimal.Decimal `json:"win_rate"`
	TotalPnl      decimal.Decimal `json:"total_pnl"`
	AvgPnlPct     decimal.Decimal `json:"avg_pnl_pct"`
	AvgWin        decimal.Decimal `json:"avg_win"`
	AvgLoss       decimal.Decimal `json:"avg_loss"`
}

// GetTradeStats returns aggregated statistics over all sells.
func (db *DB) GetTradeStats() (*TradeStats, error) {
	query := `
		SELECT
			COUNT(*) as total_trades,
			COUNT(*) FILTER (WHERE realized_pnl > 0) as winning_trades,
			COUNT(*) FILTER (WHERE realized_pnl < 0) as losing_trades,
			COALESCE(SUM(realized_pnl), 0) as total_pnl,
			COALESCE(AVG(realized_pnl_pct), 0) as avg_pnl_pct,
			COALESCE(AVG(realized_pnl) FILTER (WHERE realized_pnl > 0), 0) as avg_win,
			COALESCE(AVG(realized_pnl) FILTER (WHERE realized_pnl < 0), 0) as avg_loss
		FROM trades
		WHERE side = 'SELL' AND realized_pnl IS NOT NULL
	`
	var stats TradeStats
	err := db.conn.QueryRow(query).Scan(
		&stats.TotalTrades, &stats.WinningTrades, &stats.LosingTrades,
		&stats.TotalPnl, &stats.AvgPnlPct, &stats.AvgWin, &stats.AvgLoss,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade stats: %w", err)
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = decimal.NewFromInt(int64(stats.WinningTrades)).
			Div(decimal.NewFromInt(int64(stats.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}

	return &stats, nil
}
