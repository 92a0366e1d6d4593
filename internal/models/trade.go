package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade side constants
const (
	TradeSideBuy  = "BUY"
	TradeSideSell = "SELL"
)

// Trade represents one executed buy or sell. Realized P/L fields are only
// populated on sells.
type Trade struct {
	ID             int             `json:"id"`
	Symbol         string          `json:"symbol"`
	Side           string          `json:"side"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	TotalValue     decimal.Decimal `json:"total_value"`
	RealizedPnl    decimal.Decimal `json:"realized_pnl,omitempty"`
	RealizedPnlPct decimal.Decimal `json:"realized_pnl_pct,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	ExecutedAt     time.Time       `json:"executed_at"`
	CreatedAt      time.Time       `json:"created_at"`
}
