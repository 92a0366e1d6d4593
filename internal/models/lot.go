package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BuyLot is an immutable record of one buy fill. QuantityRemaining is
// decremented as sells consume the lot; drained lots are kept for audit
// but excluded from further matching.
type BuyLot struct {
	ID                int64           `json:"id"`
	Symbol            string          `json:"symbol"`
	QuantityOriginal  decimal.Decimal `json:"quantity_original"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	OpenedAt          time.Time       `json:"opened_at"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LotMatch is one (lot, quantity) pair consumed to satisfy a sell.
type LotMatch struct {
	LotID     int64           `json:"lot_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SellResult is the FIFO matching breakdown for one sell.
type SellResult struct {
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Proceeds       decimal.Decimal `json:"proceeds"`
	CostBasis      decimal.Decimal `json:"cost_basis"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	RealizedPnl    decimal.Decimal `json:"realized_pnl"`
	RealizedPnlPct decimal.Decimal `json:"realized_pnl_pct"`
	Matches        []LotMatch      `json:"matches"`
	ExecutedAt     time.Time       `json:"executed_at"`
}
