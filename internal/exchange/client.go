// Package exchange is the order execution port. The engine only ever places
// market orders: a buy spends a quote-currency amount, a sell liquidates a
// base-currency quantity.
package exchange

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrOrderRejected is returned when the venue refuses an order. The engine
// leaves the position in its current state and retries or re-evaluates on
// the next tick.
var ErrOrderRejected = errors.New("exchange: order rejected")

// Fill is the result of an executed market order.
type Fill struct {
	OrderID  string
	Symbol   string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Client places market orders and reports the available quote balance.
type Client interface {
	// MarketBuy spends quoteAmount of the quote currency on symbol.
	MarketBuy(ctx context.Context, symbol string, quoteAmount decimal.Decimal) (*Fill, error)

	// MarketSell liquidates quantity of symbol at market.
	MarketSell(ctx context.Context, symbol string, quantity decimal.Decimal) (*Fill, error)

	// QuoteBalance returns the quote currency available for buying.
	QuoteBalance(ctx context.Context) (decimal.Decimal, error)
}
