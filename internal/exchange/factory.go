package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/market"
)

// NewClient selects an exchange client by configured name. Adding a live
// venue means adding a case here; the engine never knows which one it got.
func NewClient(name string, prices market.Provider, paperBalance decimal.Decimal) (Client, error) {
	switch name {
	case "paper":
		return NewPaperClient(prices, paperBalance), nil
	default:
		return nil, fmt.Errorf("unknown exchange: %s", name)
	}
}
