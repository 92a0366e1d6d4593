// Package market supplies current prices and candidate-coin screening for
// the engine. Providers are fallible; the engine treats every error as a
// skipped tick, never as a state transition.
package market

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// ErrPriceUnavailable is returned when no provider can quote the symbol
// right now. The engine skips the poll tick without touching the streak.
var ErrPriceUnavailable = errors.New("market: price unavailable")

// Provider is the market data port.
type Provider interface {
	// GetPrice returns the current price for a symbol.
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// GetCandidates returns recently listed coins matching the criteria.
	// Filtering is best-effort on the provider side; the engine re-checks
	// every criterion before buying.
	GetCandidates(ctx context.Context, criteria models.CandidateCriteria) ([]models.CoinSummary, error)
}
