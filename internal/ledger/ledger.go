// Package ledger maintains the per-asset list of open buy lots and computes
// FIFO-matched realized P/L for sells. It is the single source of truth for
// remaining open quantity; the engine's Position.Quantity must always equal
// OpenQuantity for the same symbol.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

var (
	// ErrInvalidQuantity is returned when a buy or sell is recorded with a
	// non-positive quantity or price.
	ErrInvalidQuantity = errors.New("ledger: quantity and price must be positive")

	// ErrInsufficientBalance is returned when a sell exceeds the open
	// quantity across all lots for the asset. No lot is mutated.
	ErrInsufficientBalance = errors.New("ledger: sell quantity exceeds open quantity")
)

// book holds the ordered lots for one asset. Lots are kept sorted by
// (OpenedAt, ID) so matching always walks oldest-first.
type book struct {
	lots    []*models.BuyLot
	nextSeq int64
}

// Ledger is safe for concurrent use. Operations on different assets do not
// block each other; buys and sells for the same asset are serialized to
// preserve FIFO order.
type Ledger struct {
	mu    sync.RWMutex
	books map[string]*book
	locks map[string]*sync.Mutex
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		books: make(map[string]*book),
		locks: make(map[string]*sync.Mutex),
	}
}

// bookFor returns the book and its lock for a symbol, creating both on
// first use.
func (l *Ledger) bookFor(symbol string) (*book, *sync.Mutex) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.books[symbol]
	if !ok {
		b = &book{nextSeq: 1}
		l.books[symbol] = b
		l.locks[symbol] = &sync.Mutex{}
	}
	return b, l.locks[symbol]
}

// RecordBuy appends a new open lot for the asset and returns it.
func (l *Ledger) RecordBuy(symbol string, quantity, price decimal.Decimal, ts time.Time) (*models.BuyLot, error) {
	if quantity.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	b, lock := l.bookFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	lot := &models.BuyLot{
		ID:                b.nextSeq,
		Symbol:            symbol,
		QuantityOriginal:  quantity,
		QuantityRemaining: quantity,
		UnitPrice:         price,
		OpenedAt:          ts,
		CreatedAt:         time.Now(),
	}
	b.nextSeq++

	// Insert keeping (OpenedAt, ID) order. Buys normally arrive in time
	// order so this is almost always a plain append.
	idx := len(b.lots)
	for idx > 0 {
		prev := b.lots[idx-1]
		if prev.OpenedAt.Before(lot.OpenedAt) || prev.OpenedAt.Equal(lot.OpenedAt) {
			break
		}
		idx--
	}
	b.lots = append(b.lots, nil)
	copy(b.lots[idx+1:], b.lots[idx:])
	b.lots[idx] = lot

	return lot, nil
}

// RecordSell consumes open lots oldest-first to cover the sell quantity and
// returns the matching breakdown. The call is atomic: if the sell cannot be
// fully covered, no lot is mutated and ErrInsufficientBalance is returned.
func (l *Ledger) RecordSell(symbol string, quantity, price decimal.Decimal, ts time.Time) (*models.SellResult, error) {
	if quantity.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	b, lock := l.bookFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	open := decimal.Zero
	for _, lot := range b.lots {
		open = open.Add(lot.QuantityRemaining)
	}
	if quantity.GreaterThan(open) {
		return nil, ErrInsufficientBalance
	}

	remaining := quantity
	costBasis := decimal.Zero
	var matches []models.LotMatch

	for _, lot := range b.lots {
		if remaining.IsZero() {
			break
		}
		if lot.QuantityRemaining.LessThanOrEqual(decimal.Zero) {
			continue
		}

		match := decimal.Min(lot.QuantityRemaining, remaining)
		lot.QuantityRemaining = lot.QuantityRemaining.Sub(match)
		remaining = remaining.Sub(match)
		costBasis = costBasis.Add(match.Mul(lot.UnitPrice))
		matches = append(matches, models.LotMatch{
			LotID:     lot.ID,
			Quantity:  match,
			UnitPrice: lot.UnitPrice,
		})
	}

	proceeds := quantity.Mul(price)
	realized := proceeds.Sub(costBasis)

	pct := decimal.Zero
	if costBasis.GreaterThan(decimal.Zero) {
		pct = realized.Div(costBasis).Mul(decimal.NewFromInt(100))
	}

	return &models.SellResult{
		Symbol:         symbol,
		Quantity:       quantity,
		Price:          price,
		Proceeds:       proceeds,
		CostBasis:      costBasis,
		EntryPrice:     costBasis.Div(quantity),
		RealizedPnl:    realized,
		RealizedPnlPct: pct,
		Matches:        matches,
		ExecutedAt:     ts,
	}, nil
}

// OpenQuantity returns the sum of remaining quantity across all open lots
// for the asset.
func (l *Ledger) OpenQuantity(symbol string) decimal.Decimal {
	b, lock := l.bookFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	total := decimal.Zero
	for _, lot := range b.lots {
		total = total.Add(lot.QuantityRemaining)
	}
	return total
}

// WeightedAveragePrice returns the open-quantity-weighted average buy price,
// recomputed on demand. Zero when no quantity is open.
func (l *Ledger) WeightedAveragePrice(symbol string) decimal.Decimal {
	b, lock := l.bookFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	qty := decimal.Zero
	cost := decimal.Zero
	for _, lot := range b.lots {
		qty = qty.Add(lot.QuantityRemaining)
		cost = cost.Add(lot.QuantityRemaining.Mul(lot.UnitPrice))
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return cost.Div(qty)
}

// Lots returns a copy of every lot recorded for the asset, including
// drained ones, in FIFO order.
func (l *Ledger) Lots(symbol string) []models.BuyLot {
	b, lock := l.bookFor(symbol)
	lock.Lock()
	defer lock.Unlock()

	out := make([]models.BuyLot, len(b.lots))
	for i, lot := range b.lots {
		out[i] = *lot
	}
	return out
}
