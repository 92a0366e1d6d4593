// Package engine drives the position lifecycle: evaluate buy criteria
// against newly listed coins, open a position, poll its price through the
// drawdown detector, and close it when the sell signal fires. All money
// movement goes through the order port; all cost basis goes through the
// ledger; every outcome lands in the statistics sink.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/detector"
	"github.com/coinsniper/coinsniper/internal/exchange"
	"github.com/coinsniper/coinsniper/internal/ledger"
	"github.com/coinsniper/coinsniper/internal/market"
	"github.com/coinsniper/coinsniper/internal/models"
	"github.com/coinsniper/coinsniper/internal/stats"
)

const recentClosedLimit = 50

// LotStore mirrors ledger lots into durable storage for auditing and the
// read API. Mirror writes are fire-and-forget; the in-memory ledger stays
// the source of truth.
type LotStore interface {
	CreateBuyLot(lot *models.BuyLot) error
	UpdateLotRemaining(symbol string, lotSeq int64, remaining decimal.Decimal) error
}

// Config holds the strategy parameters, read once at construction.
type Config struct {
	Criteria               models.CandidateCriteria
	PollInterval           time.Duration
	SellDwell              time.Duration
	MaxConcurrentPositions int
}

// Engine owns all positions. One engine instance manages one account.
type Engine struct {
	cfg    Config
	market market.Provider
	orders exchange.Client
	ledger *ledger.Ledger
	sink   stats.Sink
	lots   LotStore

	// mu serializes scans and polls so a position is only ever mutated by
	// one transition at a time.
	mu        sync.Mutex
	positions map[string]*models.Position
	recent    []models.Position
}

// New creates an engine. MaxConcurrentPositions defaults to 1, matching the
// one-position-at-a-time strategy. A nil sink or lot store disables that
// output.
func New(cfg Config, provider market.Provider, orders exchange.Client, book *ledger.Ledger, sink stats.Sink, lots LotStore) *Engine {
	if cfg.MaxConcurrentPositions <= 0 {
		cfg.MaxConcurrentPositions = 1
	}
	if sink == nil {
		sink = stats.NopSink{}
	}
	return &Engine{
		cfg:       cfg,
		market:    provider,
		orders:    orders,
		ledger:    book,
		sink:      sink,
		lots:      lots,
		positions: make(map[string]*models.Position),
	}
}

// Run polls open positions on the configured interval until the context is
// cancelled. Candidate scanning is driven separately (see ScanOnce).
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("Engine polling every %s (sell dwell %s)", e.cfg.PollInterval, e.cfg.SellDwell)

	for {
		select {
		case <-ctx.Done():
			log.Println("Engine shutting down...")
			return
		case <-ticker.C:
			e.PollOnce(ctx)
		}
	}
}

// ScanOnce fetches candidate coins and opens a position for the first one
// that qualifies. Evaluation is skipped entirely while the engine is at its
// position limit.
func (e *Engine) ScanOnce(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.positions) >= e.cfg.MaxConcurrentPositions {
		return nil
	}

	coins, err := e.market.GetCandidates(ctx, e.cfg.Criteria)
	if err != nil {
		e.recordFailure(ctx, models.EventDataFailed, "", models.StageScan, err)
		return fmt.Errorf("candidate scan failed: %w", err)
	}

	now := time.Now()
	for i := range coins {
		coin := &coins[i]
		if _, open := e.positions[coin.Symbol]; open {
			continue
		}
		if !coin.Qualifies(e.cfg.Criteria, now) {
			continue
		}

		if err := e.openPosition(ctx, coin); err != nil {
			// The candidate stays eligible for the next scan.
			log.Printf("Failed to open position in %s: %v", coin.Symbol, err)
			continue
		}
		if len(e.positions) >= e.cfg.MaxConcurrentPositions {
			break
		}
	}

	return nil
}

// openPosition spends the full quote balance on the coin and starts
// monitoring. The buy lot is recorded before the position becomes visible
// to the poll loop.
func (e *Engine) openPosition(ctx context.Context, coin *models.CoinSummary) error {
	balance, err := e.orders.QuoteBalance(ctx)
	if err != nil {
		e.recordFailure(ctx, models.EventOrderFailed, coin.Symbol, models.StageBuy, err)
		return fmt.Errorf("balance check failed: %w", err)
	}
	if balance.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("no quote balance available")
	}

	fill, err := e.orders.MarketBuy(ctx, coin.Symbol, balance)
	if err != nil {
		e.recordFailure(ctx, models.EventOrderFailed, coin.Symbol, models.StageBuy, err)
		return fmt.Errorf("buy order failed: %w", err)
	}

	now := time.Now()
	lot, err := e.ledger.RecordBuy(coin.Symbol, fill.Quantity, fill.Price, now)
	if err != nil {
		// The order filled but the ledger refused it. Surface loudly; the
		// operator has to reconcile by hand.
		log.Printf("LEDGER ERROR: buy fill for %s not recorded: %v", coin.Symbol, err)
		e.recordFailure(ctx, models.EventOrderFailed, coin.Symbol, models.StageBuy, err)
		return fmt.Errorf("ledger rejected buy: %w", err)
	}
	if e.lots != nil {
		if err := e.lots.CreateBuyLot(lot); err != nil {
			log.Printf("Failed to mirror buy lot %s/%d: %v", lot.Symbol, lot.ID, err)
		}
	}

	pos := &models.Position{
		Symbol:        coin.Symbol,
		State:         models.StateMonitoring,
		Quantity:      fill.Quantity,
		EntryPrice:    fill.Price,
		OpenedAt:      now,
		ApexPrice:     fill.Price,
		ApexAt:        now,
		SellThreshold: detector.Threshold(e.cfg.SellDwell, e.cfg.PollInterval),
	}
	e.positions[coin.Symbol] = pos

	log.Printf("Opened position: %s qty=%s entry=%s threshold=%d",
		coin.Symbol, fill.Quantity, fill.Price, pos.SellThreshold)

	e.sink.RecordTrade(ctx, &models.Trade{
		Symbol:     coin.Symbol,
		Side:       models.TradeSideBuy,
		Quantity:   fill.Quantity,
		Price:      fill.Price,
		TotalValue: fill.Quantity.Mul(fill.Price),
		OrderID:    fill.OrderID,
		ExecutedAt: now,
	})

	return nil
}

// PollOnce runs one poll tick over every open position. A tick always
// completes: failures are recorded and the position is left in a state the
// next tick can make progress from.
func (e *Engine) PollOnce(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, pos := range e.positions {
		switch pos.State {
		case models.StateSelling:
			// A previous close attempt failed; retry rather than resume
			// price monitoring.
			e.closePosition(ctx, pos)
		case models.StateMonitoring:
			e.pollPosition(ctx, pos)
		}
	}
}

func (e *Engine) pollPosition(ctx context.Context, pos *models.Position) {
	price, err := e.market.GetPrice(ctx, pos.Symbol)
	if err != nil {
		// Skip the tick; the streak is neither advanced nor reset.
		e.recordFailure(ctx, models.EventDataFailed, pos.Symbol, models.StagePoll, err)
		return
	}

	switch detector.Observe(pos, price, time.Now()) {
	case detector.SignalSellTrigger:
		log.Printf("Sell trigger for %s: price %s stayed below apex %s",
			pos.Symbol, price, pos.ApexPrice)
		pos.State = models.StateSelling
		e.closePosition(ctx, pos)
	case detector.SignalNewApex:
		log.Printf("New apex for %s: %s", pos.Symbol, price)
	}
}

// closePosition sells the full remaining quantity, realizes P/L in the
// ledger, and marks the position closed. No-op on an already closed
// position. Caller holds e.mu.
func (e *Engine) closePosition(ctx context.Context, pos *models.Position) {
	if pos.State == models.StateClosed {
		return
	}
	pos.State = models.StateSelling

	fill, err := e.orders.MarketSell(ctx, pos.Symbol, pos.Quantity)
	if err != nil {
		// Stay in SELLING; the next poll retries the close. A dashboard
		// sees the stuck state and can intervene.
		e.recordFailure(ctx, models.EventOrderFailed, pos.Symbol, models.StageSell, err)
		return
	}

	now := time.Now()
	result, err := e.ledger.RecordSell(pos.Symbol, fill.Quantity, fill.Price, now)
	if err != nil {
		log.Printf("LEDGER ERROR: sell fill for %s not matched: %v", pos.Symbol, err)
		e.recordFailure(ctx, models.EventOrderFailed, pos.Symbol, models.StageSell, err)
		return
	}

	if e.lots != nil {
		remaining := make(map[int64]decimal.Decimal)
		for _, lot := range e.ledger.Lots(pos.Symbol) {
			remaining[lot.ID] = lot.QuantityRemaining
		}
		for _, match := range result.Matches {
			if err := e.lots.UpdateLotRemaining(pos.Symbol, match.LotID, remaining[match.LotID]); err != nil {
				log.Printf("Failed to mirror lot drain %s/%d: %v", pos.Symbol, match.LotID, err)
			}
		}
	}

	pos.Quantity = e.ledger.OpenQuantity(pos.Symbol)
	pos.State = models.StateClosed
	pos.ClosedAt = &now
	delete(e.positions, pos.Symbol)

	e.recent = append(e.recent, *pos)
	if len(e.recent) > recentClosedLimit {
		e.recent = e.recent[len(e.recent)-recentClosedLimit:]
	}

	log.Printf("Closed position: %s qty=%s exit=%s pnl=%s (%s%%)",
		pos.Symbol, fill.Quantity, fill.Price, result.RealizedPnl, result.RealizedPnlPct.StringFixed(2))

	e.sink.RecordTrade(ctx, &models.Trade{
		Symbol:         pos.Symbol,
		Side:           models.TradeSideSell,
		Quantity:       fill.Quantity,
		Price:          fill.Price,
		TotalValue:     result.Proceeds,
		RealizedPnl:    result.RealizedPnl,
		RealizedPnlPct: result.RealizedPnlPct,
		OrderID:        fill.OrderID,
		ExecutedAt:     now,
	})
}

// ClosePosition force-closes the open position for a symbol. Closing an
// unknown or already closed symbol is a no-op.
func (e *Engine) ClosePosition(ctx context.Context, symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos, ok := e.positions[symbol]
	if !ok {
		return
	}
	e.closePosition(ctx, pos)
}

// Positions returns a snapshot of open positions.
func (e *Engine) Positions() []models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, *pos)
	}
	return out
}

// RecentClosed returns a snapshot of recently closed positions, oldest
// first.
func (e *Engine) RecentClosed() []models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Position, len(e.recent))
	copy(out, e.recent)
	return out
}

func (e *Engine) recordFailure(ctx context.Context, eventType, symbol, stage string, err error) {
	log.Printf("%s failure for %q at %s: %v", eventType, symbol, stage, err)
	e.sink.RecordFailure(ctx, &models.FailureEvent{
		EventType:  eventType,
		Symbol:     symbol,
		Stage:      stage,
		Reason:     err.Error(),
		OccurredAt: time.Now(),
	})
}
