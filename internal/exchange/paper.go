package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/market"
)

// PaperClient simulates an exchange account: orders fill instantly at the
// market provider's current price and move a simulated quote balance.
type PaperClient struct {
	mu      sync.Mutex
	prices  market.Provider
	quote   decimal.Decimal
	nextID  int64
	holding map[string]decimal.Decimal
}

// NewPaperClient creates a paper account funded with startingQuote.
func NewPaperClient(prices market.Provider, startingQuote decimal.Decimal) *PaperClient {
	return &PaperClient{
		prices:  prices,
		quote:   startingQuote,
		nextID:  1,
		holding: make(map[string]decimal.Decimal),
	}
}

// MarketBuy fills at the current market price, debiting the quote balance.
func (p *PaperClient) MarketBuy(ctx context.Context, symbol string, quoteAmount decimal.Decimal) (*Fill, error) {
	if quoteAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: non-positive quote amount", ErrOrderRejected)
	}

	price, err := p.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: no fill price: %v", ErrOrderRejected, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if quoteAmount.GreaterThan(p.quote) {
		return nil, fmt.Errorf("%w: insufficient quote balance %s", ErrOrderRejected, p.quote)
	}

	quantity := quoteAmount.Div(price)
	p.quote = p.quote.Sub(quoteAmount)
	p.holding[symbol] = p.holding[symbol].Add(quantity)

	return p.fill(symbol, quantity, price), nil
}

// MarketSell fills at the current market price, crediting the quote balance.
func (p *PaperClient) MarketSell(ctx context.Context, symbol string, quantity decimal.Decimal) (*Fill, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: non-positive quantity", ErrOrderRejected)
	}

	price, err := p.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: no fill price: %v", ErrOrderRejected, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if quantity.GreaterThan(p.holding[symbol]) {
		return nil, fmt.Errorf("%w: insufficient %s holding %s", ErrOrderRejected, symbol, p.holding[symbol])
	}

	p.holding[symbol] = p.holding[symbol].Sub(quantity)
	p.quote = p.quote.Add(quantity.Mul(price))

	return p.fill(symbol, quantity, price), nil
}

// QuoteBalance returns the simulated quote balance.
func (p *PaperClient) QuoteBalance(ctx context.Context) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quote, nil
}

// Holding returns the simulated base holding for a symbol.
func (p *PaperClient) Holding(symbol string) decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.holding[symbol]
}

func (p *PaperClient) fill(symbol string, quantity, price decimal.Decimal) *Fill {
	f := &Fill{
		OrderID:  fmt.Sprintf("paper-%d", p.nextID),
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
	}
	p.nextID++
	return f
}
