package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// HTTPProvider fetches prices and screener rows from a CoinGecko-style
// REST API.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider against the given base URL.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type priceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type coinRow struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketCap    decimal.Decimal `json:"market_cap"`
	Volume24h    decimal.Decimal `json:"volume_24h"`
	ListedAt     time.Time       `json:"listed_at"`
}

// GetPrice returns the current price for a symbol.
func (p *HTTPProvider) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/api/v1/price?symbol=%s", p.baseURL, url.QueryEscape(symbol))

	var resp priceResponse
	if err := p.getJSON(ctx, endpoint, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	if resp.Price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: zero price for %s", ErrPriceUnavailable, symbol)
	}
	return resp.Price, nil
}

// GetCandidates returns recently listed coins from the screener endpoint.
func (p *HTTPProvider) GetCandidates(ctx context.Context, criteria models.CandidateCriteria) ([]models.CoinSummary, error) {
	q := url.Values{}
	q.Set("max_age_hours", strconv.FormatFloat(criteria.MaxAgeHours, 'f', -1, 64))
	q.Set("min_market_cap", criteria.MinMarketCap.String())
	q.Set("min_volume_24h", criteria.MinVolume24h.String())
	endpoint := fmt.Sprintf("%s/api/v1/coins/new?%s", p.baseURL, q.Encode())

	var rows []coinRow
	if err := p.getJSON(ctx, endpoint, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	coins := make([]models.CoinSummary, 0, len(rows))
	for _, r := range rows {
		coins = append(coins, models.CoinSummary{
			Symbol:       r.Symbol,
			Name:         r.Name,
			CurrentPrice: r.CurrentPrice,
			MarketCap:    r.MarketCap,
			Volume24h:    r.Volume24h,
			ListedAt:     r.ListedAt,
		})
	}
	return coins, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
