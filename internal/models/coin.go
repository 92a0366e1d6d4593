package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoinSummary is a screener row for a recently listed coin.
type CoinSummary struct {
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name,omitempty"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketCap    decimal.Decimal `json:"market_cap"`
	Volume24h    decimal.Decimal `json:"volume_24h"`
	ListedAt     time.Time       `json:"listed_at"`
}

// AgeHours returns how long the coin has been listed as of now.
func (c *CoinSummary) AgeHours(now time.Time) float64 {
	return now.Sub(c.ListedAt).Hours()
}

// CandidateCriteria are the thresholds a coin must meet to qualify for a buy.
type CandidateCriteria struct {
	MaxAgeHours  float64
	MinMarketCap decimal.Decimal
	MinVolume24h decimal.Decimal
}

// Qualifies reports whether the coin meets all buy criteria.
func (c *CoinSummary) Qualifies(criteria CandidateCriteria, now time.Time) bool {
	if c.AgeHours(now) > criteria.MaxAgeHours {
		return false
	}
	if c.MarketCap.LessThan(criteria.MinMarketCap) {
		return false
	}
	if c.Volume24h.LessThan(criteria.MinVolume24h) {
		return false
	}
	return true
}
