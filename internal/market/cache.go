package market

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// CachedProvider wraps a Provider with a Redis price cache so that poll
// loops and the API do not hammer the upstream for the same symbol.
// Candidate screening always goes to the upstream.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedProvider wraps inner with a Redis cache using the given TTL.
func NewCachedProvider(inner Provider, rdb *redis.Client, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// GetPrice returns a cached price when fresh, otherwise fetches from the
// upstream and caches the result. Cache failures fall through to the
// upstream; a stale cache must never mask a live price.
func (c *CachedProvider) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	val, err := c.rdb.Get(ctx, priceKey(symbol)).Result()
	if err == nil {
		price, perr := decimal.NewFromString(val)
		if perr == nil {
			return price, nil
		}
		log.Printf("Discarding malformed cached price for %s: %v", symbol, perr)
	} else if err != redis.Nil {
		log.Printf("Price cache read failed for %s: %v", symbol, err)
	}

	price, err := c.inner.GetPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.rdb.Set(ctx, priceKey(symbol), price.String(), c.ttl).Err(); err != nil {
		log.Printf("Price cache write failed for %s: %v", symbol, err)
	}
	return price, nil
}

// GetCandidates delegates to the upstream provider.
func (c *CachedProvider) GetCandidates(ctx context.Context, criteria models.CandidateCriteria) ([]models.CoinSummary, error) {
	return c.inner.GetCandidates(ctx, criteria)
}

// Invalidate drops the cached price for a symbol. Called after fills so the
// next poll reflects the post-trade market.
func (c *CachedProvider) Invalidate(ctx context.Context, symbol string) error {
	if err := c.rdb.Del(ctx, priceKey(symbol)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate price cache for %s: %w", symbol, err)
	}
	return nil
}
