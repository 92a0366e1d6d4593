package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestRecordBuy(t *testing.T) {
	t.Run("appends lots in order", func(t *testing.T) {
		l := New()
		now := time.Now()

		lot1, err := l.RecordBuy("NEWCOIN", d("10"), d("100"), now)
		require.NoError(t, err)
		lot2, err := l.RecordBuy("NEWCOIN", d("5"), d("120"), now.Add(time.Second))
		require.NoError(t, err)

		assert.Equal(t, int64(1), lot1.ID)
		assert.Equal(t, int64(2), lot2.ID)
		assert.True(t, lot1.QuantityRemaining.Equal(d("10")))
		assert.True(t, l.OpenQuantity("NEWCOIN").Equal(d("15")))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		l := New()

		_, err := l.RecordBuy("NEWCOIN", decimal.Zero, d("100"), time.Now())
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = l.RecordBuy("NEWCOIN", d("-1"), d("100"), time.Now())
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		l := New()

		_, err := l.RecordBuy("NEWCOIN", d("1"), decimal.Zero, time.Now())
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("orders lots by timestamp not arrival", func(t *testing.T) {
		l := New()
		now := time.Now()

		_, err := l.RecordBuy("NEWCOIN", d("5"), d("120"), now.Add(time.Minute))
		require.NoError(t, err)
		_, err = l.RecordBuy("NEWCOIN", d("10"), d("100"), now)
		require.NoError(t, err)

		// The earlier lot must be consumed first despite arriving second.
		result, err := l.RecordSell("NEWCOIN", d("10"), d("150"), now.Add(2*time.Minute))
		require.NoError(t, err)
		require.Len(t, result.Matches, 1)
		assert.True(t, result.Matches[0].UnitPrice.Equal(d("100")))
	})
}

func TestRecordSell(t *testing.T) {
	t.Run("matches FIFO across lots", func(t *testing.T) {
		l := New()
		now := time.Now()

		_, err := l.RecordBuy("NEWCOIN", d("10"), d("100"), now)
		require.NoError(t, err)
		_, err = l.RecordBuy("NEWCOIN", d("5"), d("120"), now.Add(time.Second))
		require.NoError(t, err)

		result, err := l.RecordSell("NEWCOIN", d("12"), d("150"), now.Add(time.Minute))
		require.NoError(t, err)

		// 10 @ 100 + 2 @ 120 = 1240 cost basis against 12 @ 150 = 1800.
		assert.True(t, result.CostBasis.Equal(d("1240")), "cost basis was %s", result.CostBasis)
		assert.True(t, result.Proceeds.Equal(d("1800")))
		assert.True(t, result.RealizedPnl.Equal(d("560")))

		require.Len(t, result.Matches, 2)
		assert.Equal(t, int64(1), result.Matches[0].LotID)
		assert.True(t, result.Matches[0].Quantity.Equal(d("10")))
		assert.Equal(t, int64(2), result.Matches[1].LotID)
		assert.True(t, result.Matches[1].Quantity.Equal(d("2")))

		assert.True(t, l.OpenQuantity("NEWCOIN").Equal(d("3")))
	})

	t.Run("computes pnl percentage from cost basis", func(t *testing.T) {
		l := New()
		now := time.Now()

		_, err := l.RecordBuy("NEWCOIN", d("10"), d("100"), now)
		require.NoError(t, err)

		result, err := l.RecordSell("NEWCOIN", d("10"), d("125"), now.Add(time.Minute))
		require.NoError(t, err)

		assert.True(t, result.RealizedPnl.Equal(d("250")))
		assert.True(t, result.RealizedPnlPct.Equal(d("25")), "pct was %s", result.RealizedPnlPct)
		assert.True(t, result.EntryPrice.Equal(d("100")))
	})

	t.Run("oversell mutates nothing", func(t *testing.T) {
		l := New()
		now := time.Now()

		_, err := l.RecordBuy("NEWCOIN", d("10"), d("100"), now)
		require.NoError(t, err)

		_, err = l.RecordSell("NEWCOIN", d("11"), d("150"), now.Add(time.Minute))
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		// The failed sell must leave the lot untouched.
		assert.True(t, l.OpenQuantity("NEWCOIN").Equal(d("10")))
		lots := l.Lots("NEWCOIN")
		require.Len(t, lots, 1)
		assert.True(t, lots[0].QuantityRemaining.Equal(d("10")))
	})

	t.Run("sell with no lots fails", func(t *testing.T) {
		l := New()

		_, err := l.RecordSell("GHOST", d("1"), d("100"), time.Now())
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		l := New()

		_, err := l.RecordSell("NEWCOIN", decimal.Zero, d("100"), time.Now())
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("drains the book exactly", func(t *testing.T) {
		l := New()
		now := time.Now()

		_, err := l.RecordBuy("NEWCOIN", d("3"), d("10"), now)
		require.NoError(t, err)
		_, err = l.RecordBuy("NEWCOIN", d("7"), d("20"), now.Add(time.Second))
		require.NoError(t, err)

		result, err := l.RecordSell("NEWCOIN", d("10"), d("30"), now.Add(time.Minute))
		require.NoError(t, err)

		assert.True(t, result.CostBasis.Equal(d("170")))
		assert.True(t, l.OpenQuantity("NEWCOIN").IsZero())

		// Further sells must fail once the book is empty.
		_, err = l.RecordSell("NEWCOIN", d("0.0001"), d("30"), now.Add(2*time.Minute))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})
}

func TestRecordSellRandomized(t *testing.T) {
	// Cross-check FIFO matching against an independent reference walk over
	// many random buy/sell sequences.
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		l := New()
		now := time.Now()

		type refLot struct {
			qty   decimal.Decimal
			price decimal.Decimal
		}
		var ref []refLot
		total := decimal.Zero

		nBuys := 1 + rng.Intn(6)
		for i := 0; i < nBuys; i++ {
			qty := decimal.NewFromInt(int64(1 + rng.Intn(100)))
			price := decimal.NewFromInt(int64(1 + rng.Intn(500)))
			_, err := l.RecordBuy("NEWCOIN", qty, price, now.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			ref = append(ref, refLot{qty: qty, price: price})
			total = total.Add(qty)
		}

		sellQty := decimal.NewFromInt(int64(1 + rng.Intn(int(total.IntPart()))))
		sellPrice := decimal.NewFromInt(int64(1 + rng.Intn(500)))

		result, err := l.RecordSell("NEWCOIN", sellQty, sellPrice, now.Add(time.Hour))
		require.NoError(t, err)

		// Reference FIFO walk.
		wantCost := decimal.Zero
		remaining := sellQty
		for _, lot := range ref {
			if remaining.IsZero() {
				break
			}
			take := decimal.Min(lot.qty, remaining)
			wantCost = wantCost.Add(take.Mul(lot.price))
			remaining = remaining.Sub(take)
		}

		require.True(t, result.CostBasis.Equal(wantCost),
			"trial %d: cost basis %s, want %s", trial, result.CostBasis, wantCost)
		require.True(t, result.RealizedPnl.Equal(sellQty.Mul(sellPrice).Sub(wantCost)))
		require.True(t, l.OpenQuantity("NEWCOIN").Equal(total.Sub(sellQty)))
	}
}

func TestWeightedAveragePrice(t *testing.T) {
	t.Run("weights by remaining quantity", func(t *testing.T) {
		l := New()
		now := time.Now()

		_, err := l.RecordBuy("NEWCOIN", d("10"), d("100"), now)
		require.NoError(t, err)
		_, err = l.RecordBuy("NEWCOIN", d("10"), d("200"), now.Add(time.Second))
		require.NoError(t, err)

		assert.True(t, l.WeightedAveragePrice("NEWCOIN").Equal(d("150")))

		// Draining the cheap lot shifts the average to the remaining one.
		_, err = l.RecordSell("NEWCOIN", d("10"), d("150"), now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, l.WeightedAveragePrice("NEWCOIN").Equal(d("200")))
	})

	t.Run("zero when empty", func(t *testing.T) {
		l := New()
		assert.True(t, l.WeightedAveragePrice("GHOST").IsZero())
	})
}

func TestSymbolsIsolated(t *testing.T) {
	l := New()
	now := time.Now()

	_, err := l.RecordBuy("AAA", d("10"), d("100"), now)
	require.NoError(t, err)
	_, err = l.RecordBuy("BBB", d("20"), d("50"), now)
	require.NoError(t, err)

	_, err = l.RecordSell("AAA", d("10"), d("110"), now.Add(time.Minute))
	require.NoError(t, err)

	assert.True(t, l.OpenQuantity("AAA").IsZero())
	assert.True(t, l.OpenQuantity("BBB").Equal(d("20")))
}
