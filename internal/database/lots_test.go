package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsniper/coinsniper/internal/models"
)

func TestLotsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	newLot := func(symbol string, seq int64, qty, price float64, openedAt time.Time) *models.BuyLot {
		return &models.BuyLot{
			ID:                seq,
			Symbol:            symbol,
			QuantityOriginal:  decimal.NewFromFloat(qty),
			QuantityRemaining: decimal.NewFromFloat(qty),
			UnitPrice:         decimal.NewFromFloat(price),
			OpenedAt:          openedAt,
			CreatedAt:         time.Now(),
		}
	}

	t.Run("CreateBuyLot persists the lot", func(t *testing.T) {
		testDB.TruncateAll(t)

		lot := newLot("NEWCOIN", 1, 100, 10, time.Now())
		require.NoError(t, testDB.CreateBuyLot(lot))

		lots, err := testDB.GetLotsBySymbol("NEWCOIN")
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.Equal(t, int64(1), lots[0].ID)
		assert.True(t, lots[0].QuantityRemaining.Equal(decimal.NewFromFloat(100)))
		assert.True(t, lots[0].UnitPrice.Equal(decimal.NewFromFloat(10)))
	})

	t.Run("duplicate lot_seq per symbol is rejected", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateBuyLot(newLot("NEWCOIN", 1, 100, 10, time.Now())))
		err := testDB.CreateBuyLot(newLot("NEWCOIN", 1, 50, 12, time.Now()))
		assert.Error(t, err)

		// The same sequence on another symbol is fine.
		assert.NoError(t, testDB.CreateBuyLot(newLot("OTHER", 1, 50, 12, time.Now())))
	})

	t.Run("UpdateLotRemaining drains a lot", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateBuyLot(newLot("NEWCOIN", 1, 100, 10, time.Now())))

		err := testDB.UpdateLotRemaining("NEWCOIN", 1, decimal.NewFromFloat(40))
		require.NoError(t, err)

		lots, err := testDB.GetLotsBySymbol("NEWCOIN")
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.True(t, lots[0].QuantityRemaining.Equal(decimal.NewFromFloat(40)))
		assert.True(t, lots[0].QuantityOriginal.Equal(decimal.NewFromFloat(100)))
	})

	t.Run("UpdateLotRemaining fails on unknown lot", func(t *testing.T) {
		testDB.TruncateAll(t)

		err := testDB.UpdateLotRemaining("GHOST", 99, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("GetLotsBySymbol returns FIFO order", func(t *testing.T) {
		testDB.TruncateAll(t)

		base := time.Now().Add(-time.Hour)
		require.NoError(t, testDB.CreateBuyLot(newLot("NEWCOIN", 2, 50, 12, base.Add(time.Minute))))
		require.NoError(t, testDB.CreateBuyLot(newLot("NEWCOIN", 1, 100, 10, base)))

		lots, err := testDB.GetLotsBySymbol("NEWCOIN")
		require.NoError(t, err)
		require.Len(t, lots, 2)
		assert.Equal(t, int64(1), lots[0].ID)
		assert.Equal(t, int64(2), lots[1].ID)
	})

	t.Run("GetOpenQuantity sums remaining", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateBuyLot(newLot("NEWCOIN", 1, 100, 10, time.Now())))
		require.NoError(t, testDB.CreateBuyLot(newLot("NEWCOIN", 2, 50, 12, time.Now())))
		require.NoError(t, testDB.UpdateLotRemaining("NEWCOIN", 1, decimal.Zero))

		total, err := testDB.GetOpenQuantity("NEWCOIN")
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromFloat(50)))
	})

	t.Run("GetOpenQuantity zero when no lots", func(t *testing.T) {
		testDB.TruncateAll(t)

		total, err := testDB.GetOpenQuantity("GHOST")
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestFailureEventsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreateFailureEvent assigns an id", func(t *testing.T) {
		testDB.TruncateAll(t)

		event := &models.FailureEvent{
			EventType:  models.EventOrderFailed,
			Symbol:     "NEWCOIN",
			Stage:      models.StageSell,
			Reason:     "order rejected",
			OccurredAt: time.Now(),
		}
		require.NoError(t, testDB.CreateFailureEvent(event))
		assert.NotZero(t, event.ID)
	})

	t.Run("GetRecentFailureEvents newest first with limit", func(t *testing.T) {
		testDB.TruncateAll(t)

		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			event := &models.FailureEvent{
				EventType:  models.EventDataFailed,
				Symbol:     "NEWCOIN",
				Stage:      models.StagePoll,
				Reason:     "feed timeout",
				OccurredAt: base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, testDB.CreateFailureEvent(event))
		}

		events, err := testDB.GetRecentFailureEvents(3)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.True(t, events[0].OccurredAt.After(events[1].OccurredAt))
	})
}
