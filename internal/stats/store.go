package stats

import (
	"context"
	"log"

	"github.com/coinsniper/coinsniper/internal/database"
	"github.com/coinsniper/coinsniper/internal/models"
)

// StoreSink persists trades and failure events to PostgreSQL. Like every
// sink, it swallows errors after logging them.
type StoreSink struct {
	db *database.DB
}

// NewStoreSink creates a sink backed by the given database.
func NewStoreSink(db *database.DB) *StoreSink {
	return &StoreSink{db: db}
}

func (s *StoreSink) RecordTrade(ctx context.Context, trade *models.Trade) {
	if err := s.db.CreateTrade(trade); err != nil {
		log.Printf("Failed to persist trade for %s: %v", trade.Symbol, err)
	}
}

func (s *StoreSink) RecordFailure(ctx context.Context, event *models.FailureEvent) {
	if err := s.db.CreateFailureEvent(event); err != nil {
		log.Printf("Failed to persist failure event for %s: %v", event.Symbol, err)
	}
}
