// Package stats is the write-only statistics sink: a durable log of trades
// and failure events. Recording is fire-and-forget; a sink failure is
// logged and must never block or fail the engine transition that emitted it.
package stats

import (
	"context"

	"github.com/coinsniper/coinsniper/internal/models"
)

// Sink receives trades and failure events from the engine.
type Sink interface {
	RecordTrade(ctx context.Context, trade *models.Trade)
	RecordFailure(ctx context.Context, event *models.FailureEvent)
}

// MultiSink fans out every record to all child sinks.
type MultiSink []Sink

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) MultiSink {
	return MultiSink(sinks)
}

func (m MultiSink) RecordTrade(ctx context.Context, trade *models.Trade) {
	for _, s := range m {
		s.RecordTrade(ctx, trade)
	}
}

func (m MultiSink) RecordFailure(ctx context.Context, event *models.FailureEvent) {
	for _, s := range m {
		s.RecordFailure(ctx, event)
	}
}

// NopSink discards everything. Useful in tests and when no sink is wired.
type NopSink struct{}

func (NopSink) RecordTrade(ctx context.Context, trade *models.Trade) {}

func (NopSink) RecordFailure(ctx context.Context, event *models.FailureEvent) {}
