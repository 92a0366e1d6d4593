package models

import "time"

// Event types published to the statistics stream
const (
	EventTradeExecuted = "TRADE_EXECUTED"
	EventOrderFailed   = "ORDER_FAILED"
	EventDataFailed    = "MARKET_DATA_FAILED"
)

// TradeEvent is the stream envelope for an executed trade.
type TradeEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Trade     *Trade    `json:"trade,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FailureEvent records a failed port call observed by the engine. The engine
// keeps running; these exist so a dashboard can show that a position needs
// attention.
type FailureEvent struct {
	ID         int       `json:"id"`
	EventType  string    `json:"event_type"`
	Symbol     string    `json:"symbol"`
	Stage      string    `json:"stage"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Failure stages, named for the engine transition that was attempted.
const (
	StageBuy  = "buy"
	StageSell = "sell"
	StagePoll = "poll"
	StageScan = "scan"
)
