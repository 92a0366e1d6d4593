package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position states. A position moves to StateMonitoring once the buy order
// fills, to StateSelling once the drawdown detector fires, and to
// StateClosed once the sell order fills. StateClosed is terminal; a new
// position may be opened for the same symbol afterward.
const (
	StateIdle       = "IDLE"
	StateMonitoring = "MONITORING"
	StateSelling    = "SELLING"
	StateClosed     = "CLOSED"
)

// Position represents one actively monitored holding of a single asset.
type Position struct {
	Symbol     string          `json:"symbol"`
	State      string          `json:"state"`
	Quantity   decimal.Decimal `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	OpenedAt   time.Time       `json:"opened_at"`

	// ApexPrice is the highest price observed since monitoring began.
	// BelowApexStreak counts consecutive samples strictly below the apex;
	// it resets whenever a sample at or above the apex is seen.
	ApexPrice       decimal.Decimal `json:"apex_price"`
	ApexAt          time.Time       `json:"apex_at"`
	BelowApexStreak int             `json:"below_apex_streak"`

	// SellThreshold is the number of consecutive below-apex samples that
	// triggers a sell. Fixed when the position opens so that config changes
	// mid-flight do not alter an in-progress countdown.
	SellThreshold int `json:"sell_threshold"`

	ClosedAt *time.Time `json:"closed_at,omitempty"`
}

// IsOpen reports whether the position still holds quantity to manage.
func (p *Position) IsOpen() bool {
	return p.State == StateMonitoring || p.State == StateSelling
}
