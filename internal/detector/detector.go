// Package detector implements the peak-drawdown sell signal: track the
// highest observed price for a position and trigger once a configured
// number of consecutive samples come in below it.
package detector

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/coinsniper/coinsniper/internal/models"
)

// Signal is the outcome of observing one price sample.
type Signal int

const (
	// SignalContinue means the sample was below the apex but the streak has
	// not reached the threshold yet.
	SignalContinue Signal = iota
	// SignalNewApex means the sample set a new apex (or matched it) and the
	// streak was reset.
	SignalNewApex
	// SignalSellTrigger means the below-apex streak reached the threshold.
	SignalSellTrigger
)

func (s Signal) String() string {
	switch s {
	case SignalNewApex:
		return "NEW_APEX"
	case SignalSellTrigger:
		return "SELL_TRIGGER"
	default:
		return "CONTINUE"
	}
}

// Threshold converts a dwell time and polling interval into the number of
// consecutive below-apex samples required to trigger a sell, rounding up.
// Computed once at position open so config changes never alter an
// in-progress countdown.
func Threshold(dwell, poll time.Duration) int {
	if poll <= 0 {
		return 1
	}
	n := int((dwell + poll - 1) / poll)
	if n < 1 {
		n = 1
	}
	return n
}

// Observe feeds one price sample into the position's apex tracking and
// returns the resulting signal. A sample equal to the apex counts as NOT
// below it: ties favor holding. When the trigger fires the streak is reset,
// so a caller that ignores the signal does not get an immediate refire.
//
// Observe mutates only the position's apex fields; it performs no I/O.
func Observe(p *models.Position, price decimal.Decimal, now time.Time) Signal {
	if price.GreaterThanOrEqual(p.ApexPrice) {
		p.ApexPrice = price
		p.ApexAt = now
		p.BelowApexStreak = 0
		return SignalNewApex
	}

	p.BelowApexStreak++
	if p.BelowApexStreak >= p.SellThreshold {
		p.BelowApexStreak = 0
		return SignalSellTrigger
	}
	return SignalContinue
}
