// Package indicator computes the technical indicators used by the report.
// Every function is pure and reports an uncomputable result as an error
// wrapping core.ErrInsufficientData or core.ErrNumericDegenerate.
package indicator

import (
	"fmt"
	"math"

	"github.com/newthinker/pulse/internal/core"
)

// Default parameters
const (
	RSIPeriod      = 14
	MACDFast       = 12
	MACDSlow       = 26
	MACDSignal     = 9
	BollingerSize  = 20
	BollingerWidth = 2.0
	SMAShort       = 50
	SMALong        = 200
	PiCycleFast    = 111
	PiCycleSlow    = 350
)

// Trend describes the direction of an indicator
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// Position describes where the last close sits relative to a level or band
type Position string

const (
	PositionOverbought Position = "overbought"
	PositionOversold   Position = "oversold"
	PositionNeutral    Position = "neutral"
	PositionAbove      Position = "above"
	PositionBelow      Position = "below"
)

func requireLen(name string, got, need int) error {
	if got < need {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: need %d points, got %d", name, need, got))
	}
	return nil
}

func requireFinite(name string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.WrapError(core.ErrNumericDegenerate, fmt.Errorf("%s: non-finite result", name))
		}
	}
	return nil
}

func last(values []float64) float64 {
	return values[len(values)-1]
}
