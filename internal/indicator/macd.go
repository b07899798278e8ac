package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/newthinker/pulse/internal/core"
)

// MACDResult holds the latest MACD values
type MACDResult struct {
	MACDLine  float64
	Signal    float64
	Histogram float64
	Trend     Trend
}

// MACD computes the fast/slow EMA difference and its signal line.
// Requires at least slow+signal-1 closes.
func MACD(closes []float64, fast, slow, signal int) (MACDResult, error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return MACDResult{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("macd: invalid periods %d/%d/%d", fast, slow, signal))
	}
	if err := requireLen("macd", len(closes), slow+signal-1); err != nil {
		return MACDResult{}, err
	}

	macdLine, signalLine, hist := talib.Macd(closes, fast, slow, signal)
	res := MACDResult{
		MACDLine:  last(macdLine),
		Signal:    last(signalLine),
		Histogram: last(hist),
	}
	if err := requireFinite("macd", res.MACDLine, res.Signal, res.Histogram); err != nil {
		return MACDResult{}, err
	}

	res.Trend = TrendBearish
	if res.Histogram > 0 {
		res.Trend = TrendBullish
	}
	return res, nil
}
