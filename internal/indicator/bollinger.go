package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/newthinker/pulse/internal/core"
)

// BollingerResult holds the latest band values
type BollingerResult struct {
	Upper        float64
	Middle       float64
	Lower        float64
	BandwidthPct float64
	Position     Position
}

// Bollinger computes SMA(period) bands at stdDev population deviations
func Bollinger(closes []float64, period int, stdDev float64) (BollingerResult, error) {
	if period < 2 || stdDev <= 0 {
		return BollingerResult{}, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("bollinger: invalid parameters %d/%.2f", period, stdDev))
	}
	if err := requireLen("bollinger", len(closes), period); err != nil {
		return BollingerResult{}, err
	}

	upper, middle, lower := talib.BBands(closes, period, stdDev, stdDev, talib.SMA)
	res := BollingerResult{
		Upper:  last(upper),
		Middle: last(middle),
		Lower:  last(lower),
	}
	if res.Middle == 0 {
		return BollingerResult{}, core.WrapError(core.ErrNumericDegenerate, fmt.Errorf("bollinger: zero middle band"))
	}
	res.BandwidthPct = (res.Upper - res.Lower) / res.Middle * 100
	if err := requireFinite("bollinger", res.Upper, res.Middle, res.Lower, res.BandwidthPct); err != nil {
		return BollingerResult{}, err
	}

	switch price := last(closes); {
	case price > res.Upper:
		res.Position = PositionOverbought
	case price < res.Lower:
		res.Position = PositionOversold
	default:
		res.Position = PositionNeutral
	}
	return res, nil
}
