package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/newthinker/pulse/internal/core"
)

// RSI returns the most recent Wilder-smoothed relative strength index.
// Requires at least period+1 closes.
func RSI(closes []float64, period int) (float64, error) {
	if period < 2 {
		return 0, core.WrapError(core.ErrInsufficientData, fmt.Errorf("rsi: invalid period %d", period))
	}
	if err := requireLen("rsi", len(closes), period+1); err != nil {
		return 0, err
	}
	if flat(closes) {
		// no gains and no losses: RS is 0/0
		return 0, core.WrapError(core.ErrNumericDegenerate, fmt.Errorf("rsi: price series is flat"))
	}

	rsi := last(talib.Rsi(closes, period))
	if err := requireFinite("rsi", rsi); err != nil {
		return 0, err
	}
	return rsi, nil
}

func flat(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
