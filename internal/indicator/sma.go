package indicator

import (
	"fmt"

	"github.com/newthinker/pulse/internal/core"
)

// SMA calculates Simple Moving Average
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	// Calculate first SMA
	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// LastSMA returns the mean of exactly the last period prices. Unlike the
// tail of SMA it sums the window directly, so values outside the window
// cannot leak in through rolling-sum rounding.
func LastSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, core.WrapError(core.ErrInsufficientData, fmt.Errorf("sma: invalid period %d", period))
	}
	if err := requireLen("sma", len(prices), period); err != nil {
		return 0, err
	}

	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	mean := sum / float64(period)
	if err := requireFinite("sma", mean); err != nil {
		return 0, err
	}
	return mean, nil
}
