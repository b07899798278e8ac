package indicator

import (
	"time"

	"github.com/newthinker/pulse/internal/core"
)

// PiCycleResult compares the 111-day SMA against twice the 350-day SMA
type PiCycleResult struct {
	SMA111   float64
	SMA350x2 float64
	IsTop    bool
	AsOf     time.Time
}

// PiCycle evaluates the Pi Cycle Top on a long daily history.
// Requires at least 350 closes.
func PiCycle(series core.PriceSeries) (PiCycleResult, error) {
	if err := requireLen("pi_cycle", series.Len(), PiCycleSlow); err != nil {
		return PiCycleResult{}, err
	}

	fast, err := LastSMA(series.Closes, PiCycleFast)
	if err != nil {
		return PiCycleResult{}, err
	}
	slow, err := LastSMA(series.Closes, PiCycleSlow)
	if err != nil {
		return PiCycleResult{}, err
	}

	res := PiCycleResult{
		SMA111:   fast,
		SMA350x2: slow * 2,
		AsOf:     series.LastTime(),
	}
	res.IsTop = res.SMA111 >= res.SMA350x2
	return res, nil
}
