package indicator

import (
	"fmt"

	"github.com/markcheno/go-talib"
	"github.com/newthinker/pulse/internal/core"
)

// OBVResult holds the latest On-Balance-Volume value
type OBVResult struct {
	Value float64
	Trend Trend
}

// VWAPResult holds the volume weighted average price over the whole window
type VWAPResult struct {
	Value    float64
	Position Position
}

func requireVolumes(name string, closes, volumes []float64) error {
	if len(closes) != len(volumes) {
		return core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("%s: closes/volumes length mismatch %d vs %d", name, len(closes), len(volumes)))
	}
	return nil
}

// OBV computes the cumulative volume-direction line; the trend compares
// the last two values.
func OBV(closes, volumes []float64) (OBVResult, error) {
	if err := requireVolumes("obv", closes, volumes); err != nil {
		return OBVResult{}, err
	}
	if err := requireLen("obv", len(closes), 2); err != nil {
		return OBVResult{}, err
	}

	obv := talib.Obv(closes, volumes)
	curr, prev := obv[len(obv)-1], obv[len(obv)-2]
	if err := requireFinite("obv", curr, prev); err != nil {
		return OBVResult{}, err
	}

	res := OBVResult{Value: curr, Trend: TrendFalling}
	if curr > prev {
		res.Trend = TrendRising
	}
	return res, nil
}

// VWAP computes sum(close*volume)/sum(volume); the last close strictly
// above it is PositionAbove, anything else PositionBelow.
func VWAP(closes, volumes []float64) (VWAPResult, error) {
	if err := requireVolumes("vwap", closes, volumes); err != nil {
		return VWAPResult{}, err
	}
	if err := requireLen("vwap", len(closes), 1); err != nil {
		return VWAPResult{}, err
	}

	var pv, v float64
	for i := range closes {
		pv += closes[i] * volumes[i]
		v += volumes[i]
	}
	if v == 0 {
		return VWAPResult{}, core.WrapError(core.ErrNumericDegenerate, fmt.Errorf("vwap: zero total volume"))
	}

	res := VWAPResult{Value: pv / v, Position: PositionBelow}
	if err := requireFinite("vwap", res.Value); err != nil {
		return VWAPResult{}, err
	}
	if last(closes) > res.Value {
		res.Position = PositionAbove
	}
	return res, nil
}
