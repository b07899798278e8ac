package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/newthinker/pulse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	return series(n, func(int) float64 { return v })
}

func wave(n int) []float64 {
	return series(n, func(i int) float64 { return 100 + 10*math.Sin(float64(i)/5) + float64(i)*0.1 })
}

func TestRSI_Bounds(t *testing.T) {
	rising := series(30, func(i int) float64 { return 100 + float64(i) })
	rsi, err := RSI(rising, RSIPeriod)
	require.NoError(t, err)
	assert.InDelta(t, 100, rsi, 1e-9)

	falling := series(30, func(i int) float64 { return 100 - float64(i) })
	rsi, err = RSI(falling, RSIPeriod)
	require.NoError(t, err)
	assert.InDelta(t, 0, rsi, 1e-9)

	rsi, err = RSI(wave(60), RSIPeriod)
	require.NoError(t, err)
	assert.Greater(t, rsi, 0.0)
	assert.Less(t, rsi, 100.0)
}

func TestRSI_NotEnoughData(t *testing.T) {
	_, err := RSI(wave(RSIPeriod), RSIPeriod)
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = RSI(wave(RSIPeriod+1), RSIPeriod)
	assert.NoError(t, err)
}

func TestRSI_FlatSeries(t *testing.T) {
	_, err := RSI(constant(30, 42), RSIPeriod)
	assert.ErrorIs(t, err, core.ErrNumericDegenerate)
}

func TestMACD_Trend(t *testing.T) {
	accelerating := series(60, func(i int) float64 { return 100 + float64(i*i) })
	res, err := MACD(accelerating, MACDFast, MACDSlow, MACDSignal)
	require.NoError(t, err)
	assert.Greater(t, res.MACDLine, 0.0)
	assert.Greater(t, res.Histogram, 0.0)
	assert.Equal(t, TrendBullish, res.Trend)
	assert.InDelta(t, res.MACDLine-res.Signal, res.Histogram, 1e-9)

	collapsing := series(60, func(i int) float64 { return 5000 - float64(i*i) })
	res, err = MACD(collapsing, MACDFast, MACDSlow, MACDSignal)
	require.NoError(t, err)
	assert.Less(t, res.Histogram, 0.0)
	assert.Equal(t, TrendBearish, res.Trend)
}

func TestMACD_NotEnoughData(t *testing.T) {
	need := MACDSlow + MACDSignal - 1

	_, err := MACD(wave(need-1), MACDFast, MACDSlow, MACDSignal)
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = MACD(wave(need), MACDFast, MACDSlow, MACDSignal)
	assert.NoError(t, err)
}

func TestBollinger_Position(t *testing.T) {
	spike := append(constant(19, 100), 200)
	res, err := Bollinger(spike, BollingerSize, BollingerWidth)
	require.NoError(t, err)
	// mean 105, population variance 475
	assert.InDelta(t, 105, res.Middle, 1e-9)
	assert.InDelta(t, 105+2*math.Sqrt(475), res.Upper, 1e-6)
	assert.InDelta(t, 105-2*math.Sqrt(475), res.Lower, 1e-6)
	assert.InDelta(t, (res.Upper-res.Lower)/res.Middle*100, res.BandwidthPct, 1e-9)
	assert.Equal(t, PositionOverbought, res.Position)

	drop := append(constant(19, 100), 50)
	res, err = Bollinger(drop, BollingerSize, BollingerWidth)
	require.NoError(t, err)
	assert.Equal(t, PositionOversold, res.Position)

	// alternating 100/102: mean 101, sigma 1, last close 102 inside the bands
	zigzag := series(40, func(i int) float64 { return 100 + float64(2*(i%2)) })
	res, err = Bollinger(zigzag, BollingerSize, BollingerWidth)
	require.NoError(t, err)
	assert.InDelta(t, 101, res.Middle, 1e-9)
	assert.Equal(t, PositionNeutral, res.Position)
}

func TestBollinger_Degenerate(t *testing.T) {
	_, err := Bollinger(wave(BollingerSize-1), BollingerSize, BollingerWidth)
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = Bollinger(constant(BollingerSize, 0), BollingerSize, BollingerWidth)
	assert.ErrorIs(t, err, core.ErrNumericDegenerate)
}

func TestOBV_Trend(t *testing.T) {
	res, err := OBV([]float64{10, 11, 12}, []float64{100, 200, 300})
	require.NoError(t, err)
	assert.Equal(t, 600.0, res.Value)
	assert.Equal(t, TrendRising, res.Trend)

	res, err = OBV([]float64{10, 11, 9}, []float64{100, 200, 300})
	require.NoError(t, err)
	assert.Equal(t, TrendFalling, res.Trend)
}

func TestOBV_InvalidInput(t *testing.T) {
	_, err := OBV([]float64{10}, []float64{100})
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = OBV([]float64{10, 11}, []float64{100})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestVWAP(t *testing.T) {
	res, err := VWAP([]float64{10, 20}, []float64{1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 17.5, res.Value, 1e-12)
	assert.Equal(t, PositionAbove, res.Position)

	res, err = VWAP([]float64{20, 10}, []float64{3, 1})
	require.NoError(t, err)
	assert.InDelta(t, 17.5, res.Value, 1e-12)
	assert.Equal(t, PositionBelow, res.Position)
}

func TestVWAP_Degenerate(t *testing.T) {
	_, err := VWAP([]float64{10, 20}, []float64{0, 0})
	assert.ErrorIs(t, err, core.ErrNumericDegenerate)

	_, err = VWAP(nil, nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestPiCycle(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := func(n int) []time.Time {
		out := make([]time.Time, n)
		for i := range out {
			out[i] = start.AddDate(0, 0, i)
		}
		return out
	}

	calm := core.PriceSeries{Closes: constant(PiCycleSlow, 100), Volumes: constant(PiCycleSlow, 1), Times: times(PiCycleSlow)}
	res, err := PiCycle(calm)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.SMA111, 1e-9)
	assert.InDelta(t, 200, res.SMA350x2, 1e-9)
	assert.False(t, res.IsTop)
	assert.Equal(t, start.AddDate(0, 0, PiCycleSlow-1), res.AsOf)

	closes := append(constant(PiCycleSlow-PiCycleFast, 10), constant(PiCycleFast, 1000)...)
	blowoff := core.PriceSeries{Closes: closes, Volumes: constant(len(closes), 1)}
	res, err = PiCycle(blowoff)
	require.NoError(t, err)
	assert.InDelta(t, 1000, res.SMA111, 1e-9)
	assert.True(t, res.IsTop)
	assert.True(t, res.AsOf.IsZero())
}

func TestPiCycle_NotEnoughData(t *testing.T) {
	short := core.PriceSeries{Closes: constant(PiCycleSlow-1, 100), Volumes: constant(PiCycleSlow-1, 1)}
	_, err := PiCycle(short)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestCompute_ShortSeries(t *testing.T) {
	snap := Compute(core.PriceSeries{Closes: []float64{1}, Volumes: []float64{1}})

	// VWAP is the only indicator defined on a single point
	assert.True(t, snap.VWAP.Ok())
	assert.Nil(t, snap.RSI.Ptr())
	assert.Len(t, snap.Failures(), 6)
	for _, f := range snap.Failures() {
		assert.ErrorIs(t, f.Err, core.ErrInsufficientData, f.Name)
	}
}

func TestCompute_FullSeries(t *testing.T) {
	closes := wave(SMALong + 1)
	snap := Compute(core.PriceSeries{Closes: closes, Volumes: constant(len(closes), 1000)})

	assert.Empty(t, snap.Failures())
	assert.Len(t, snap.Statuses(), 7)
	require.NotNil(t, snap.SMA200.Ptr())
	assert.True(t, almostEqual(*snap.SMA50.Ptr(), mean(closes[len(closes)-SMAShort:]), 1e-9))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
