package indicator

import "github.com/newthinker/pulse/internal/core"

// Outcome is either a computed value or the reason it is absent
type Outcome[T any] struct {
	Value T
	Err   error
}

// NewOutcome wraps a (value, error) pair
func NewOutcome[T any](v T, err error) Outcome[T] {
	if err != nil {
		var zero T
		return Outcome[T]{Value: zero, Err: err}
	}
	return Outcome[T]{Value: v}
}

// Ok reports whether the value is present
func (o Outcome[T]) Ok() bool {
	return o.Err == nil
}

// Ptr returns the value, or nil when absent
func (o Outcome[T]) Ptr() *T {
	if o.Err != nil {
		return nil
	}
	v := o.Value
	return &v
}

// Status is the availability of one named indicator
type Status struct {
	Name string
	Err  error
}

// Snapshot bundles every indicator computed from the primary series
type Snapshot struct {
	RSI       Outcome[float64]
	MACD      Outcome[MACDResult]
	Bollinger Outcome[BollingerResult]
	OBV       Outcome[OBVResult]
	VWAP      Outcome[VWAPResult]
	SMA50     Outcome[float64]
	SMA200    Outcome[float64]
}

// Compute runs every indicator with default parameters
func Compute(series core.PriceSeries) Snapshot {
	closes, volumes := series.Closes, series.Volumes
	return Snapshot{
		RSI:       NewOutcome(RSI(closes, RSIPeriod)),
		MACD:      NewOutcome(MACD(closes, MACDFast, MACDSlow, MACDSignal)),
		Bollinger: NewOutcome(Bollinger(closes, BollingerSize, BollingerWidth)),
		OBV:       NewOutcome(OBV(closes, volumes)),
		VWAP:      NewOutcome(VWAP(closes, volumes)),
		SMA50:     NewOutcome(LastSMA(closes, SMAShort)),
		SMA200:    NewOutcome(LastSMA(closes, SMALong)),
	}
}

// Statuses lists every indicator in report order
func (s Snapshot) Statuses() []Status {
	return []Status{
		{Name: "rsi", Err: s.RSI.Err},
		{Name: "macd", Err: s.MACD.Err},
		{Name: "bollinger", Err: s.Bollinger.Err},
		{Name: "obv", Err: s.OBV.Err},
		{Name: "vwap", Err: s.VWAP.Err},
		{Name: "sma50", Err: s.SMA50.Err},
		{Name: "sma200", Err: s.SMA200.Err},
	}
}

// Failures returns only the absent indicators
func (s Snapshot) Failures() []Status {
	var out []Status
	for _, st := range s.Statuses() {
		if st.Err != nil {
			out = append(out, st)
		}
	}
	return out
}
