// Package strategy combines sentiment and indicator readings into a single
// weighted score and recommendation.
package strategy

import (
	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/indicator"
)

// Recommendation thresholds
const (
	StrongBuyAbove  = 2.3
	BuyAbove        = 0.7
	StrongSellBelow = -2.3
	SellBelow       = -0.7
)

// Inputs holds everything the aggregator can vote on. A nil field is an
// absent input and contributes nothing.
type Inputs struct {
	Sentiment *core.SentimentReading
	RSI       *float64
	MACD      *indicator.MACDResult
	Bollinger *indicator.BollingerResult
	OBV       *indicator.OBVResult
	VWAP      *indicator.VWAPResult
	SMA50     *float64
	SMA200    *float64
	PiCycle   *indicator.PiCycleResult
}

// InputsFromSnapshot turns computed outcomes into aggregator inputs, treating
// every failed outcome as absent.
func InputsFromSnapshot(reading *core.SentimentReading, snap indicator.Snapshot, pi indicator.Outcome[indicator.PiCycleResult]) Inputs {
	return Inputs{
		Sentiment: reading,
		RSI:       snap.RSI.Ptr(),
		MACD:      snap.MACD.Ptr(),
		Bollinger: snap.Bollinger.Ptr(),
		OBV:       snap.OBV.Ptr(),
		VWAP:      snap.VWAP.Ptr(),
		SMA50:     snap.SMA50.Ptr(),
		SMA200:    snap.SMA200.Ptr(),
		PiCycle:   pi.Ptr(),
	}
}

// Vote is a single triggered rule
type Vote struct {
	Rule   string
	Delta  float64
	Reason string
}

// Score is the aggregated result
type Score struct {
	Value  float64
	Action core.Action
	Votes  []Vote
}

// Signals returns the reasons of every vote in evaluation order
func (s Score) Signals() []string {
	out := make([]string, len(s.Votes))
	for i, v := range s.Votes {
		out[i] = v.Reason
	}
	return out
}

// Aggregate runs every rule in order and sums the triggered deltas
func Aggregate(in Inputs) Score {
	score := Score{Votes: []Vote{}}
	for _, r := range rules {
		v, ok := r.eval(in)
		if !ok {
			continue
		}
		v.Rule = r.name
		score.Value += v.Delta
		score.Votes = append(score.Votes, v)
	}
	score.Action = Recommend(score.Value)
	return score
}

// Recommend buckets a score into one of the five actions
func Recommend(score float64) core.Action {
	switch {
	case score > StrongBuyAbove:
		return core.ActionStrongBuy
	case score > BuyAbove:
		return core.ActionBuy
	case score < StrongSellBelow:
		return core.ActionStrongSell
	case score < SellBelow:
		return core.ActionSell
	default:
		return core.ActionHold
	}
}
