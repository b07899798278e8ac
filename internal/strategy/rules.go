package strategy

import (
	"fmt"

	"github.com/newthinker/pulse/internal/indicator"
)

type rule struct {
	name string
	eval func(Inputs) (Vote, bool)
}

// Evaluation order is part of the output: votes are listed in this order.
var rules = []rule{
	{"sentiment", scoreSentiment},
	{"rsi", scoreRSI},
	{"macd", scoreMACD},
	{"bollinger", scoreBollinger},
	{"obv", scoreOBV},
	{"vwap", scoreVWAP},
	{"sma", scoreSMACross},
	{"pi_cycle", scorePiCycle},
}

func scoreSentiment(in Inputs) (Vote, bool) {
	if in.Sentiment == nil {
		return Vote{}, false
	}
	v := in.Sentiment.Value
	switch {
	case v < 20:
		return Vote{Delta: 2, Reason: fmt.Sprintf("Sentiment %d: extreme fear, contrarian buy", v)}, true
	case v < 40:
		return Vote{Delta: 1, Reason: fmt.Sprintf("Sentiment %d: fear, accumulate", v)}, true
	case v > 80:
		return Vote{Delta: -2, Reason: fmt.Sprintf("Sentiment %d: extreme greed, contrarian sell", v)}, true
	case v > 60:
		return Vote{Delta: -1, Reason: fmt.Sprintf("Sentiment %d: greed, reduce", v)}, true
	}
	return Vote{}, false
}

func scoreRSI(in Inputs) (Vote, bool) {
	if in.RSI == nil {
		return Vote{}, false
	}
	switch rsi := *in.RSI; {
	case rsi < 30:
		return Vote{Delta: 1, Reason: fmt.Sprintf("RSI(14) %.2f below 30: oversold", rsi)}, true
	case rsi > 70:
		return Vote{Delta: -1, Reason: fmt.Sprintf("RSI(14) %.2f above 70: overbought", rsi)}, true
	}
	return Vote{}, false
}

func scoreMACD(in Inputs) (Vote, bool) {
	if in.MACD == nil {
		return Vote{}, false
	}
	h := in.MACD.Histogram
	if h > 0 {
		return Vote{Delta: 1, Reason: fmt.Sprintf("MACD histogram %+.4f: bullish momentum", h)}, true
	}
	return Vote{Delta: -1, Reason: fmt.Sprintf("MACD histogram %+.4f: bearish momentum", h)}, true
}

func scoreBollinger(in Inputs) (Vote, bool) {
	if in.Bollinger == nil {
		return Vote{}, false
	}
	switch in.Bollinger.Position {
	case indicator.PositionOversold:
		return Vote{Delta: 1, Reason: fmt.Sprintf("Price below lower Bollinger band %.2f: oversold", in.Bollinger.Lower)}, true
	case indicator.PositionOverbought:
		return Vote{Delta: -1, Reason: fmt.Sprintf("Price above upper Bollinger band %.2f: overbought", in.Bollinger.Upper)}, true
	}
	return Vote{}, false
}

func scoreOBV(in Inputs) (Vote, bool) {
	if in.OBV == nil {
		return Vote{}, false
	}
	if in.OBV.Trend == indicator.TrendRising {
		return Vote{Delta: 0.5, Reason: "OBV rising: volume confirms buying"}, true
	}
	return Vote{Delta: -0.5, Reason: "OBV falling: volume confirms selling"}, true
}

func scoreVWAP(in Inputs) (Vote, bool) {
	if in.VWAP == nil {
		return Vote{}, false
	}
	if in.VWAP.Position == indicator.PositionAbove {
		return Vote{Delta: 0.5, Reason: fmt.Sprintf("Price above VWAP %.2f", in.VWAP.Value)}, true
	}
	return Vote{Delta: -0.5, Reason: fmt.Sprintf("Price below VWAP %.2f", in.VWAP.Value)}, true
}

func scoreSMACross(in Inputs) (Vote, bool) {
	if in.SMA50 == nil || in.SMA200 == nil {
		return Vote{}, false
	}
	fast, slow := *in.SMA50, *in.SMA200
	switch {
	case fast > slow:
		return Vote{Delta: 0.8, Reason: fmt.Sprintf("SMA50 %.2f above SMA200 %.2f: uptrend", fast, slow)}, true
	case fast < slow:
		return Vote{Delta: -0.8, Reason: fmt.Sprintf("SMA50 %.2f below SMA200 %.2f: downtrend", fast, slow)}, true
	}
	return Vote{}, false
}

func scorePiCycle(in Inputs) (Vote, bool) {
	if in.PiCycle == nil || !in.PiCycle.IsTop {
		return Vote{}, false
	}
	return Vote{
		Delta:  -1.5,
		Reason: fmt.Sprintf("Pi Cycle Top: SMA111 %.2f >= 2xSMA350 %.2f", in.PiCycle.SMA111, in.PiCycle.SMA350x2),
	}, true
}
