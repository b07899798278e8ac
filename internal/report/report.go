// Package report renders a run's results as sectioned text and publishes it
// to the console and the report archive.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/indicator"
	"github.com/newthinker/pulse/internal/strategy"
)

const (
	timeLayout   = "2006-01-02 15:04:05 UTC"
	dateLayout   = "2006-01-02"
	notAvailable = "N/A"
)

// RSI display bands
const (
	rsiOversold   = 30
	rsiOverbought = 70
)

// Report is everything one run produced
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Sentiment   core.SentimentReading
	LastClose   float64
	LastVolume  float64
	Snapshot    indicator.Snapshot
	PiCycle     indicator.Outcome[indicator.PiCycleResult]
	Score       strategy.Score
}

// Render formats the report. Console and file output both come from this
// function, so they are byte identical.
func Render(r Report) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("BTC Market Pulse  %s", r.GeneratedAt.UTC().Format(timeLayout))
	if r.RunID != "" {
		line("Run: %s", r.RunID)
	}

	line("")
	line("[Sentiment]")
	line("Fear & Greed Index: %d (%s)", r.Sentiment.Value, r.Sentiment.Classification.Title())
	line("Updated: %s", formatTime(r.Sentiment.ObservedAt, timeLayout))

	snap := r.Snapshot
	line("")
	line("[Indicators]")
	line("Price: $%s", money(r.LastClose))
	line("Volume (24h): $%.2fB", r.LastVolume/1e9)

	if v := snap.RSI; v.Ok() {
		line("RSI(14): %.2f -> %s", v.Value, rsiPosition(v.Value))
	} else {
		line("RSI(14): %s", notAvailable)
	}

	if v := snap.MACD; v.Ok() {
		line("MACD(12,26,9): line %.4f, signal %.4f, histogram %+.4f -> %s",
			v.Value.MACDLine, v.Value.Signal, v.Value.Histogram, v.Value.Trend)
	} else {
		line("MACD(12,26,9): %s", notAvailable)
	}

	if v := snap.Bollinger; v.Ok() {
		line("Bollinger(20,2): upper $%s, middle $%s, lower $%s, bandwidth %.2f%% -> %s",
			money(v.Value.Upper), money(v.Value.Middle), money(v.Value.Lower),
			v.Value.BandwidthPct, v.Value.Position)
	} else {
		line("Bollinger(20,2): %s", notAvailable)
	}

	if v := snap.OBV; v.Ok() {
		line("OBV: %s -> %s", humanize.FormatFloat("#,###.", v.Value.Value), v.Value.Trend)
	} else {
		line("OBV: %s", notAvailable)
	}

	if v := snap.VWAP; v.Ok() {
		line("VWAP: $%s -> price %s", money(v.Value.Value), v.Value.Position)
	} else {
		line("VWAP: %s", notAvailable)
	}

	line("SMA50: %s", optionalMoney(snap.SMA50))
	line("SMA200: %s", optionalMoney(snap.SMA200))

	line("")
	line("[Pi Cycle Top]")
	if pi := r.PiCycle; pi.Ok() {
		line("SMA111: $%s", money(pi.Value.SMA111))
		line("2x SMA350: $%s", money(pi.Value.SMA350x2))
		status := "no top signal"
		if pi.Value.IsTop {
			status = "TOP SIGNAL"
		}
		line("Status: %s (as of %s)", status, formatTime(pi.Value.AsOf, dateLayout))
	} else {
		line("Status: %s", notAvailable)
	}

	line("")
	line("[Recommendation]")
	line("Score: %+.2f", r.Score.Value)
	line("Action: %s", r.Score.Action.Label())
	signals := r.Score.Signals()
	if len(signals) == 0 {
		line("Signals: none")
	} else {
		line("Signals:")
		for _, s := range signals {
			line("  - %s", s)
		}
	}

	return b.String()
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func optionalMoney(o indicator.Outcome[float64]) string {
	if !o.Ok() {
		return notAvailable
	}
	return "$" + money(o.Value)
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.UTC().Format(layout)
}

func rsiPosition(rsi float64) indicator.Position {
	switch {
	case rsi < rsiOversold:
		return indicator.PositionOversold
	case rsi > rsiOverbought:
		return indicator.PositionOverbought
	default:
		return indicator.PositionNeutral
	}
}
