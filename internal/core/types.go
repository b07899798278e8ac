package core

import (
	"fmt"
	"strings"
	"time"
)

// Classification is the sentiment band reported alongside the index value
type Classification string

const (
	ClassExtremeFear  Classification = "extreme_fear"
	ClassFear         Classification = "fear"
	ClassNeutral      Classification = "neutral"
	ClassGreed        Classification = "greed"
	ClassExtremeGreed Classification = "extreme_greed"
)

var classificationNames = map[string]Classification{
	"extreme fear":  ClassExtremeFear,
	"fear":          ClassFear,
	"neutral":       ClassNeutral,
	"greed":         ClassGreed,
	"extreme greed": ClassExtremeGreed,
}

// ParseClassification maps upstream labels such as "Extreme fear" or
// "extreme_greed" onto a Classification.
func ParseClassification(label string) (Classification, bool) {
	norm := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(label))
	norm = strings.Join(strings.Fields(norm), " ")
	c, ok := classificationNames[norm]
	return c, ok
}

// ClassifyValue derives the band from the raw 0-100 index value
func ClassifyValue(value int) Classification {
	switch {
	case value < 20:
		return ClassExtremeFear
	case value < 40:
		return ClassFear
	case value < 60:
		return ClassNeutral
	case value < 80:
		return ClassGreed
	default:
		return ClassExtremeGreed
	}
}

// Title returns the display form, e.g. "Extreme Fear"
func (c Classification) Title() string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// SentimentReading is one observation of the fear & greed index
type SentimentReading struct {
	Value          int
	Classification Classification
	Label          string // upstream text, kept for display
	ObservedAt     time.Time
}

// Validate checks the reading is inside the index range
func (s SentimentReading) Validate() error {
	if s.Value < 0 || s.Value > 100 {
		return WrapError(ErrMalformedPayload, fmt.Errorf("sentiment value %d outside 0-100", s.Value))
	}
	return nil
}

// PriceSeries holds daily closes and volumes in ascending time order
type PriceSeries struct {
	Closes  []float64
	Volumes []float64
	Times   []time.Time
}

// Validate checks that the series is non-empty and its columns line up
func (p PriceSeries) Validate() error {
	if len(p.Closes) == 0 {
		return WrapError(ErrMalformedPayload, fmt.Errorf("empty price series"))
	}
	if len(p.Closes) != len(p.Volumes) {
		return WrapError(ErrMalformedPayload,
			fmt.Errorf("closes/volumes length mismatch: %d vs %d", len(p.Closes), len(p.Volumes)))
	}
	if len(p.Times) != 0 && len(p.Times) != len(p.Closes) {
		return WrapError(ErrMalformedPayload,
			fmt.Errorf("times/closes length mismatch: %d vs %d", len(p.Times), len(p.Closes)))
	}
	return nil
}

// Len returns the number of points
func (p PriceSeries) Len() int {
	return len(p.Closes)
}

// LastClose returns the most recent close, or 0 for an empty series
func (p PriceSeries) LastClose() float64 {
	if len(p.Closes) == 0 {
		return 0
	}
	return p.Closes[len(p.Closes)-1]
}

// LastVolume returns the most recent volume, or 0 for an empty series
func (p PriceSeries) LastVolume() float64 {
	if len(p.Volumes) == 0 {
		return 0
	}
	return p.Volumes[len(p.Volumes)-1]
}

// LastTime returns the timestamp of the most recent point, if known
func (p PriceSeries) LastTime() time.Time {
	if len(p.Times) == 0 {
		return time.Time{}
	}
	return p.Times[len(p.Times)-1]
}

// Action represents the aggregated recommendation
type Action string

const (
	ActionStrongBuy  Action = "strong_buy"
	ActionBuy        Action = "buy"
	ActionHold       Action = "hold"
	ActionSell       Action = "sell"
	ActionStrongSell Action = "strong_sell"
)

// Label returns the display form, e.g. "STRONG BUY"
func (a Action) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(a), "_", " "))
}

// ParseAction maps "strong_buy", "STRONG BUY" or "strong-buy" onto an Action
func ParseAction(s string) (Action, bool) {
	norm := strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(s)), "_"))
	switch a := Action(norm); a {
	case ActionStrongBuy, ActionBuy, ActionHold, ActionSell, ActionStrongSell:
		return a, true
	}
	return "", false
}
