package collector

import (
	"context"

	"github.com/newthinker/pulse/internal/core"
)

// SentimentSource fetches the latest fear & greed reading
type SentimentSource interface {
	Name() string
	FetchSentiment(ctx context.Context) (core.SentimentReading, error)
}

// PriceSource fetches a daily close/volume history covering the last days
type PriceSource interface {
	Name() string
	FetchPriceHistory(ctx context.Context, days int) (core.PriceSeries, error)
}
