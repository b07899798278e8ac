package collector

import (
	"context"

	"github.com/newthinker/pulse/internal/cache"
	"github.com/newthinker/pulse/internal/core"
)

// CachedSentiment memoizes a SentimentSource under cache.KeySentiment
type CachedSentiment struct {
	src   SentimentSource
	cache *cache.Cache
}

// NewCachedSentiment wraps src with c
func NewCachedSentiment(src SentimentSource, c *cache.Cache) *CachedSentiment {
	return &CachedSentiment{src: src, cache: c}
}

func (s *CachedSentiment) Name() string {
	return s.src.Name()
}

func (s *CachedSentiment) FetchSentiment(ctx context.Context) (core.SentimentReading, error) {
	if r, ok := cache.Lookup[core.SentimentReading](s.cache, cache.KeySentiment); ok {
		return r, nil
	}
	r, err := s.src.FetchSentiment(ctx)
	if err != nil {
		return core.SentimentReading{}, err
	}
	s.cache.Set(cache.KeySentiment, r)
	return r, nil
}

type cachedSeries struct {
	days   int
	series core.PriceSeries
}

// CachedPrices memoizes a PriceSource under one key. A cached series for a
// different day count is a miss, so the two lookback windows never mix.
type CachedPrices struct {
	src   PriceSource
	cache *cache.Cache
	key   cache.Key
}

// NewCachedPrices wraps src with c, storing results under key
func NewCachedPrices(src PriceSource, c *cache.Cache, key cache.Key) *CachedPrices {
	return &CachedPrices{src: src, cache: c, key: key}
}

func (p *CachedPrices) Name() string {
	return p.src.Name()
}

func (p *CachedPrices) FetchPriceHistory(ctx context.Context, days int) (core.PriceSeries, error) {
	if hit, ok := cache.Lookup[cachedSeries](p.cache, p.key); ok && hit.days == days {
		return hit.series, nil
	}
	series, err := p.src.FetchPriceHistory(ctx, days)
	if err != nil {
		return core.PriceSeries{}, err
	}
	p.cache.Set(p.key, cachedSeries{days: days, series: series})
	return series, nil
}
