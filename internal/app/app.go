// Package app runs one report cycle: fetch, compute, aggregate.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/pulse/internal/cache"
	"github.com/newthinker/pulse/internal/collector"
	"github.com/newthinker/pulse/internal/config"
	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/indicator"
	"github.com/newthinker/pulse/internal/metrics"
	"github.com/newthinker/pulse/internal/report"
	"github.com/newthinker/pulse/internal/strategy"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// Deps is everything a run needs. It is built once by the caller and passed
// in explicitly.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Cache     *cache.Cache
	Sentiment collector.SentimentSource
	Prices    collector.PriceSource

	// LongPrices serves the Pi Cycle window; nil reuses Prices
	LongPrices collector.PriceSource

	// Metrics is optional
	Metrics *metrics.Registry

	// Now defaults to time.Now
	Now func() time.Time
}

// App is the report orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	cache      *cache.Cache
	sentiment  collector.SentimentSource
	prices     collector.PriceSource
	longPrices collector.PriceSource
	metrics    *metrics.Registry
	now        func() time.Time
}

// New creates a new App instance
func New(d Deps) (*App, error) {
	if d.Sentiment == nil || d.Prices == nil {
		return nil, errors.New("app: sentiment and price sources are required")
	}

	a := &App{
		cfg:        d.Config,
		logger:     d.Logger,
		cache:      d.Cache,
		sentiment:  d.Sentiment,
		prices:     d.Prices,
		longPrices: d.LongPrices,
		metrics:    d.Metrics,
		now:        d.Now,
	}
	if a.cfg == nil {
		a.cfg = config.Defaults()
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.cache == nil {
		a.cache = cache.New(a.cfg.Cache.TTL)
	}
	if a.longPrices == nil {
		a.longPrices = a.prices
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// fetched holds the three independent reads of a run
type fetched struct {
	sentiment *core.SentimentReading
	primary   *core.PriceSeries
	piCycle   indicator.Outcome[indicator.PiCycleResult]
}

// Run performs one report cycle. It returns core.ErrPrimaryDataMissing when
// the sentiment reading or the primary price series could not be fetched;
// every other failure degrades to an absent indicator.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	start := a.now()
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID))

	log.Debug("starting report run",
		zap.Int("days", a.cfg.Prices.Days),
		zap.Int("pi_cycle_days", a.cfg.Prices.PiCycleDays),
	)

	f := a.fetchAll(ctx, log)

	if f.sentiment == nil || f.primary == nil {
		var missing []string
		if f.sentiment == nil {
			missing = append(missing, a.sentiment.Name())
		}
		if f.primary == nil {
			missing = append(missing, a.prices.Name())
		}
		err := core.WrapError(core.ErrPrimaryDataMissing, fmt.Errorf("unavailable: %v", missing))
		log.Error("report aborted", zap.Error(err))
		return nil, err
	}

	snap := indicator.Compute(*f.primary)
	for _, st := range snap.Statuses() {
		if st.Err != nil {
			log.Warn("indicator unavailable", zap.String("indicator", st.Name), zap.Error(st.Err))
		}
		a.recordIndicator(st.Name, st.Err == nil)
	}
	a.recordIndicator("pi_cycle", f.piCycle.Ok())

	score := strategy.Aggregate(strategy.InputsFromSnapshot(f.sentiment, snap, f.piCycle))

	r := &report.Report{
		RunID:       runID,
		GeneratedAt: a.now(),
		Sentiment:   *f.sentiment,
		LastClose:   f.primary.LastClose(),
		LastVolume:  f.primary.LastVolume(),
		Snapshot:    snap,
		PiCycle:     f.piCycle,
		Score:       score,
	}

	elapsed := a.now().Sub(start)
	if a.metrics != nil {
		a.metrics.RecordScore(score.Value, string(score.Action))
		a.metrics.RecordRun(elapsed.Seconds())
	}

	log.Info("report ready",
		zap.Float64("score", score.Value),
		zap.String("action", string(score.Action)),
		zap.Int("votes", len(score.Votes)),
		zap.Duration("elapsed", elapsed),
	)
	return r, nil
}

// fetchAll runs the sentiment, primary history and Pi Cycle reads
// concurrently. Each goroutine writes only its own field.
func (a *App) fetchAll(ctx context.Context, log *zap.Logger) fetched {
	var f fetched
	var wg conc.WaitGroup

	wg.Go(func() {
		r, err := a.sentiment.FetchSentiment(ctx)
		a.recordFetch(cache.KeySentiment, err)
		if err != nil {
			log.Warn("sentiment fetch failed", zap.String("source", a.sentiment.Name()), zap.Error(err))
			return
		}
		f.sentiment = &r
	})

	wg.Go(func() {
		s, err := a.prices.FetchPriceHistory(ctx, a.cfg.Prices.Days)
		a.recordFetch(cache.KeyPriceHistory, err)
		if err != nil {
			log.Warn("price history fetch failed",
				zap.String("source", a.prices.Name()),
				zap.Int("days", a.cfg.Prices.Days),
				zap.Error(err),
			)
			return
		}
		f.primary = &s
	})

	wg.Go(func() {
		f.piCycle = a.piCycle(ctx, log)
	})

	wg.Wait()
	return f
}

// piCycle evaluates the Pi Cycle Top on its own, longer window. A computed
// result is cached under cache.KeyPiCycle so repeat runs in the same process
// skip the long fetch.
func (a *App) piCycle(ctx context.Context, log *zap.Logger) indicator.Outcome[indicator.PiCycleResult] {
	if res, ok := cache.Lookup[indicator.PiCycleResult](a.cache, cache.KeyPiCycle); ok {
		return indicator.NewOutcome(res, nil)
	}

	days := a.cfg.Prices.PiCycleDays
	series, err := a.longPrices.FetchPriceHistory(ctx, days)
	a.recordFetch(cache.KeyLongHistory, err)
	if err != nil {
		log.Warn("pi cycle history fetch failed",
			zap.String("source", a.longPrices.Name()),
			zap.Int("days", days),
			zap.Error(err),
		)
		return indicator.Outcome[indicator.PiCycleResult]{Err: err}
	}

	res, err := indicator.PiCycle(series)
	if err != nil {
		log.Warn("indicator unavailable", zap.String("indicator", "pi_cycle"), zap.Error(err))
		return indicator.Outcome[indicator.PiCycleResult]{Err: err}
	}
	a.cache.Set(cache.KeyPiCycle, res)
	return indicator.NewOutcome(res, nil)
}

func (a *App) recordFetch(key cache.Key, err error) {
	if a.metrics != nil {
		a.metrics.RecordFetch(key.String(), err)
	}
}

func (a *App) recordIndicator(name string, ok bool) {
	if a.metrics != nil {
		a.metrics.SetIndicatorAvailable(name, ok)
	}
}
