package app

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/newthinker/pulse/internal/cache"
	"github.com/newthinker/pulse/internal/config"
	"github.com/newthinker/pulse/internal/core"
	"github.com/newthinker/pulse/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSentiment struct {
	reading core.SentimentReading
	err     error
}

func (m *mockSentiment) Name() string { return "mock-sentiment" }
func (m *mockSentiment) FetchSentiment(ctx context.Context) (core.SentimentReading, error) {
	return m.reading, m.err
}

type mockPrices struct {
	mu    sync.Mutex
	calls []int
	fail  map[int]error
}

func (m *mockPrices) Name() string { return "mock-prices" }
func (m *mockPrices) FetchPriceHistory(ctx context.Context, days int) (core.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, days)
	err := m.fail[days]
	m.mu.Unlock()
	if err != nil {
		return core.PriceSeries{}, err
	}
	return makeSeries(days), nil
}

func (m *mockPrices) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

func makeSeries(n int) core.PriceSeries {
	s := core.PriceSeries{
		Closes:  make([]float64, n),
		Volumes: make([]float64, n),
		Times:   make([]time.Time, n),
	}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Closes[i] = 30000 + float64(i)*50 + 400*math.Sin(float64(i)/3)
		s.Volumes[i] = 2e10 + float64(i%7)*1e8
		s.Times[i] = start.AddDate(0, 0, i)
	}
	return s
}

func newTestApp(t *testing.T, sent *mockSentiment, prices *mockPrices, reg *metrics.Registry) *App {
	t.Helper()
	a, err := New(Deps{
		Config:    config.Defaults(),
		Cache:     cache.New(time.Minute),
		Sentiment: sent,
		Prices:    prices,
		Metrics:   reg,
	})
	require.NoError(t, err)
	return a
}

func fearReading() *mockSentiment {
	return &mockSentiment{reading: core.SentimentReading{
		Value:          15,
		Classification: core.ClassExtremeFear,
		ObservedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestApp_New_RequiresSources(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)

	_, err = New(Deps{Sentiment: fearReading()})
	assert.Error(t, err)
}

func TestApp_Run_FullReport(t *testing.T) {
	prices := &mockPrices{}
	a := newTestApp(t, fearReading(), prices, nil)

	r, err := a.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, 15, r.Sentiment.Value)
	assert.Empty(t, r.Snapshot.Failures())
	assert.True(t, r.PiCycle.Ok())
	assert.Equal(t, makeSeries(200).LastClose(), r.LastClose)

	// sentiment vote comes first
	require.NotEmpty(t, r.Score.Votes)
	assert.Equal(t, "sentiment", r.Score.Votes[0].Rule)
}

func TestApp_Run_TwoDistinctWindows(t *testing.T) {
	prices := &mockPrices{}
	a := newTestApp(t, fearReading(), prices, nil)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{200, 365}, prices.Calls())
}

func TestApp_Run_SentimentMissingAborts(t *testing.T) {
	sent := &mockSentiment{err: core.WrapError(core.ErrFetchFailed, errors.New("timeout"))}
	a := newTestApp(t, sent, &mockPrices{}, nil)

	r, err := a.Run(context.Background())
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, core.ErrPrimaryDataMissing))
}

func TestApp_Run_PrimarySeriesMissingAborts(t *testing.T) {
	prices := &mockPrices{fail: map[int]error{200: errors.New("429")}}
	a := newTestApp(t, fearReading(), prices, nil)

	r, err := a.Run(context.Background())
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, core.ErrPrimaryDataMissing))
}

func TestApp_Run_PiCycleFailureDegrades(t *testing.T) {
	prices := &mockPrices{fail: map[int]error{365: errors.New("timeout")}}
	a := newTestApp(t, fearReading(), prices, nil)

	r, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, r.PiCycle.Ok())
	for _, v := range r.Score.Votes {
		assert.NotEqual(t, "pi_cycle", v.Rule)
	}
}

func TestApp_Run_PiCycleCached(t *testing.T) {
	prices := &mockPrices{}
	a := newTestApp(t, fearReading(), prices, nil)
	ctx := context.Background()

	_, err := a.Run(ctx)
	require.NoError(t, err)
	r, err := a.Run(ctx)
	require.NoError(t, err)

	assert.True(t, r.PiCycle.Ok())
	assert.Equal(t, []int{200, 365, 200}, sortedTail(prices.Calls()))
}

// sortedTail orders the first run's two concurrent calls for comparison
func sortedTail(calls []int) []int {
	if len(calls) >= 2 && calls[0] > calls[1] {
		calls[0], calls[1] = calls[1], calls[0]
	}
	return calls
}

func TestApp_Run_RecordsMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	prices := &mockPrices{fail: map[int]error{365: errors.New("timeout")}}
	a := newTestApp(t, fearReading(), prices, reg)

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"pulse_fetch_total",
		"pulse_indicator_available",
		"pulse_signal_score",
		"pulse_recommendation",
		"pulse_run_duration_seconds",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}
