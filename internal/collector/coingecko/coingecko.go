package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/pulse/internal/collector"
	"github.com/newthinker/pulse/internal/core"
	"go.uber.org/zap"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"

	// DefaultCoinID is the CoinGecko coin ID used when none is configured
	DefaultCoinID = "bitcoin"
)

// CoinGecko fetches daily price and volume history from the market_chart endpoint
type CoinGecko struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	coinID     string
	vsCurrency string
	pacer      *collector.Pacer
	logger     *zap.Logger
}

// Option configures a CoinGecko source
type Option func(*CoinGecko)

// WithBaseURL overrides the API root (for testing)
func WithBaseURL(u string) Option {
	return func(c *CoinGecko) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the shared upstream client
func WithHTTPClient(client *http.Client) Option {
	return func(c *CoinGecko) {
		c.client = client
	}
}

// WithCoinID selects the coin, e.g. "bitcoin"
func WithCoinID(id string) Option {
	return func(c *CoinGecko) {
		if id != "" {
			c.coinID = id
		}
	}
}

// WithPacer spaces successive requests
func WithPacer(p *collector.Pacer) Option {
	return func(c *CoinGecko) {
		c.pacer = p
	}
}

// WithLogger sets a logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CoinGecko) {
		c.logger = logger
	}
}

// New creates a new CoinGecko source. apiKey may be empty for the public tier.
func New(apiKey string, opts ...Option) *CoinGecko {
	c := &CoinGecko{
		client: &http.Client{
			Timeout: collector.DefaultTimeout,
		},
		baseURL:    baseURL,
		apiKey:     apiKey,
		coinID:     DefaultCoinID,
		vsCurrency: "usd",
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

// marketChart is the subset of /coins/{id}/market_chart we read.
// Each point is [unix_ms, value].
type marketChart struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// FetchPriceHistory fetches daily closes and volumes for the last days
func (c *CoinGecko) FetchPriceHistory(ctx context.Context, days int) (core.PriceSeries, error) {
	if days < 1 {
		return core.PriceSeries{}, fmt.Errorf("coingecko: days must be positive, got %d", days)
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrFetchFailed, fmt.Errorf("waiting for pacer: %w", err))
	}

	q := url.Values{}
	q.Set("vs_currency", c.vsCurrency)
	q.Set("days", strconv.Itoa(days))
	q.Set("interval", "daily")
	reqURL := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, url.PathEscape(c.coinID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return core.PriceSeries{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	c.logger.Debug("coingecko request", zap.String("coin", c.coinID), zap.Int("days", days))

	resp, err := c.client.Do(req)
	if err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrFetchFailed, fmt.Errorf("fetching market chart: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.PriceSeries{}, core.WrapError(core.ErrFetchFailed, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var chart marketChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return core.PriceSeries{}, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("decoding response: %w", err))
	}

	return toSeries(chart)
}

func toSeries(chart marketChart) (core.PriceSeries, error) {
	if len(chart.Prices) == 0 || len(chart.TotalVolumes) == 0 {
		return core.PriceSeries{}, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("missing prices or total_volumes"))
	}
	if len(chart.Prices) != len(chart.TotalVolumes) {
		return core.PriceSeries{}, core.WrapError(core.ErrMalformedPayload,
			fmt.Errorf("prices/total_volumes length mismatch: %d vs %d", len(chart.Prices), len(chart.TotalVolumes)))
	}

	series := core.PriceSeries{
		Closes:  make([]float64, 0, len(chart.Prices)),
		Volumes: make([]float64, 0, len(chart.Prices)),
		Times:   make([]time.Time, 0, len(chart.Prices)),
	}
	for i, p := range chart.Prices {
		v := chart.TotalVolumes[i]
		if len(p) < 2 || len(v) < 2 {
			return core.PriceSeries{}, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("short point at index %d", i))
		}
		if !usable(p[1]) || !usable(v[1]) {
			return core.PriceSeries{}, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("invalid value at index %d", i))
		}
		series.Times = append(series.Times, time.UnixMilli(int64(p[0])).UTC())
		series.Closes = append(series.Closes, p[1])
		series.Volumes = append(series.Volumes, v[1])
	}

	if err := series.Validate(); err != nil {
		return core.PriceSeries{}, err
	}
	return series, nil
}

func usable(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
