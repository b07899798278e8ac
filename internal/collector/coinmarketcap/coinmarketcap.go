// Package coinmarketcap reads the CoinMarketCap fear & greed index
package coinmarketcap

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/newthinker/pulse/internal/collector"
	"github.com/newthinker/pulse/internal/core"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	baseURL    = "https://pro-api.coinmarketcap.com"
	latestPath = "/v3/fear-and-greed/latest"

	maxBody = 1 << 20
)

// CoinMarketCap implements collector.SentimentSource
type CoinMarketCap struct {
	client  *http.Client
	baseURL string
	apiKey  string
	pacer   *collector.Pacer
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a CoinMarketCap source
type Option func(*CoinMarketCap)

// WithBaseURL overrides the API root (for testing)
func WithBaseURL(u string) Option {
	return func(c *CoinMarketCap) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the shared upstream client
func WithHTTPClient(client *http.Client) Option {
	return func(c *CoinMarketCap) {
		c.client = client
	}
}

// WithPacer spaces successive requests
func WithPacer(p *collector.Pacer) Option {
	return func(c *CoinMarketCap) {
		c.pacer = p
	}
}

// WithLogger sets a logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CoinMarketCap) {
		c.logger = logger
	}
}

// New creates a new CoinMarketCap source
func New(apiKey string, opts ...Option) *CoinMarketCap {
	c := &CoinMarketCap{
		client: &http.Client{
			Timeout: collector.DefaultTimeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CoinMarketCap) Name() string {
	return "coinmarketcap"
}

// FetchSentiment fetches the latest index value and classification
func (c *CoinMarketCap) FetchSentiment(ctx context.Context) (core.SentimentReading, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return core.SentimentReading{}, core.WrapError(core.ErrFetchFailed, fmt.Errorf("waiting for pacer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+latestPath, nil)
	if err != nil {
		return core.SentimentReading{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)

	c.logger.Debug("coinmarketcap request", zap.String("path", latestPath))

	resp, err := c.client.Do(req)
	if err != nil {
		return core.SentimentReading{}, core.WrapError(core.ErrFetchFailed, fmt.Errorf("fetching fear and greed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return core.SentimentReading{}, core.WrapError(core.ErrFetchFailed, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "status.error_message").String()
		return core.SentimentReading{}, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("unexpected status: %d %s", resp.StatusCode, msg))
	}

	return c.parse(body)
}

func (c *CoinMarketCap) parse(body []byte) (core.SentimentReading, error) {
	if !gjson.ValidBytes(body) {
		return core.SentimentReading{}, core.WrapError(core.ErrMalformedPayload, fmt.Errorf("response is not valid JSON"))
	}

	data := gjson.GetBytes(body, "data")
	value := data.Get("value")
	label := data.Get("value_classification").String()
	if value.Type != gjson.Number || label == "" {
		return core.SentimentReading{}, core.WrapError(core.ErrMalformedPayload,
			fmt.Errorf("missing data.value or data.value_classification"))
	}

	reading := core.SentimentReading{
		Value:      int(math.Round(value.Float())),
		Label:      label,
		ObservedAt: c.now().UTC(),
	}
	if class, ok := core.ParseClassification(label); ok {
		reading.Classification = class
	} else {
		reading.Classification = core.ClassifyValue(reading.Value)
	}
	if ts := data.Get("update_time").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			reading.ObservedAt = t.UTC()
		} else {
			c.logger.Debug("unparseable update_time", zap.String("update_time", ts))
		}
	}

	if err := reading.Validate(); err != nil {
		return core.SentimentReading{}, err
	}
	return reading, nil
}
