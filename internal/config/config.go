package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/pulse/internal/core"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ProxyURL       string          `mapstructure:"proxy_url"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	Sentiment      SentimentConfig `mapstructure:"sentiment"`
	Prices         PricesConfig    `mapstructure:"prices"`
	Cache          CacheConfig     `mapstructure:"cache"`
	Report         ReportConfig    `mapstructure:"report"`
	Metrics        MetricsConfig   `mapstructure:"metrics"`
	Notify         NotifyConfig    `mapstructure:"notify"`
	Log            LogConfig       `mapstructure:"log"`
}

// SentimentConfig configures the fear & greed feed
type SentimentConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

// PricesConfig configures the price/volume history feed
type PricesConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	CoinID      string        `mapstructure:"coin_id"`
	Days        int           `mapstructure:"days"`
	PiCycleDays int           `mapstructure:"pi_cycle_days"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ReportConfig controls where the report artifact is written
type ReportConfig struct {
	Dir  string   `mapstructure:"dir"`
	File string   `mapstructure:"file"`
	S3   S3Config `mapstructure:"s3"`
}

// S3Config enables an S3 mirror of the report when Bucket is set
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // empty disables the dump
}

// NotifyConfig forwards the finished report to a webhook
type NotifyConfig struct {
	Actions []string      `mapstructure:"actions"` // recommendations that trigger a notification
	Webhook WebhookConfig `mapstructure:"webhook"`
}

type WebhookConfig struct {
	URL     string            `mapstructure:"url"` // empty disables the webhook
	Headers map[string]string `mapstructure:"headers"`
}

// NotifyActions returns the parsed notify.actions
func (c *Config) NotifyActions() []core.Action {
	var out []core.Action
	for _, s := range c.Notify.Actions {
		if a, ok := core.ParseAction(s); ok {
			out = append(out, a)
		}
	}
	return out
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional file plus the environment.
// An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.BindEnv("sentiment.api_key", "COINMARKETCAP_API_KEY", "SENTIMENT_API_KEY")
	v.BindEnv("prices.api_key", "COINGECKO_API_KEY", "PRICES_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("proxy_url", d.ProxyURL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("sentiment.api_key", d.Sentiment.APIKey)
	v.SetDefault("sentiment.base_url", d.Sentiment.BaseURL)
	v.SetDefault("sentiment.min_interval", d.Sentiment.MinInterval)
	v.SetDefault("prices.api_key", d.Prices.APIKey)
	v.SetDefault("prices.base_url", d.Prices.BaseURL)
	v.SetDefault("prices.coin_id", d.Prices.CoinID)
	v.SetDefault("prices.days", d.Prices.Days)
	v.SetDefault("prices.pi_cycle_days", d.Prices.PiCycleDays)
	v.SetDefault("prices.min_interval", d.Prices.MinInterval)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("report.dir", d.Report.Dir)
	v.SetDefault("report.file", d.Report.File)
	v.SetDefault("report.s3.bucket", "")
	v.SetDefault("report.s3.endpoint", "")
	v.SetDefault("report.s3.region", "")
	v.SetDefault("report.s3.access_key", "")
	v.SetDefault("report.s3.secret_key", "")
	v.SetDefault("report.s3.prefix", "")
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("notify.actions", d.Notify.Actions)
	v.SetDefault("notify.webhook.url", d.Notify.Webhook.URL)
	v.SetDefault("log.level", d.Log.Level)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		RequestTimeout: 10 * time.Second,
		Sentiment: SentimentConfig{
			BaseURL: "https://pro-api.coinmarketcap.com",
		},
		Prices: PricesConfig{
			BaseURL:     "https://api.coingecko.com/api/v3",
			CoinID:      "bitcoin",
			Days:        200,
			PiCycleDays: 365,
			MinInterval: 1500 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL: 300 * time.Second,
		},
		Report: ReportConfig{
			Dir:  "reports",
			File: "latest.txt",
		},
		Notify: NotifyConfig{
			Actions: []string{"strong_buy", "buy", "sell", "strong_sell"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.Cache.TTL <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}

	// Lookback windows must cover SMA200 and the Pi Cycle SMA350
	if c.Prices.Days < 200 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("prices.days must be at least 200, got %d", c.Prices.Days))
	}
	if c.Prices.PiCycleDays < 350 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("prices.pi_cycle_days must be at least 350, got %d", c.Prices.PiCycleDays))
	}
	if c.Prices.MinInterval < 0 || c.Sentiment.MinInterval < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("min_interval cannot be negative"))
	}

	if c.Report.File == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("report.file required"))
	}
	if c.Report.S3.Bucket != "" && c.Report.S3.Region == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("report.s3.region required when report.s3.bucket is set"))
	}

	for _, a := range c.Notify.Actions {
		if _, ok := core.ParseAction(a); !ok {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("notify.actions: unknown action %q", a))
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("log.level: %w", err))
	}

	if c.Sentiment.APIKey == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("sentiment api_key required (COINMARKETCAP_API_KEY)"))
	}

	return nil
}
