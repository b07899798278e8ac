package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/pulse/internal/app"
	"github.com/newthinker/pulse/internal/cache"
	"github.com/newthinker/pulse/internal/collector"
	"github.com/newthinker/pulse/internal/collector/coingecko"
	"github.com/newthinker/pulse/internal/collector/coinmarketcap"
	"github.com/newthinker/pulse/internal/config"
	"github.com/newthinker/pulse/internal/logger"
	"github.com/newthinker/pulse/internal/metrics"
	"github.com/newthinker/pulse/internal/notifier"
	"github.com/newthinker/pulse/internal/notifier/webhook"
	"github.com/newthinker/pulse/internal/report"
	"github.com/newthinker/pulse/internal/storage/archive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	outputDir string
	proxyURL  string
	noFile    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch market data and print the sentiment report",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the report file (overrides report.dir)")
	reportCmd.Flags().StringVar(&proxyURL, "proxy", "", "HTTP proxy for upstream calls, host:port or URL (overrides proxy_url)")
	reportCmd.Flags().BoolVar(&noFile, "no-file", false, "print the report without writing the file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if outputDir != "" {
		cfg.Report.Dir = outputDir
	}
	if proxyURL != "" {
		cfg.ProxyURL = proxyURL
	}

	// Initialize logger
	log, err := logger.New(debug, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	if cfgFile == "" {
		log.Debug("no config file specified, using defaults and environment")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	client, err := collector.NewHTTPClient(collector.HTTPConfig{
		ProxyURL: cfg.ProxyURL,
		Timeout:  cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating http client: %w", err)
	}
	metrics.InstrumentClient(client, reg)

	c := cache.New(cfg.Cache.TTL, cache.WithObserver(func(key cache.Key, hit bool) {
		reg.RecordCacheLookup(key.String(), hit)
	}))

	sentiment := coinmarketcap.New(cfg.Sentiment.APIKey,
		coinmarketcap.WithBaseURL(cfg.Sentiment.BaseURL),
		coinmarketcap.WithHTTPClient(client),
		coinmarketcap.WithPacer(collector.NewPacer(cfg.Sentiment.MinInterval)),
		coinmarketcap.WithLogger(log),
	)

	// one adapter and one pacer for both windows, they share an upstream
	prices := coingecko.New(cfg.Prices.APIKey,
		coingecko.WithBaseURL(cfg.Prices.BaseURL),
		coingecko.WithCoinID(cfg.Prices.CoinID),
		coingecko.WithHTTPClient(client),
		coingecko.WithPacer(collector.NewPacer(cfg.Prices.MinInterval)),
		coingecko.WithLogger(log),
	)

	a, err := app.New(app.Deps{
		Config:     cfg,
		Logger:     log,
		Cache:      c,
		Sentiment:  collector.NewCachedSentiment(sentiment, c),
		Prices:     collector.NewCachedPrices(prices, c, cache.KeyPriceHistory),
		LongPrices: collector.NewCachedPrices(prices, c, cache.KeyLongHistory),
		Metrics:    reg,
	})
	if err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}

	notifiers, err := newNotifiers(cfg, client)
	if err != nil {
		return err
	}

	r, runErr := a.Run(ctx)
	if runErr == nil {
		var text string
		text, runErr = publisher.Publish(ctx, *r)
		if runErr != nil {
			log.Error("writing report failed", zap.Error(runErr))
		}
		for name, err := range notifiers.NotifyAll(ctx, notifier.FromReport(*r, text)) {
			log.Warn("notification failed", zap.String("notifier", name), zap.Error(err))
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := reg.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("writing metrics textfile failed", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	return runErr
}

func newPublisher(cfg *config.Config, log *zap.Logger) (*report.Publisher, error) {
	opts := []report.PublisherOption{
		report.WithFile(cfg.Report.File),
		report.WithLogger(log),
	}
	if noFile {
		return report.NewPublisher(os.Stdout, opts...), nil
	}

	local := archive.NewLocalFS(cfg.Report.Dir)
	opts = append(opts, report.WithStorage(local))
	log.Debug("report file", zap.String("path", local.Location(cfg.Report.File)))

	if s3cfg := cfg.Report.S3; s3cfg.Bucket != "" {
		mirror, err := archive.NewS3(archive.S3Config{
			Bucket:    s3cfg.Bucket,
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Prefix:    s3cfg.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 mirror: %w", err)
		}
		opts = append(opts, report.WithMirror(mirror))
	}

	return report.NewPublisher(os.Stdout, opts...), nil
}

func newNotifiers(cfg *config.Config, client *http.Client) (*notifier.Registry, error) {
	reg := notifier.NewRegistry(cfg.NotifyActions()...)
	if cfg.Notify.Webhook.URL != "" {
		w, err := webhook.New(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Headers, webhook.WithHTTPClient(client))
		if err != nil {
			return nil, err
		}
		if err := reg.Register(w); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
