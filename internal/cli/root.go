package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/caresignal/accredwatch/internal/config"
	"github.com/caresignal/accredwatch/pkg/alerts"
	"github.com/caresignal/accredwatch/pkg/processor"
	"github.com/caresignal/accredwatch/pkg/source"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "accredwatch",
	Short: "AccredWatch - Healthcare facility accreditation expiry monitoring",
	Long: `AccredWatch scans healthcare facility records in object storage, computes
derived facility metrics, flags accreditations expiring within the 90-day
warning window, and publishes tiered alerts to notification channels.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.accredwatch/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initSource creates the S3 record source from config.
func initSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	return source.NewS3(ctx, source.S3Config{
		Bucket:          cfg.Source.Bucket,
		Region:          cfg.Source.Region,
		AccessKeyID:     cfg.Source.AccessKeyID,
		SecretAccessKey: cfg.Source.SecretAccessKey,
	})
}

// initSinks creates alert sinks from config.
func initSinks(ctx context.Context, cfg *config.Config) ([]alerts.Sink, error) {
	var sinks []alerts.Sink

	if cfg.Alerts.SNS.Enabled {
		snsCfg := alerts.SNSConfig{
			Region:          cfg.Alerts.SNS.Region,
			AccessKeyID:     cfg.Alerts.SNS.AccessKeyID,
			SecretAccessKey: cfg.Alerts.SNS.SecretAccessKey,
			TopicARNPrefix:  cfg.Alerts.SNS.TopicARNPrefix,
		}
		if cfg.Alerts.SNS.RoutingFile != "" {
			topics, err := alerts.LoadRouting(cfg.Alerts.SNS.RoutingFile)
			if err != nil {
				return nil, fmt.Errorf("load alert routing: %w", err)
			}
			snsCfg.Topics = topics
		}

		sink, err := alerts.NewSNSSink(ctx, snsCfg)
		if err != nil {
			return nil, fmt.Errorf("init SNS sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		sinks = append(sinks, alerts.NewWebhookSink(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	return sinks, nil
}

// initProcessor creates a fully wired batch processor.
func initProcessor(ctx context.Context, cfg *config.Config) (*processor.Processor, error) {
	logger := newLogger(cfg)

	src, err := initSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init record source: %w", err)
	}

	sinks, err := initSinks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dispatcher := alerts.NewDispatcher(sinks, logger)
	return processor.New(src, dispatcher, logger), nil
}
