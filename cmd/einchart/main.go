// Package main provides the CLI entry point for einchart.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/config"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
)

var (
	configPath string
	logLevel   string
)

// sourceFlags are the retrieval and chart flags shared by render and serve.
type sourceFlags struct {
	url           string
	proxies       []string
	retries       int
	disableSample bool
	title         string
	retention     int
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.url, "url", "", "CSV source URL")
	fs.StringSliceVar(&f.proxies, "proxy", nil, "Proxy prefix tried after the direct URL (repeatable)")
	fs.IntVar(&f.retries, "retries", 0, "Retries per source attempt")
	fs.BoolVar(&f.disableSample, "no-sample", false, "Fail instead of using the built-in sample")
	fs.StringVar(&f.title, "title", "", "Chart title")
	fs.IntVar(&f.retention, "retention", 0, "Months kept before the month of the latest observation")
}

// apply overrides cfg with the flags that were set explicitly.
func (f *sourceFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("url") {
		cfg.Source.URL = f.url
	}
	if fs.Changed("proxy") {
		cfg.Source.Proxies = f.proxies
	}
	if fs.Changed("retries") {
		cfg.Source.Retries = f.retries
	}
	if fs.Changed("no-sample") {
		cfg.Source.DisableSample = f.disableSample
	}
	if fs.Changed("title") {
		cfg.Chart.Title = f.title
	}
	if fs.Changed("retention") {
		cfg.Chart.RetentionMonths = f.retention
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "einchart",
		Short: "Build the three-band estimate chart from CSV data",
		Long: `einchart fetches a CSV time series of estimates with 5th and 95th
percentile bounds, normalizes it and renders it as a line chart.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newRenderCmd(),
		newServeCmd(),
		newInspectCmd(),
		newAnchorCmd(),
	)
	return rootCmd
}

// loadConfig loads the config file and environment, applies the root flags
// and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	slog.SetDefault(config.Logger(os.Stderr, cfg.LogLevel))
	return cfg, nil
}

func newFetcher(cfg *config.Config, opts ...source.Option) *source.Fetcher {
	opts = append([]source.Option{source.WithLogger(slog.Default())}, opts...)
	return source.New(cfg.FetchConfig(), opts...)
}
