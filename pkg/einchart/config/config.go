// Package config loads einchart settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/render"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/series"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the file.
const (
	EnvSourceURL = "EINCHART_SOURCE_URL"
	EnvProxies   = "EINCHART_PROXIES"
	EnvListen    = "EINCHART_LISTEN"
	EnvLogLevel  = "EINCHART_LOG_LEVEL"
)

// Config is the command line and server configuration, read from YAML.
type Config struct {
	Source   SourceConfig `yaml:"source"`
	Chart    ChartConfig  `yaml:"chart"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

// SourceConfig configures retrieval of the CSV text.
type SourceConfig struct {
	URL           string        `yaml:"url"`
	Proxies       []string      `yaml:"proxies"`
	Timeout       time.Duration `yaml:"timeout"`
	Retries       int           `yaml:"retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	DisableSample bool          `yaml:"disable_sample"`
}

// ChartConfig configures chart building and rendering. The tooltip offsets
// are the bias added to every anchor.
type ChartConfig struct {
	Title           string  `yaml:"title"`
	RetentionMonths int     `yaml:"retention_months"`
	TooltipOffsetX  float64 `yaml:"tooltip_offset_x"`
	TooltipOffsetY  float64 `yaml:"tooltip_offset_y"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	// Refresh is the interval between background rebuilds (0 disables them).
	Refresh time.Duration `yaml:"refresh"`
}

// Defaults returns the configuration used when no file or environment
// variable overrides a setting.
func Defaults() *Config {
	return &Config{
		Source: SourceConfig{
			Timeout:       10 * time.Second,
			Retries:       2,
			RetryInterval: 500 * time.Millisecond,
		},
		Chart: ChartConfig{
			Title:           einchart.DefaultTitle,
			RetentionMonths: series.DefaultRetentionMonths,
			TooltipOffsetY:  -10,
			Width:           render.DefaultWidth,
			Height:          render.DefaultHeight,
		},
		Server: ServerConfig{
			Listen:  ":8080",
			Refresh: 15 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load returns the defaults overlaid with the file at path (if non-empty)
// and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSourceURL); ok {
		c.Source.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvProxies); ok {
		c.Source.Proxies = splitList(v)
	}
	if v, ok := lookup(EnvListen); ok && strings.TrimSpace(v) != "" {
		c.Server.Listen = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.LogLevel = strings.TrimSpace(v)
	}
}

// Validate reports every invalid setting of c.
func (c *Config) Validate() error {
	var errs []error
	if c.Source.Retries < 0 {
		errs = append(errs, fmt.Errorf("source.retries must not be negative, got %d", c.Source.Retries))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, fmt.Errorf("source.timeout must not be negative, got %s", c.Source.Timeout))
	}
	if c.Chart.RetentionMonths < 0 {
		errs = append(errs, fmt.Errorf("chart.retention_months must not be negative, got %d", c.Chart.RetentionMonths))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		errs = append(errs, fmt.Errorf("chart.width and chart.height must be positive, got %dx%d", c.Chart.Width, c.Chart.Height))
	}
	if c.Server.Refresh < 0 {
		errs = append(errs, fmt.Errorf("server.refresh must not be negative, got %s", c.Server.Refresh))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// FetchConfig returns the retrieval settings.
func (c *Config) FetchConfig() source.Config {
	return source.Config{
		URL:           c.Source.URL,
		Proxies:       c.Source.Proxies,
		Timeout:       c.Source.Timeout,
		Retries:       c.Source.Retries,
		RetryInterval: c.Source.RetryInterval,
		DisableSample: c.Source.DisableSample,
	}
}

// BuildOptions returns the chart build options.
func (c *Config) BuildOptions() einchart.Options {
	months := c.Chart.RetentionMonths
	bias := models.Point{X: c.Chart.TooltipOffsetX, Y: c.Chart.TooltipOffsetY}
	return einchart.Options{
		Title:           c.Chart.Title,
		RetentionMonths: &months,
		TooltipBias:     &bias,
	}
}

// RenderOptions returns the rendering options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{Width: c.Chart.Width, Height: c.Chart.Height}
}

// Logger returns a text logger writing to w at the given level.
func Logger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	lvl.UnmarshalText([]byte(level))
	return slog.New(slog.NewTextHandler(
		w, &slog.HandlerOptions{
			Level: lvl,
		},
	))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
