// Package source retrieves the raw CSV text of the series: the direct URL
// first, then each proxy in order, and finally the built-in sample.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SampleName is the source name reported when the built-in sample is used.
const SampleName = "sample"

// DefaultMaxBytes caps the size of a fetched body.
const DefaultMaxBytes = 8 << 20

var (
	// ErrEmptyBody indicates a source answered with no data.
	ErrEmptyBody = errors.New("empty body")
	// ErrBodyTooLarge indicates a body exceeded Config.MaxBytes.
	ErrBodyTooLarge = errors.New("body exceeds size limit")
	// ErrSourcesExhausted indicates every attempt failed and the sample is disabled.
	ErrSourcesExhausted = errors.New("all sources failed")
)

// Config configures retrieval.
type Config struct {
	// URL is the direct location of the CSV. Empty skips network attempts.
	URL string
	// Proxies are tried in order after the direct URL. A proxy containing
	// "{url}" has it replaced by the escaped URL; otherwise the escaped URL
	// is appended.
	Proxies []string
	// Timeout bounds each HTTP request (0 means no timeout).
	Timeout time.Duration
	// Retries is the number of extra tries per attempt.
	Retries int
	// RetryInterval is the initial backoff interval between tries.
	RetryInterval time.Duration
	// MaxBytes caps the body size (DefaultMaxBytes when 0).
	MaxBytes int64
	// DisableSample turns off the built-in sample fallback.
	DisableSample bool
}

// Attempt is one retrieval step.
type Attempt struct {
	// Name identifies the attempt in logs and metrics.
	Name string
	// URL is the requested location.
	URL string
}

// Result is the text obtained from the first successful attempt.
type Result struct {
	Text   string
	Source string
}

// AttemptError records why an attempt failed.
type AttemptError struct {
	Attempt Attempt
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("source %s (%s): %v", e.Attempt.Name, e.Attempt.URL, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Observer is notified after every attempt; err is nil on success.
type Observer func(source string, err error)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithObserver registers an attempt observer.
func WithObserver(o Observer) Option {
	return func(f *Fetcher) { f.observer = o }
}

// Fetcher retrieves CSV text with ordered fallbacks.
type Fetcher struct {
	cfg      Config
	client   *http.Client
	logger   *slog.Logger
	observer Observer
}

// New creates a Fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	f := &Fetcher{
		cfg:    cfg,
		client: http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Attempts lists the network attempts in the order they are tried.
func (f *Fetcher) Attempts() []Attempt {
	target := strings.TrimSpace(f.cfg.URL)
	if target == "" {
		return nil
	}

	attempts := []Attempt{{Name: "direct", URL: target}}
	for i, p := range f.cfg.Proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		attempts = append(attempts, Attempt{
			Name: fmt.Sprintf("proxy-%d", i+1),
			URL:  ProxyURL(p, target),
		})
	}
	return attempts
}

// ProxyURL builds the request URL of target behind proxy.
func ProxyURL(proxy, target string) string {
	escaped := url.QueryEscape(target)
	if strings.Contains(proxy, "{url}") {
		return strings.ReplaceAll(proxy, "{url}", escaped)
	}
	return proxy + escaped
}

// Fetch returns the text of the first successful attempt. Failures fall
// through to the next attempt and end in the built-in sample, so Fetch
// only fails when ctx is done or the sample is disabled.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	var errs []error
	for _, a := range f.Attempts() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		text, err := f.try(ctx, a)
		f.notify(a.Name, err)
		if err == nil {
			f.logger.Debug("fetched series", "source", a.Name, "bytes", len(text))
			return Result{Text: text, Source: a.Name}, nil
		}

		f.logger.Warn("source attempt failed", "source", a.Name, "url", a.URL, "err", err)
		errs = append(errs, &AttemptError{Attempt: a, Err: err})
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if f.cfg.DisableSample {
		if len(errs) == 0 {
			return Result{}, ErrSourcesExhausted
		}
		return Result{}, fmt.Errorf("%w: %w", ErrSourcesExhausted, errors.Join(errs...))
	}

	f.notify(SampleName, nil)
	if len(errs) > 0 {
		f.logger.Info("using built-in sample", "failed_attempts", len(errs))
	}
	return Result{Text: Sample(), Source: SampleName}, nil
}

func (f *Fetcher) notify(source string, err error) {
	if f.observer != nil {
		f.observer(source, err)
	}
}

// try runs one attempt with retries.
func (f *Fetcher) try(ctx context.Context, a Attempt) (string, error) {
	b := backoff.NewExponentialBackOff()
	if f.cfg.RetryInterval > 0 {
		b.InitialInterval = f.cfg.RetryInterval
	}

	var text string
	op := func() error {
		var err error
		text, err = f.get(ctx, a.URL)
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.cfg.Retries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", "einchart/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	// Truncating would drop the newest rows, so an oversized body fails.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > f.cfg.MaxBytes {
		return "", backoff.Permanent(fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, f.cfg.MaxBytes))
	}

	text, err := ReadText(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyBody
	}
	return text, nil
}

// ReadText reads UTF-8 text, dropping a leading byte order mark.
func ReadText(r io.Reader) (string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	b, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
