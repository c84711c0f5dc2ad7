package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const csvBody = "Date,Estimate,5th Percentile,95th Percentile\n1/15/2024,45,28,65\n"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type attemptLog struct {
	sources []string
	failed  []bool
}

func (l *attemptLog) observe(source string, err error) {
	l.sources = append(l.sources, source)
	l.failed = append(l.failed, err != nil)
}

func TestFetchDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "\ufeff"+csvBody)
	}))
	defer srv.Close()

	var log attemptLog
	f := New(Config{URL: srv.URL}, WithLogger(quietLogger()), WithObserver(log.observe))
	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "direct", res.Source)
	require.Equal(t, csvBody, res.Text)
	require.Equal(t, []string{"direct"}, log.sources)
}

func TestFetchFallsBackToProxy(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer direct.Close()

	var proxied atomic.Value
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Store(r.URL.Query().Get("url"))
		_, _ = io.WriteString(w, csvBody)
	}))
	defer proxy.Close()

	var log attemptLog
	f := New(Config{
		URL:     direct.URL + "/data.csv",
		Proxies: []string{"", proxy.URL + "/raw?url={url}"},
	}, WithLogger(quietLogger()), WithObserver(log.observe))

	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "proxy-2", res.Source)
	require.Equal(t, direct.URL+"/data.csv", proxied.Load())
	require.Equal(t, []string{"direct", "proxy-2"}, log.sources)
	require.Equal(t, []bool{true, false}, log.failed)
}

func TestFetchFallsBackToSample(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "  \n")
	}))
	defer empty.Close()

	var log attemptLog
	f := New(Config{URL: empty.URL, Proxies: []string{empty.URL + "/?u="}},
		WithLogger(quietLogger()), WithObserver(log.observe))

	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, SampleName, res.Source)
	require.Equal(t, Sample(), res.Text)
	require.Equal(t, []string{"direct", "proxy-1", SampleName}, log.sources)
}

func TestFetchWithoutURLUsesSample(t *testing.T) {
	res, err := New(Config{}, WithLogger(quietLogger())).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, SampleName, res.Source)
	require.True(t, strings.HasPrefix(res.Text, "Date,Estimate,5th Percentile,95th Percentile"))
}

func TestFetchSampleDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, DisableSample: true}, WithLogger(quietLogger()))
	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSourcesExhausted)

	var attemptErr *AttemptError
	require.True(t, errors.As(err, &attemptErr))
	require.Equal(t, "direct", attemptErr.Attempt.Name)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchSampleDisabledWithoutURL(t *testing.T) {
	f := New(Config{DisableSample: true}, WithLogger(quietLogger()))
	_, err := f.Fetch(context.Background())
	require.EqualError(t, err, "all sources failed")
}

func TestFetchBodyTooLarge(t *testing.T) {
	body := "Date,Estimate,5th Percentile,95th Percentile\n" +
		"1/1/2024,40,30,50\n" +
		"3/15/2024,99,98,100\n"
	var hits atomic.Int32
	large := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, body)
	}))
	defer large.Close()

	cfg := Config{URL: large.URL, MaxBytes: int64(len(body) - 12), Retries: 2, RetryInterval: time.Millisecond}

	var log attemptLog
	res, err := New(cfg, WithLogger(quietLogger()), WithObserver(log.observe)).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, SampleName, res.Source)
	require.Equal(t, []string{"direct", SampleName}, log.sources)
	require.Equal(t, []bool{true, false}, log.failed)
	require.Equal(t, int32(1), hits.Load())

	cfg.DisableSample = true
	_, err = New(cfg, WithLogger(quietLogger())).Fetch(context.Background())
	require.ErrorIs(t, err, ErrBodyTooLarge)
	require.ErrorIs(t, err, ErrSourcesExhausted)

	// A body exactly at the limit is accepted whole.
	cfg.MaxBytes = int64(len(body))
	res, err = New(cfg, WithLogger(quietLogger())).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "direct", res.Source)
	require.True(t, strings.HasSuffix(res.Text, "3/15/2024,99,98,100\n"))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, csvBody)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, Retries: 2, RetryInterval: time.Millisecond}, WithLogger(quietLogger()))
	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "direct", res.Source)
	require.Equal(t, int32(3), hits.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(Config{URL: srv.URL, Retries: 3, RetryInterval: time.Millisecond}, WithLogger(quietLogger()))
	res, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, SampleName, res.Source)
	require.Equal(t, int32(1), hits.Load())
}

func TestFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{URL: "http://127.0.0.1:1/data.csv"}, WithLogger(quietLogger()))
	_, err := f.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProxyURL(t *testing.T) {
	target := "https://example.com/a b.csv?x=1"
	require.Equal(t, "https://p.example/?u=https%3A%2F%2Fexample.com%2Fa+b.csv%3Fx%3D1",
		ProxyURL("https://p.example/?u=", target))
	require.Equal(t, "https://p.example/get?url=https%3A%2F%2Fexample.com%2Fa+b.csv%3Fx%3D1&raw=1",
		ProxyURL("https://p.example/get?url={url}&raw=1", target))
}

func TestReadText(t *testing.T) {
	text, err := ReadText(strings.NewReader("\ufeffDate,Estimate\n"))
	require.NoError(t, err)
	require.Equal(t, "Date,Estimate\n", text)

	text, err = ReadText(strings.NewReader("plain"))
	require.NoError(t, err)
	require.Equal(t, "plain", text)
}
