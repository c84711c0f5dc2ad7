package server

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
)

const exampleCSV = `Date,Estimate,5th Percentile,95th Percentile
1/15/2024,45,28,65
2/15/2024,48,32,68
`

type countingFetcher struct {
	calls atomic.Int32
	text  string
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context) (source.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return source.Result{}, f.err
	}
	return source.Result{Text: f.text, Source: "direct"}, nil
}

func newTestServer(t *testing.T, f einchart.Fetcher, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s := New(f, cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestChartEndpoint(t *testing.T) {
	f := &countingFetcher{text: exampleCSV}
	_, ts := newTestServer(t, f, Config{Build: einchart.DefaultOptions()})

	resp, body := get(t, ts.URL+"/api/chart")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var chart models.Chart
	require.NoError(t, json.Unmarshal(body, &chart))
	require.Equal(t, "direct", chart.Source)
	require.Equal(t, models.AxisScale{Max: 75, Step: 15}, chart.Scale)
	require.Equal(t, []string{"JAN", "FEB"}, chart.Config.Labels)

	// The chart is kept until refreshed.
	get(t, ts.URL+"/api/chart")
	require.Equal(t, int32(1), f.calls.Load())

	resp, _ = get(t, ts.URL+"/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRefreshEndpoint(t *testing.T) {
	f := &countingFetcher{text: exampleCSV}
	_, ts := newTestServer(t, f, Config{})

	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.Equal(t, int32(2), f.calls.Load())
}

func TestRenderEndpoints(t *testing.T) {
	_, ts := newTestServer(t, &countingFetcher{text: exampleCSV}, Config{})

	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/chart.html", "text/html; charset=utf-8", ""},
		{"/chart.png", "image/png", "\x89PNG"},
		{"/chart.svg", "image/svg+xml", ""},
		{"/chart.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK"},
		{"/chart.json", "application/json", "{"},
	}

	for _, tt := range tests {
		resp, body := get(t, ts.URL+tt.path)
		require.Equal(t, http.StatusOK, resp.StatusCode, tt.path)
		require.Equal(t, tt.contentType, resp.Header.Get("Content-Type"), tt.path)
		require.True(t, bytes.HasPrefix(body, []byte(tt.prefix)), tt.path)
	}

	resp, _ := get(t, ts.URL+"/chart.pdf")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRenderSingleObservation(t *testing.T) {
	text := "Date,Estimate,5th Percentile,95th Percentile\n1/15/2024,45,28,65\n"
	_, ts := newTestServer(t, &countingFetcher{text: text}, Config{})

	for _, path := range []string{"/chart.png", "/chart.svg", "/chart.html", "/chart.xlsx"} {
		resp, body := get(t, ts.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
}

func TestRenderNoData(t *testing.T) {
	_, ts := newTestServer(t, &countingFetcher{text: "Date,Estimate\nnever,1\n"}, Config{})

	resp, body := get(t, ts.URL+"/chart.png")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, string(body), "no_data")
}

func TestBuildFailure(t *testing.T) {
	s, ts := newTestServer(t, &countingFetcher{err: einchart.ErrSampleDisabled}, Config{})

	resp, body := get(t, ts.URL+"/api/chart")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, string(body), "build_failed")

	require.Equal(t, 1.0, testCounterValue(t, s.metrics, "einchart_build_errors_total"))
}

func TestAnchorEndpoint(t *testing.T) {
	_, ts := newTestServer(t, &countingFetcher{text: exampleCSV}, Config{Build: einchart.DefaultOptions()})

	body := `{"active":[{"series":"5th Percentile","position":{"x":10,"y":20}},{"series":"HighBound","position":{"x":30,"y":60}}],"cursor":{"x":0,"y":0}}`
	resp, err := http.Post(ts.URL+"/api/anchor", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Anchor models.Point `json:"anchor"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, models.Point{X: 10, Y: 30}, out.Anchor)

	bad, err := http.Post(ts.URL+"/api/anchor", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	bad.Body.Close()
	require.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s, ts := newTestServer(t, &countingFetcher{text: exampleCSV}, Config{})
	s.metrics.ObserveFetch("direct", nil)
	s.metrics.ObserveFetch("proxy-1", errors.New("boom"))

	get(t, ts.URL+"/api/chart")
	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	text := string(body)
	require.Contains(t, text, `einchart_fetch_attempts_total{result="ok",source="direct"} 1`)
	require.Contains(t, text, `einchart_fetch_attempts_total{result="error",source="proxy-1"} 1`)
	require.Contains(t, text, "einchart_build_duration_seconds_count 1")
	require.Contains(t, text, "einchart_observations 2")
}

func TestRunRefreshes(t *testing.T) {
	f := &countingFetcher{text: exampleCSV}
	s := New(f, Config{Refresh: 5 * time.Millisecond}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return f.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	chart, err := s.Chart(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, chart.Series.Len())
}

func testCounterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
