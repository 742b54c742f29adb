package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-archive/internal/config"
	"github.com/i474232898/weather-archive/internal/weather"
)

func testConfig(t *testing.T, baseURL string) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		DataSource:   "http",
		DataBaseURL:  baseURL,
		StoreDriver:  "bolt",
		StorePath:    filepath.Join(t.TempDir(), "weather.db"),
		HTTPTimeout:  time.Second,
		FetchTimeout: 5 * time.Second,
		ChartWidth:   800,
		ChartHeight:  450,
		DefaultRange: weather.YearRange{Start: 1900, End: 1901},
	}
}

func archiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/temperature.json":
			_, _ = w.Write([]byte(`[{"t":"1900-01","v":1},{"t":"1900-02","v":2},{"t":"1901","v":4.5},{"t":"1950","v":7}]`))
		case "/precipitation.json":
			_, _ = w.Write([]byte(`[{"t":"1900","v":600}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSeriesCommand(t *testing.T) {
	cfg := testConfig(t, archiveServer(t).URL)

	var out bytes.Buffer
	app := newApp(cfg)
	app.Writer = &out

	err := app.Run(context.Background(), []string{"weather-archive", "series", "--series", "temperature"})
	require.NoError(t, err)
	assert.Equal(t, "1900\t1.50\n1901\t4.50\n", out.String())
}

func TestRenderCommand(t *testing.T) {
	cfg := testConfig(t, archiveServer(t).URL)
	out := filepath.Join(t.TempDir(), "chart.svg")

	err := newApp(cfg).Run(context.Background(), []string{
		"weather-archive", "render", "--series", "precipitation", "--format", "svg", "--out", out,
	})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestRangeArgsRejectsBadInput(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	tests := [][]string{
		{"weather-archive", "series", "--series", "humidity"},
		{"weather-archive", "series", "--start", "19x0"},
		{"weather-archive", "series", "--start", "2000", "--end", "1990"},
	}
	for _, args := range tests {
		err := newApp(cfg).Run(context.Background(), args)
		assert.Error(t, err, "%v", args)
	}
}

func TestWarmCommandFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	cfg := testConfig(t, srv.URL)

	err := newApp(cfg).Run(context.Background(), []string{"weather-archive", "warm"})
	var fe *weather.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}
