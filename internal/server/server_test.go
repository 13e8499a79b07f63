package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adani-quant/trading-dashboard/internal/config"
	"github.com/adani-quant/trading-dashboard/internal/db"
)

// writeBarFile writes n synthetic 15-minute bars in the historical CSV
// export layout.
func writeBarFile(t *testing.T, dir, name string, n int) {
	t.Helper()

	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	base := time.Date(2019, 1, 1, 9, 15, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 100 + 10*math.Sin(float64(i)/15)
		ts := base.Add(time.Duration(i) * 15 * time.Minute)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n",
			ts.Format("2006-01-02 15:04:05"),
			price, price+1, price-1, price+0.5, 1000+i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	writeBarFile(t, dir, "ACC-15minute.csv", 260)

	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Symbols = map[string]string{
		"ACC":      "ACC-15minute.csv",
		"ADANIENT": "ADANIENT-15minute.csv", // deliberately absent
	}

	srv := New(cfg, db.NewMemory())
	require.NoError(t, srv.LoadData(context.Background()))
	return srv
}

func get(t *testing.T, srv *Server, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestHandleSymbolsReportsLoadErrors(t *testing.T) {
	srv := newTestServer(t)

	var infos []symbolInfo
	require.Equal(t, http.StatusOK, get(t, srv, "/api/symbols", &infos))
	require.Len(t, infos, 2)

	// Sorted by symbol, so ACC comes first.
	assert.Equal(t, "ACC", infos[0].Symbol)
	assert.Equal(t, 260, infos[0].Candles)
	assert.Empty(t, infos[0].LoadError)

	assert.Equal(t, "ADANIENT", infos[1].Symbol)
	assert.NotEmpty(t, infos[1].LoadError)
}

func TestHandleHealthzDegraded(t *testing.T) {
	srv := newTestServer(t)

	var health healthResponse
	require.Equal(t, http.StatusOK, get(t, srv, "/healthz", &health))
	assert.Equal(t, "degraded", health.Status)
	assert.Equal(t, 1, health.Symbols)
	assert.Contains(t, health.LoadErrors, "ADANIENT")
}

func TestHandleHealthzNoData(t *testing.T) {
	srv := New(config.Default(), db.NewMemory())

	var health healthResponse
	require.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/healthz", &health))
	assert.Equal(t, "no data", health.Status)
}

func TestHandleCandles(t *testing.T) {
	srv := newTestServer(t)

	var resp candleResponse
	require.Equal(t, http.StatusOK, get(t, srv, "/api/candles/ACC", &resp))
	assert.Equal(t, "15m", resp.Timeframe)
	assert.Len(t, resp.Candles, 260)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/candles/ACC?limit=10", &resp))
	assert.Len(t, resp.Candles, 10)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/candles/ACC?timeframe=1h", &resp))
	assert.Equal(t, "1h", resp.Timeframe)
	assert.Less(t, len(resp.Candles), 260)

	// A from bound at the fifth bar drops the first five.
	require.Equal(t, http.StatusOK, get(t, srv, "/api/candles/ACC?from=2019-01-01T10:30:00Z", &resp))
	assert.Len(t, resp.Candles, 255)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/candles/ACC?ha=1", &resp))
	require.Len(t, resp.Candles, 260)
	assert.Equal(t, "heiken_ashi", resp.Candles[0].Source)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/candles/ACC?from=01-2019", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/candles/ACC?timeframe=7m", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/candles/ACC?limit=-1", nil))
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/candles/WIPRO", nil))
}

func TestHandleIndicatorsNullsWarmup(t *testing.T) {
	srv := newTestServer(t)

	var resp struct {
		Symbol     string                `json:"symbol"`
		Timestamps []string              `json:"timestamps"`
		Series     map[string][]*float64 `json:"series"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/indicators/ACC", &resp))
	assert.Equal(t, "ACC", resp.Symbol)
	assert.Len(t, resp.Timestamps, 260)

	sma200, ok := resp.Series["sma_200"]
	require.True(t, ok)
	require.Len(t, sma200, 260)
	assert.Nil(t, sma200[0], "warmup bars serialize as nulls")
	require.NotNil(t, sma200[259])
	assert.Greater(t, *sma200[259], 0.0)
}

func TestHandleBacktestAndSignals(t *testing.T) {
	srv := newTestServer(t)

	var result struct {
		Symbol  string `json:"symbol"`
		Summary struct {
			FinalEquity float64 `json:"final_equity"`
		} `json:"summary"`
		Equity []float64 `json:"equity"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/backtest/ACC", &result))
	assert.Equal(t, "ACC", result.Symbol)
	assert.Len(t, result.Equity, 260)
	assert.Greater(t, result.Summary.FinalEquity, 0.0)

	var signals []json.RawMessage
	require.Equal(t, http.StatusOK, get(t, srv, "/api/signals/ACC", &signals))

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/backtest/WIPRO", nil))
}

func TestHandlePortfolio(t *testing.T) {
	srv := newTestServer(t)

	var p struct {
		Symbols    []string                      `json:"symbols"`
		Cumulative []float64                     `json:"cumulative"`
		PerSymbol  map[string]map[string]float64 `json:"per_symbol"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/portfolio", &p))
	assert.Equal(t, []string{"ACC"}, p.Symbols)
	assert.Len(t, p.Cumulative, 260)

	// Each constituent carries its own metric summary.
	require.Contains(t, p.PerSymbol, "ACC")
	assert.Contains(t, p.PerSymbol["ACC"], "total_return_pct")
}

func TestHandlePortfolioBeforeLoad(t *testing.T) {
	srv := New(config.Default(), db.NewMemory())
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/api/portfolio", nil))
}

func TestLoadDataUsesWarmCache(t *testing.T) {
	dir := t.TempDir()
	writeBarFile(t, dir, "ACC-15minute.csv", 260)

	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Symbols = map[string]string{"ACC": "ACC-15minute.csv"}

	store := db.NewMemory()
	first := New(cfg, store)
	require.NoError(t, first.LoadData(context.Background()))

	// With the candles cached, a later session survives the CSV
	// disappearing.
	require.NoError(t, os.Remove(filepath.Join(dir, "ACC-15minute.csv")))

	second := New(cfg, store)
	require.NoError(t, second.LoadData(context.Background()))

	var resp candleResponse
	require.Equal(t, http.StatusOK, get(t, second, "/api/candles/ACC", &resp))
	assert.Len(t, resp.Candles, 260)
}

func TestHandleEvents(t *testing.T) {
	srv := newTestServer(t)

	var events []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	require.Equal(t, http.StatusOK, get(t, srv, "/api/events?type=backtest", &events))
	require.NotEmpty(t, events)
	assert.Equal(t, "backtest", events[0].Type)
	assert.Contains(t, events[0].Description, "ACC")

	// The missing ADANIENT file lands in the error journal.
	events = nil
	require.Equal(t, http.StatusOK, get(t, srv, "/api/events?type=error", &events))
	require.NotEmpty(t, events)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/events", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/events?type=backtest&from=01-2019", nil))
}

func TestLoadDataFailsWhenNothingLoads(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	srv := New(cfg, db.NewMemory())
	err := srv.LoadData(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no symbols loaded")
}

func TestHandleIndexServesDashboard(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Adani Trading Dashboard")
}
