package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/tfutils"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("encoding response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) symbol(r *http.Request) (*symbolData, string, bool) {
	name := mux.Vars(r)["symbol"]
	s.mu.RLock()
	defer s.mu.RUnlock()
	sd, ok := s.data[name]
	return sd, name, ok
}

type symbolInfo struct {
	Symbol    string `json:"symbol"`
	Strategy  string `json:"strategy"`
	Candles   int    `json:"candles"`
	FirstBar  string `json:"first_bar,omitempty"`
	LastBar   string `json:"last_bar,omitempty"`
	LoadError string `json:"load_error,omitempty"`
}

// handleSymbols lists every configured symbol with its load status.
// Symbols that failed to load appear with the error instead of data.
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []symbolInfo
	for symbol, sd := range s.data {
		info := symbolInfo{
			Symbol:   symbol,
			Strategy: sd.Result.Strategy,
			Candles:  len(sd.Candles),
		}
		if len(sd.Candles) > 0 {
			info.FirstBar = sd.Candles[0].Timestamp.Format(time.RFC3339)
			info.LastBar = sd.Candles[len(sd.Candles)-1].Timestamp.Format(time.RFC3339)
		}
		out = append(out, info)
	}
	for symbol, msg := range s.loadErrs {
		out = append(out, symbolInfo{Symbol: symbol, LoadError: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	writeJSON(w, http.StatusOK, out)
}

type candleResponse struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	Candles   []candle.Candle `json:"candles"`
}

// queryTime accepts RFC3339 or a plain date.
func queryTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return t.UTC(), nil
}

// handleCandles returns the bars, optionally windowed via ?from= and
// ?to=, aggregated to a higher timeframe via ?timeframe=, converted to
// Heiken Ashi via ?ha=1, and truncated via ?limit=.
func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	sd, name, ok := s.symbol(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+name)
		return
	}
	q := r.URL.Query()

	var from, to time.Time
	if v := q.Get("from"); v != "" {
		t, err := queryTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := queryTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to = t
	}

	candles := sd.Candles
	if !from.IsZero() || !to.IsZero() {
		candles = candle.FilterRange(candles, from, to)
	}

	timeframe := s.cfg.Timeframe
	if tf := q.Get("timeframe"); tf != "" && tf != timeframe {
		if !tfutils.IsValidTimeframe(tf) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported timeframe %s, supported: %s",
				tf, strings.Join(tfutils.GetSupportedTimeframes(), ", ")))
			return
		}
		aggregated, err := candle.Aggregate(candles, tf)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		candles = aggregated
		timeframe = tf
	}

	if q.Get("ha") == "1" {
		candles = candle.GenerateHeikenAshiCandles(candles)
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+v)
			return
		}
		if limit < len(candles) {
			candles = candles[len(candles)-limit:]
		}
	}

	writeJSON(w, http.StatusOK, candleResponse{Symbol: name, Timeframe: timeframe, Candles: candles})
}

// jsonSeries serializes NaN and infinite values as nulls, which plain
// float64 slices cannot pass through encoding/json.
type jsonSeries []float64

func (s jsonSeries) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(s)*8+2)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
		} else {
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
	}
	return append(buf, ']'), nil
}

type indicatorResponse struct {
	Symbol     string                `json:"symbol"`
	Timestamps []string              `json:"timestamps"`
	Series     map[string]jsonSeries `json:"series"`
}

// handleIndicators returns the full indicator snapshot. Warmup bars
// appear as nulls.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	sd, name, ok := s.symbol(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+name)
		return
	}

	timestamps := make([]string, len(sd.Candles))
	for i, c := range sd.Candles {
		timestamps[i] = c.Timestamp.Format(time.RFC3339)
	}

	snap := sd.Snapshot
	writeJSON(w, http.StatusOK, indicatorResponse{
		Symbol:     name,
		Timestamps: timestamps,
		Series: map[string]jsonSeries{
			"sma_20":        snap.SMA20,
			"sma_50":        snap.SMA50,
			"sma_100":       snap.SMA100,
			"sma_200":       snap.SMA200,
			"ema_20":        snap.EMA20,
			"ema_50":        snap.EMA50,
			"ema_100":       snap.EMA100,
			"rsi_14":        snap.RSI14,
			"macd":          snap.MACD,
			"macd_signal":   snap.MACDSignal,
			"macd_hist":     snap.MACDHist,
			"bb_upper":      snap.BBUpper,
			"bb_middle":     snap.BBMiddle,
			"bb_lower":      snap.BBLower,
			"adx":           snap.ADX,
			"plus_di":       snap.PlusDI,
			"minus_di":      snap.MinusDI,
			"atr_14":        snap.ATR14,
			"atr_mean_20":   snap.ATRMean20,
			"volume_sma_20": snap.VolumeSMA20,
			"volume_ratio":  snap.VolumeRatio,
			"roc_5":         snap.ROC5,
			"roc_20":        snap.ROC20,
			"stoch_k":       snap.StochK,
			"stoch_d":       snap.StochD,
			"high_20":       snap.High20,
			"high_30":       snap.High30,
		},
	})
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	sd, name, ok := s.symbol(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+name)
		return
	}
	writeJSON(w, http.StatusOK, sd.Signals)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	sd, name, ok := s.symbol(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+name)
		return
	}
	writeJSON(w, http.StatusOK, sd.Patterns)
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	sd, name, ok := s.symbol(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown symbol: "+name)
		return
	}
	writeJSON(w, http.StatusOK, sd.Result)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.portfolio == nil {
		writeError(w, http.StatusServiceUnavailable, "portfolio not computed")
		return
	}
	writeJSON(w, http.StatusOK, s.portfolio)
}

// handleEvents returns the journal entries of one type, windowed via
// ?from= and ?to= (default: everything up to now).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eventType := q.Get("type")
	if eventType == "" {
		writeError(w, http.StatusBadRequest, "missing type parameter")
		return
	}

	var from time.Time
	to := time.Now().UTC().Add(time.Second)
	if v := q.Get("from"); v != "" {
		t, err := queryTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := queryTime(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to = t
	}

	events, err := s.store.GetEvents(r.Context(), eventType, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

type healthResponse struct {
	Status     string            `json:"status"`
	Symbols    int               `json:"symbols"`
	LoadErrors map[string]string `json:"load_errors,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := "ok"
	code := http.StatusOK
	if len(s.data) == 0 {
		status = "no data"
		code = http.StatusServiceUnavailable
	} else if len(s.loadErrs) > 0 {
		status = "degraded"
	}
	writeJSON(w, code, healthResponse{
		Status:     status,
		Symbols:    len(s.data),
		LoadErrors: s.loadErrs,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := webFS.ReadFile("web/index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dashboard page missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}
