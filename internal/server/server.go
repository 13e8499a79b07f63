// Package server exposes the dashboard UI and the JSON API over HTTP.
package server

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/adani-quant/trading-dashboard/internal/backtest"
	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/config"
	"github.com/adani-quant/trading-dashboard/internal/db"
	"github.com/adani-quant/trading-dashboard/internal/indicator"
	"github.com/adani-quant/trading-dashboard/internal/journal"
	"github.com/adani-quant/trading-dashboard/internal/pattern"
	"github.com/adani-quant/trading-dashboard/internal/portfolio"
	"github.com/adani-quant/trading-dashboard/internal/strategy"
)

//go:embed web
var webFS embed.FS

// symbolData holds everything computed for one symbol.
type symbolData struct {
	Candles  []candle.Candle
	Snapshot *indicator.Snapshot
	Signals  []strategy.Signal
	Result   *backtest.Result
	Patterns []pattern.Match
}

// Server computes and serves the dashboard state.
type Server struct {
	cfg   config.Config
	store db.Storage

	mu        sync.RWMutex
	data      map[string]*symbolData
	loadErrs  map[string]string
	portfolio *portfolio.Analysis

	httpServer *http.Server
}

// New creates a server. Call LoadData before Start.
func New(cfg config.Config, store db.Storage) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		data:     make(map[string]*symbolData),
		loadErrs: make(map[string]string),
	}
}

// LoadData ingests the configured symbols and computes indicators,
// signals, backtests, patterns, and the combined portfolio. Candles
// come from the warm cache when a prior session stored them; the CSV
// is only parsed on a cache miss. Per-symbol failures are recorded and
// reported by the API instead of aborting the whole load; LoadData
// only errors when no symbol loads at all.
func (s *Server) LoadData(ctx context.Context) error {
	from, _ := s.cfg.FromTime()
	to, _ := s.cfg.ToTime()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]*symbolData)
	s.loadErrs = make(map[string]string)

	var results []*backtest.Result
	for symbol, file := range s.cfg.Symbols {
		candles := s.cachedCandles(ctx, symbol)
		if len(candles) == 0 {
			var err error
			candles, err = candle.LoadCSVFile(filepath.Join(s.cfg.DataDir, file), symbol, s.cfg.Timeframe)
			if err != nil {
				s.loadErrs[symbol] = err.Error()
				s.journal(ctx, "error", fmt.Sprintf("loading %s: %v", symbol, err), nil)
				continue
			}
		}
		candles = candle.FilterRange(candles, from, to)
		sd, err := s.buildSymbol(ctx, symbol, candles)
		if err != nil {
			s.loadErrs[symbol] = err.Error()
			s.journal(ctx, "error", fmt.Sprintf("processing %s: %v", symbol, err), nil)
			continue
		}
		s.data[symbol] = sd
		results = append(results, sd.Result)
	}

	if len(s.data) == 0 {
		return fmt.Errorf("no symbols loaded: %d of %d failed", len(s.loadErrs), len(s.cfg.Symbols))
	}

	combined, err := portfolio.Combine(results)
	if err != nil {
		return fmt.Errorf("combining portfolio: %w", err)
	}
	s.portfolio = combined

	log.WithFields(log.Fields{
		"symbols": len(s.data),
		"errors":  len(s.loadErrs),
	}).Info("data load complete")
	return nil
}

// cachedCandles returns a symbol's candles from the store, or nil on a
// miss so the caller falls back to the CSV.
func (s *Server) cachedCandles(ctx context.Context, symbol string) []candle.Candle {
	latest, err := s.store.GetLatestCandle(ctx, symbol, s.cfg.Timeframe)
	if err != nil || latest == nil {
		return nil
	}
	end := latest.Timestamp.Add(time.Nanosecond)

	count, err := s.store.GetCandleCount(ctx, symbol, s.cfg.Timeframe, time.Time{}, end)
	if err != nil || count == 0 {
		return nil
	}
	candles, err := s.store.GetCandles(ctx, symbol, s.cfg.Timeframe, "", time.Time{}, end)
	if err != nil {
		log.WithField("symbol", symbol).WithError(err).Warn("Reading candle cache failed")
		return nil
	}
	log.WithFields(log.Fields{"symbol": symbol, "bars": len(candles)}).Info("Serving candles from warm cache")
	return candles
}

func (s *Server) buildSymbol(ctx context.Context, symbol string, candles []candle.Candle) (*symbolData, error) {
	if err := s.store.SaveCandles(ctx, candles); err != nil {
		return nil, fmt.Errorf("caching candles: %w", err)
	}

	snap, err := indicator.NewSnapshot(candles)
	if err != nil {
		return nil, fmt.Errorf("computing indicators: %w", err)
	}

	strat, err := strategy.ForSymbol(symbol)
	if err != nil {
		return nil, err
	}

	result, err := backtest.Run(strat, candles, s.cfg.StartingCapital)
	if err != nil {
		return nil, err
	}

	s.journal(ctx, "backtest", fmt.Sprintf("%s: %d signals, %d trades", symbol, len(result.Signals), len(result.Trades)), map[string]any{
		"symbol":   symbol,
		"strategy": strat.Name(),
		"trades":   len(result.Trades),
	})

	return &symbolData{
		Candles:  candles,
		Snapshot: snap,
		Signals:  result.Signals,
		Result:   result,
		Patterns: pattern.DetectAll(candles),
	}, nil
}

func (s *Server) journal(ctx context.Context, eventType, description string, data map[string]any) {
	err := s.store.LogEvent(ctx, journal.Event{
		Time:        time.Now(),
		Type:        eventType,
		Description: description,
		Data:        data,
	})
	if err != nil {
		log.WithError(err).Warn("journaling event failed")
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/symbols", s.handleSymbols).Methods(http.MethodGet)
	api.HandleFunc("/candles/{symbol}", s.handleCandles).Methods(http.MethodGet)
	api.HandleFunc("/indicators/{symbol}", s.handleIndicators).Methods(http.MethodGet)
	api.HandleFunc("/signals/{symbol}", s.handleSignals).Methods(http.MethodGet)
	api.HandleFunc("/patterns/{symbol}", s.handlePatterns).Methods(http.MethodGet)
	api.HandleFunc("/backtest/{symbol}", s.handleBacktest).Methods(http.MethodGet)
	api.HandleFunc("/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	return r
}

// Start blocks serving HTTP until the context is canceled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.ListenAddr).Info("dashboard listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}
