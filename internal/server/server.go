// Package server exposes the valuation engine, the price oracle and
// the import pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/importer"
	"github.com/networth-dev/networth/internal/prices"
	"github.com/networth-dev/networth/internal/store"
	"github.com/networth-dev/networth/internal/valuation"
)

// Server is the HTTP adapter over the core services.
type Server struct {
	store       *store.Store
	oracle      *prices.Oracle
	engine      *valuation.Engine
	snapshotter *valuation.Snapshotter
	pipeline    *importer.Pipeline
	logger      *zap.Logger
	mux         *http.ServeMux
}

// New wires the routes over the given services.
func New(st *store.Store, oracle *prices.Oracle, engine *valuation.Engine, snapshotter *valuation.Snapshotter, pipeline *importer.Pipeline, logger *zap.Logger) *Server {
	s := &Server{
		store:       st,
		oracle:      oracle,
		engine:      engine,
		snapshotter: snapshotter,
		pipeline:    pipeline,
		logger:      logger,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /prices/quote/{symbol}", s.handleQuote)
	s.mux.HandleFunc("POST /prices/quotes", s.handleQuotes)
	s.mux.HandleFunc("GET /prices/history/{symbol}", s.handleHistory)
	s.mux.HandleFunc("GET /prices/search/{query}", s.handleSearch)
	s.mux.HandleFunc("GET /prices/dashboard/summary", s.handleSummary)
	s.mux.HandleFunc("GET /prices/portfolio/history", s.handlePortfolioHistory)
	s.mux.HandleFunc("GET /prices/daily-wealth", s.handleDailyWealthList)
	s.mux.HandleFunc("POST /prices/daily-wealth", s.handleDailyWealthWrite)

	s.mux.HandleFunc("GET /transactions", s.handleTransactionsList)
	s.mux.HandleFunc("POST /transactions", s.handleTransactionCreate)
	s.mux.HandleFunc("DELETE /transactions/{id}", s.handleTransactionDelete)
	s.mux.HandleFunc("POST /transactions/import/csv", s.handleImportCSV)
	s.mux.HandleFunc("POST /transactions/import/detect", s.handleImportDetect)
	s.mux.HandleFunc("GET /transactions/export/csv", s.handleExportCSV)

	s.mux.HandleFunc("GET /accounts", s.handleAccountsList)
	s.mux.HandleFunc("POST /accounts", s.handleAccountCreate)
	s.mux.HandleFunc("DELETE /accounts/{id}", s.handleAccountDelete)

	s.mux.HandleFunc("PUT /rates", s.handleRateUpsert)
}

// ServeHTTP implements http.Handler with request logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	begin := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug("http request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("took", time.Since(begin)))
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps store lookups to 404 and everything else to 500.
func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
