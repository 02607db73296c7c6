package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/networth-dev/networth/internal/model"
	"github.com/networth-dev/networth/internal/prices"
)

// GET /prices/quote/{symbol}
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.oracle.Quote(r.Context(), r.PathValue("symbol"))
	if err != nil {
		if errors.Is(err, prices.ErrQuoteNotFound) {
			httpError(w, http.StatusNotFound, err.Error())
			return
		}
		httpError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// POST /prices/quotes  body {"symbols": [...]}
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.oracle.Quotes(r.Context(), req.Symbols))
}

// GET /prices/history/{symbol}?period=
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1m"
	}
	points, err := s.oracle.History(r.Context(), r.PathValue("symbol"), period)
	if err != nil {
		httpError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// GET /prices/search/{query}
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches, err := s.oracle.Search(r.Context(), r.PathValue("query"))
	if err != nil {
		httpError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// GET /prices/dashboard/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.engine.Summary(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// GET /prices/portfolio/history?account_id=&period=
func (s *Server) handlePortfolioHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := optionalID(r.URL.Query().Get("account_id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1y"
	}

	points, err := s.engine.History(r.Context(), accountID, period)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// GET /prices/daily-wealth?start=&end=
func (s *Server) handleDailyWealthList(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = time.Parse(model.DateFormat, v); err != nil {
			httpError(w, http.StatusBadRequest, "invalid start date: "+err.Error())
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = time.Parse(model.DateFormat, v); err != nil {
			httpError(w, http.StatusBadRequest, "invalid end date: "+err.Error())
			return
		}
	}

	rows, err := s.store.ListDailyWealth(start, end)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// POST /prices/daily-wealth triggers today's snapshot.
func (s *Server) handleDailyWealthWrite(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshotter.Run(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// PUT /rates  body {"from": "USD", "to": "EUR", "rate": 0.92}
func (s *Server) handleRateUpsert(w http.ResponseWriter, r *http.Request) {
	var rate model.CurrencyRate
	if err := json.NewDecoder(r.Body).Decode(&rate); err != nil {
		httpError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}
	if rate.From == "" || rate.To == "" || rate.Rate <= 0 {
		httpError(w, http.StatusBadRequest, "from, to and a positive rate are required")
		return
	}
	if err := s.store.UpsertRate(rate); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rate)
}
