package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/importer"
	"github.com/networth-dev/networth/internal/model"
)

// optionalID parses an id query value; empty means 0 (all).
func optionalID(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account_id %q", v)
	}
	return id, nil
}

// GET /transactions?account_id=
func (s *Server) handleTransactionsList(w http.ResponseWriter, r *http.Request) {
	accountID, err := optionalID(r.URL.Query().Get("account_id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.store.ListTransactions(accountID)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

type transactionRequest struct {
	AccountID int64  `json:"account_id"`
	Symbol    string `json:"symbol"`
	Type      string `json:"type"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	Fee       string `json:"fee"`
	Currency  string `json:"currency"`
	Date      string `json:"date"`
	Notes     string `json:"notes"`
}

// POST /transactions
func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.store.GetAccount(t.AccountID)
	if err != nil {
		httpError(w, statusFor(err), fmt.Sprintf("account %d: %v", t.AccountID, err))
		return
	}
	if t.Currency == "" {
		t.Currency = account.Currency
	}

	id, err := s.store.InsertTransaction(t)
	if err != nil {
		httpError(w, http.StatusConflict, err.Error())
		return
	}
	t.ID = id
	writeJSON(w, http.StatusCreated, t)
}

func (req transactionRequest) toTransaction() (model.Transaction, error) {
	t := model.Transaction{
		AccountID: req.AccountID,
		Symbol:    strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Type:      model.TxType(req.Type),
		Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
		Notes:     req.Notes,
	}
	if t.AccountID <= 0 {
		return t, fmt.Errorf("account_id is required")
	}
	if t.Symbol == "" {
		return t, fmt.Errorf("symbol is required")
	}
	if !t.Type.Valid() {
		return t, fmt.Errorf("unknown transaction type %q", req.Type)
	}

	var err error
	if t.Quantity, err = decimal.NewFromString(req.Quantity); err != nil {
		return t, fmt.Errorf("invalid quantity %q", req.Quantity)
	}
	if t.Price, err = decimal.NewFromString(req.Price); err != nil {
		return t, fmt.Errorf("invalid price %q", req.Price)
	}
	if req.Fee != "" {
		if t.Fee, err = decimal.NewFromString(req.Fee); err != nil {
			return t, fmt.Errorf("invalid fee %q", req.Fee)
		}
	}
	if t.Quantity.IsNegative() || t.Price.IsNegative() {
		return t, fmt.Errorf("quantity and price must not be negative")
	}

	day, err := time.Parse(model.DateFormat, req.Date)
	if err != nil {
		return t, fmt.Errorf("invalid date %q, want YYYY-MM-DD", req.Date)
	}
	t.Date = day
	return t, nil
}

// DELETE /transactions/{id}
func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := s.store.DeleteTransaction(id); err != nil {
		httpError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// maxImportSize bounds uploaded CSVs (32 MiB).
const maxImportSize = 32 << 20

// POST /transactions/import/csv  multipart: file, account_id, format?
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	accountID, err := optionalID(r.FormValue("account_id"))
	if err != nil || accountID == 0 {
		httpError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()

	format := importer.Format(r.FormValue("format"))
	result, err := s.pipeline.Run(accountID, file, format)
	if err != nil {
		httpError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /transactions/import/detect  multipart: file
func (s *Server) handleImportDetect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()

	format, headers, err := importer.DetectFormat(file)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"format":  format,
		"headers": headers,
	})
}

// GET /transactions/export/csv?account_id=
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	accountID, err := optionalID(r.URL.Query().Get("account_id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.ListTransactions(accountID)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	accounts, err := s.store.ListAccounts()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := importer.ExportCSV(w, txs, func(id int64) string { return names[id] }); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}
