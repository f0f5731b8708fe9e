package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/query"
	"budget/internal/report"
	"budget/internal/services"
	"budget/internal/storage"
)

type transactionResponse struct {
	DisplayID string    `json:"display_id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Cents     int64     `json:"amount_cents"`
	CreatedAt time.Time `json:"created_at"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		DisplayID: tx.DisplayID,
		Type:      string(tx.Type),
		Category:  tx.Category,
		Amount:    tx.Amount.String(),
		Cents:     tx.Amount.Cents,
		CreatedAt: tx.CreatedAt,
	}
}

type recordRequest struct {
	Type     string      `json:"type"`
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
}

type pageResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	TotalCount   int                   `json:"total_count"`
	TotalPages   int                   `json:"total_pages"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
}

type totalsResponse struct {
	IncomeCents  int64 `json:"income_cents"`
	ExpenseCents int64 `json:"expense_cents"`
	BalanceCents int64 `json:"balance_cents"`
}

type categoryTotalResponse struct {
	Type       string `json:"type"`
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
}

// handleTransactions dispatches /transactions by method: POST records a
// new entry, GET lists with filters, sorting and pagination.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleRecord(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: must be a positive number with at most two decimals")
		return
	}

	tx, err := s.svc.Record(r.Context(), uid, core.TransactionType(req.Type), strings.TrimSpace(req.Category), amount)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var f query.Filter
	f.Category = strings.TrimSpace(r.URL.Query().Get("category"))

	if v := strings.TrimSpace(r.URL.Query().Get("start_date")); v != "" {
		from, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date: expected YYYY-MM-DD")
			return
		}
		f.From = from
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end_date")); v != "" {
		to, err := parseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date: expected YYYY-MM-DD")
			return
		}
		// The whole end day is part of the range.
		f.To = to.Add(24*time.Hour - time.Nanosecond)
	}

	sort := query.Sort(strings.TrimSpace(r.URL.Query().Get("sort")))
	p := query.Page{
		Number: queryInt(r, "page", 1),
		Size:   queryInt(r, "page_size", s.cfg.DefaultPageSize),
	}

	page, err := s.svc.Query(r.Context(), uid, f, sort, p)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	resp := pageResponse{
		Transactions: make([]transactionResponse, 0, len(page.Transactions)),
		TotalCount:   page.TotalCount,
		TotalPages:   page.TotalPages,
		Page:         page.Number,
		PageSize:     page.Size,
	}
	for _, tx := range page.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(tx))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	tx, err := s.svc.Undo(r.Context(), uid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	totals, err := s.svc.Totals(r.Context(), uid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, totalsResponse{
		IncomeCents:  totals.Income.Cents,
		ExpenseCents: totals.Expense.Cents,
		BalanceCents: totals.Balance.Cents,
	})
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rows, err := s.svc.CategoryTotals(r.Context(), uid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	typeFilter := strings.TrimSpace(r.URL.Query().Get("type"))
	resp := make([]categoryTotalResponse, 0, len(rows))
	for _, row := range rows {
		if typeFilter != "" && string(row.Type) != typeFilter {
			continue
		}
		resp = append(resp, categoryTotalResponse{
			Type:       string(row.Type),
			Category:   row.Category,
			TotalCents: row.Total.Cents,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleExpenseChart returns expense aggregates shaped for rendering:
// display labels and stable colors alongside the raw values.
func (s *Server) handleExpenseChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rows, err := s.svc.CategoryTotals(r.Context(), uid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	chart := report.Project(report.FilterByType(rows, core.Expense))
	writeJSON(w, http.StatusOK, chart)
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := applog.FromContext(r.Context())

	switch {
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyUser):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrNothingToUndo):
		writeError(w, http.StatusNotFound, "No transactions found to undo.")
	case errors.Is(err, storage.ErrTimeout):
		logger.ErrorContext(r.Context(), "Store timed out", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusGatewayTimeout, "the ledger store timed out")
	default:
		logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
