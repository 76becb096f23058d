package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mananladha/expense-tracker/internal/auth"
	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/storage"
)

type transactionJSON struct {
	ID       int64      `json:"id"`
	Type     string     `json:"type"`
	Amount   core.Money `json:"amount"`
	Mode     string     `json:"mode"`
	ModeName string     `json:"modeName"`
	Item     string     `json:"item"`
	Date     string     `json:"date"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:       t.ID,
		Type:     string(t.Type),
		Amount:   t.Amount,
		Mode:     t.Mode,
		ModeName: t.ModeName,
		Item:     t.Item,
		Date:     t.Date.String(),
	}
}

func toTransactionList(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	txs, err := s.repo.ListTransactions(r.Context(), userID, storage.TransactionFilter{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction listing failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error fetching transactions")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionList(txs))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body struct {
		Type     string     `json:"type"`
		Amount   core.Money `json:"amount"`
		Mode     string     `json:"mode"`
		ModeName string     `json:"modeName"`
		Item     string     `json:"item"`
		Date     string     `json:"date"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.Type == "" || body.Amount.Cents == 0 || body.Mode == "" || body.Item == "" || body.Date == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	date, err := core.ParseDate(body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	tx := core.Transaction{
		UserID:   userID,
		Type:     core.TransactionType(body.Type),
		Amount:   body.Amount,
		Mode:     sanitizeInput(body.Mode),
		ModeName: sanitizeInput(body.ModeName),
		Item:     sanitizeInput(body.Item),
		Date:     date,
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.repo.CreateTransaction(r.Context(), &tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction creation failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error creating transaction")
		return
	}

	tx.ID = id
	if tx.ModeName == "" {
		tx.ModeName = tx.Mode
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}

	if err := s.repo.DeleteTransaction(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Transaction deletion failed",
			applog.FieldUserID, userID, "id", id, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error deleting transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

func (s *Server) handleFilterTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	q := r.URL.Query()
	var filter storage.TransactionFilter

	if t := q.Get("type"); t != "" && t != "all" {
		txType := core.TransactionType(t)
		if err := txType.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid transaction type")
			return
		}
		filter.Type = txType
	}
	if m := q.Get("mode"); m != "" {
		filter.Mode = m
	}

	// Range bounds only apply as a pair, as in the original filter API.
	if startStr, endStr := q.Get("startDate"), q.Get("endDate"); startStr != "" && endStr != "" {
		start, err := core.ParseDate(startStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date")
			return
		}
		end, err := core.ParseDate(endStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date")
			return
		}
		filter.Start = &start
		filter.End = &end
	}

	txs, err := s.repo.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction filtering failed", applog.FieldUserID, userID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error filtering transactions")
		return
	}

	writeJSON(w, http.StatusOK, toTransactionList(txs))
}
