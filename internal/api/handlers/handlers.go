package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dvloznov/smsspend/internal/api/middleware"
	"github.com/dvloznov/smsspend/internal/domain"
	"github.com/dvloznov/smsspend/internal/extraction"
	"github.com/dvloznov/smsspend/internal/history"
	"github.com/dvloznov/smsspend/internal/ledger"
	"github.com/dvloznov/smsspend/internal/logger"
	"github.com/dvloznov/smsspend/internal/stats"
)

// MaxBodyBytes caps JSON request bodies. A pasted SMS is far smaller.
const MaxBodyBytes = 64 << 10

// Tracker is the boundary API the handlers expose over HTTP.
type Tracker interface {
	AddManual(ctx context.Context, e domain.ManualEntry) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetTransactions() []domain.Transaction
	GetDashboardStats() stats.Dashboard
	GetGroupedHistory() []history.Bucket
	ImportFromText(ctx context.Context, text string) (*domain.Transaction, error)
	ExtractionEnabled() bool
}

// TransactionsHandler handles transaction, dashboard and import endpoints.
type TransactionsHandler struct {
	tracker Tracker
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(tracker Tracker) *TransactionsHandler {
	return &TransactionsHandler{tracker: tracker}
}

// Register adds the handler's routes to mux.
func (h *TransactionsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/transactions", h.CreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.DeleteTransaction)
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("POST /api/import", h.Import)
	mux.HandleFunc("GET /api/import/samples", h.Samples)
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /health", h.Health)
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	// Return array directly for frontend compatibility
	middleware.WriteJSON(w, http.StatusOK, h.tracker.GetTransactions())
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   json.RawMessage `json:"amount"`
		Merchant string          `json:"merchant"`
		Category string          `json:"category"`
		Date     string          `json:"date"`
	}

	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := h.tracker.AddManual(r.Context(), domain.ManualEntry{
		Amount:   amountText(req.Amount),
		Merchant: req.Merchant,
		Category: req.Category,
		Date:     req.Date,
	})
	if err != nil {
		h.writeError(w, r, err, "Failed to add transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}

	if err := h.tracker.DeleteTransaction(r.Context(), id); err != nil {
		h.writeError(w, r, err, "Failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Dashboard handles GET /api/dashboard
func (h *TransactionsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.tracker.GetDashboardStats())
}

// History handles GET /api/history
func (h *TransactionsHandler) History(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.tracker.GetGroupedHistory())
}

// Import handles POST /api/import
func (h *TransactionsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}

	if !decodeBody(w, r, &req) {
		return
	}

	tx, err := h.tracker.ImportFromText(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err, "Failed to import transaction")
		return
	}
	if tx == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Samples handles GET /api/import/samples
func (h *TransactionsHandler) Samples(w http.ResponseWriter, r *http.Request) {
	samples := extraction.SampleMessages()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"samples": samples,
		"count":   len(samples),
	})
}

// ListCategories handles GET /api/categories
func (h *TransactionsHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := domain.SuggestedCategories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Health handles GET /health
func (h *TransactionsHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"time":       time.Now().Format(time.RFC3339),
		"extraction": h.tracker.ExtractionEnabled(),
	})
}

// writeError maps tracker errors to status codes.
func (h *TransactionsHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	log := logger.FromContext(r.Context())

	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		middleware.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Invalid transaction",
			"fields": validation.Fields,
		})
	case errors.Is(err, ledger.ErrInvalidTransaction):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrDuplicateID):
		middleware.WriteError(w, http.StatusConflict, "Transaction already exists")
	case errors.Is(err, extraction.ErrIncomplete):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "Could not extract valid transaction details. Please try again or enter manually.")
	case errors.Is(err, extraction.ErrServiceUnavailable):
		log.Warn().Err(err).Msg("Extraction unavailable")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Extraction service unavailable")
	default:
		log.Error().Err(err).Msg(fallback)
		middleware.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeBody decodes a size-limited JSON body into v, writing the error
// response itself when it fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// amountText accepts the amount as a JSON number or a string such as "12,50".
func amountText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
