package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// TransactionStore is the income and expense ledger.
type TransactionStore interface {
	List(ctx context.Context, userID int64, kind models.TransactionKind, filter models.TransactionFilter) ([]models.Transaction, error)
	Create(ctx context.Context, userID int64, in services.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, userID int64, kind models.TransactionKind, id int64) error
}

type transactionRequest struct {
	Type        string   `json:"type"`
	Amount      *float64 `json:"amount"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
}

// TransactionsHandler serves /transactions.
type TransactionsHandler struct {
	base
	session SessionVerifier
	store   TransactionStore
}

func NewTransactionsHandler(s SessionVerifier, store TransactionStore, l logging.Logger) *TransactionsHandler {
	return &TransactionsHandler{base: base{logger: l.With("handler", "transactions")}, session: s, store: store}
}

func (h *TransactionsHandler) Handle(ctx context.Context, ev Event) Response {
	if ev.Method == http.MethodOptions {
		return preflight("GET, POST, DELETE, OPTIONS", "Content-Type, Authorization")
	}

	user, err := authenticate(ctx, h.session, ev, common.AuthorizationHeaderName)
	if err != nil {
		return h.fail(ctx, err)
	}

	switch {
	case ev.Method == http.MethodGet && ev.HasQuery("type"):
		return h.list(ctx, user.ID, ev)
	case ev.Method == http.MethodPost:
		return h.create(ctx, user.ID, ev)
	case ev.Method == http.MethodDelete && ev.HasQuery("id"):
		return h.delete(ctx, user.ID, ev)
	}
	return h.fail(ctx, common.ErrInvalidRequest)
}

func (h *TransactionsHandler) list(ctx context.Context, userID int64, ev Event) Response {
	kind, err := models.ParseTransactionKind(ev.Query["type"])
	if err != nil {
		return h.fail(ctx, common.ErrInvalidType)
	}

	var filter models.TransactionFilter
	if ev.Query["year"] != "" && ev.Query["month"] != "" {
		filter.Year, err = strconv.Atoi(ev.Query["year"])
		if err != nil {
			return h.fail(ctx, common.ErrInvalidRequest)
		}
		filter.Month, err = strconv.Atoi(ev.Query["month"])
		if err != nil || filter.Month < 1 || filter.Month > 12 {
			return h.fail(ctx, common.ErrInvalidRequest)
		}
	}

	items, err := h.store.List(ctx, userID, kind, filter)
	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, map[string]any{"transactions": items})
}

func (h *TransactionsHandler) create(ctx context.Context, userID int64, ev Event) Response {
	var req transactionRequest
	if err := json.Unmarshal([]byte(orEmptyObject(ev.Body)), &req); err != nil {
		return h.fail(ctx, common.ErrInvalidRequest)
	}
	if req.Type == "" || req.Amount == nil {
		return h.fail(ctx, common.ErrMissingFields)
	}

	kind, err := models.ParseTransactionKind(req.Type)
	if err != nil {
		return h.fail(ctx, common.ErrInvalidType)
	}

	in := services.TransactionInput{
		Kind:        kind,
		Amount:      *req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != "" {
		d, err := timex.ParseDate(req.Date)
		if err != nil {
			return h.fail(ctx, common.ErrInvalidRequest)
		}
		in.Date = &d
	}

	tr, err := h.store.Create(ctx, userID, in)
	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusCreated, map[string]any{"transaction": tr})
}

func (h *TransactionsHandler) delete(ctx context.Context, userID int64, ev Event) Response {
	id, err := strconv.ParseInt(ev.Query["id"], 10, 64)
	if err != nil || ev.Query["type"] == "" {
		return errorResponse(http.StatusBadRequest, "Missing transaction id or type")
	}
	kind, err := models.ParseTransactionKind(ev.Query["type"])
	if err != nil {
		return h.fail(ctx, common.ErrInvalidType)
	}

	if err := h.store.Delete(ctx, userID, kind, id); err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, okBody)
}
