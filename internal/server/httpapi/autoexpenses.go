package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// AutoExpenseGenerator materializes fixed expenses for a month.
type AutoExpenseGenerator interface {
	Generate(ctx context.Context, userID int64, year, month int) (*models.AutoExpenseReport, error)
}

type autoExpenseRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// AutoExpensesHandler serves /auto-expenses.
type AutoExpensesHandler struct {
	base
	session   SessionVerifier
	generator AutoExpenseGenerator
}

func NewAutoExpensesHandler(s SessionVerifier, g AutoExpenseGenerator, l logging.Logger) *AutoExpensesHandler {
	return &AutoExpensesHandler{base: base{logger: l.With("handler", "autoexpenses")}, session: s, generator: g}
}

func (h *AutoExpensesHandler) Handle(ctx context.Context, ev Event) Response {
	if ev.Method == http.MethodOptions {
		return preflight("POST, OPTIONS", "Content-Type, Authorization")
	}

	user, err := authenticate(ctx, h.session, ev, common.AuthorizationHeaderName)
	if err != nil {
		return h.fail(ctx, err)
	}
	if ev.Method != http.MethodPost {
		return h.fail(ctx, common.ErrInvalidRequest)
	}

	var req autoExpenseRequest
	if err := json.Unmarshal([]byte(orEmptyObject(ev.Body)), &req); err != nil {
		return h.fail(ctx, common.ErrInvalidRequest)
	}

	report, err := h.generator.Generate(ctx, user.ID, req.Year, req.Month)
	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, report)
}
