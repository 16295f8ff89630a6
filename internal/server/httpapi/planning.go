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

// Planner manages fixed expenses and savings goals.
type Planner interface {
	ListFixed(ctx context.Context, userID int64) ([]models.FixedExpense, error)
	ListGoals(ctx context.Context, userID int64) ([]models.SavingsGoal, error)
	CreateFixed(ctx context.Context, userID int64, in services.FixedExpenseInput) (*models.FixedExpense, error)
	CreateGoal(ctx context.Context, userID int64, in services.GoalInput) (*models.SavingsGoal, error)
	SetFixedActive(ctx context.Context, userID, id int64, active *bool) (*models.FixedExpense, error)
	UpdateGoal(ctx context.Context, userID, id int64, upd services.GoalUpdate) (*models.SavingsGoal, error)
	Deposits(ctx context.Context, userID, goalID int64) ([]models.Deposit, error)
	Delete(ctx context.Context, userID int64, kind models.ResourceKind, id int64) error
}

type planningRequest struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`

	Title        string   `json:"title"`
	Amount       *float64 `json:"amount"`
	Category     string   `json:"category"`
	DayOfMonth   *int     `json:"dayOfMonth"`
	TargetAmount *float64 `json:"targetAmount"`
	TargetDate   string   `json:"targetDate"`

	IsActive    *bool    `json:"isActive"`
	AddAmount   *float64 `json:"addAmount"`
	Comment     string   `json:"comment"`
	IsCompleted *bool    `json:"isCompleted"`
}

// PlanningHandler serves /fixed-planning. It reads the credential from
// X-Authorization before Authorization.
type PlanningHandler struct {
	base
	session SessionVerifier
	planner Planner
}

func NewPlanningHandler(s SessionVerifier, p Planner, l logging.Logger) *PlanningHandler {
	return &PlanningHandler{base: base{logger: l.With("handler", "planning")}, session: s, planner: p}
}

func (h *PlanningHandler) Handle(ctx context.Context, ev Event) Response {
	if ev.Method == http.MethodOptions {
		return preflight("GET, POST, PUT, DELETE, OPTIONS", "Content-Type, Authorization, X-Authorization")
	}

	user, err := authenticate(ctx, h.session, ev, common.AltAuthorizationHeaderName, common.AuthorizationHeaderName)
	if err != nil {
		return h.fail(ctx, err)
	}

	switch ev.Method {
	case http.MethodGet:
		return h.get(ctx, user.ID, ev)
	case http.MethodPost:
		return h.create(ctx, user.ID, ev)
	case http.MethodPut:
		return h.update(ctx, user.ID, ev)
	case http.MethodDelete:
		return h.delete(ctx, user.ID, ev)
	}
	return h.fail(ctx, common.ErrInvalidRequest)
}

func (h *PlanningHandler) get(ctx context.Context, userID int64, ev Event) Response {
	kind, err := models.ParseResourceKind(ev.Query["type"])
	if err != nil {
		return h.fail(ctx, common.ErrInvalidType)
	}

	switch kind {
	case models.Fixed:
		items, err := h.planner.ListFixed(ctx, userID)
		if err != nil {
			return h.fail(ctx, err)
		}
		return jsonResponse(http.StatusOK, map[string]any{"items": items})

	case models.Planning:
		if raw := ev.Query["id"]; raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return h.fail(ctx, common.ErrInvalidRequest)
			}
			deposits, err := h.planner.Deposits(ctx, userID, id)
			if err != nil {
				return h.fail(ctx, err)
			}
			return jsonResponse(http.StatusOK, map[string]any{"deposits": deposits})
		}
		items, err := h.planner.ListGoals(ctx, userID)
		if err != nil {
			return h.fail(ctx, err)
		}
		return jsonResponse(http.StatusOK, map[string]any{"items": items})
	}
	return h.fail(ctx, common.ErrInvalidType)
}

func (h *PlanningHandler) create(ctx context.Context, userID int64, ev Event) Response {
	req, kind, resp, failed := h.decode(ctx, ev)
	if failed {
		return resp
	}

	var item any
	var err error
	switch kind {
	case models.Fixed:
		if req.Amount == nil || req.DayOfMonth == nil {
			return h.fail(ctx, common.ErrMissingFields)
		}
		item, err = h.planner.CreateFixed(ctx, userID, services.FixedExpenseInput{
			Title:      req.Title,
			Amount:     *req.Amount,
			Category:   req.Category,
			DayOfMonth: *req.DayOfMonth,
		})

	case models.Planning:
		if req.TargetAmount == nil {
			return h.fail(ctx, common.ErrMissingFields)
		}
		in := services.GoalInput{
			Title:        req.Title,
			TargetAmount: *req.TargetAmount,
			Category:     req.Category,
		}
		if req.TargetDate != "" {
			d, perr := timex.ParseDate(req.TargetDate)
			if perr != nil {
				return h.fail(ctx, common.ErrInvalidRequest)
			}
			in.TargetDate = &d
		}
		item, err = h.planner.CreateGoal(ctx, userID, in)

	default:
		return h.fail(ctx, common.ErrInvalidType)
	}

	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusCreated, map[string]any{"item": item})
}

func (h *PlanningHandler) update(ctx context.Context, userID int64, ev Event) Response {
	req, kind, resp, failed := h.decode(ctx, ev)
	if failed {
		return resp
	}
	if req.ID == 0 {
		return errorResponse(http.StatusBadRequest, "Missing item id")
	}

	var item any
	var err error
	switch kind {
	case models.Fixed:
		item, err = h.planner.SetFixedActive(ctx, userID, req.ID, req.IsActive)
	case models.Planning:
		item, err = h.planner.UpdateGoal(ctx, userID, req.ID, services.GoalUpdate{
			AddAmount:   req.AddAmount,
			Comment:     req.Comment,
			IsCompleted: req.IsCompleted,
		})
	default:
		return h.fail(ctx, common.ErrInvalidType)
	}

	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, map[string]any{"item": item})
}

func (h *PlanningHandler) delete(ctx context.Context, userID int64, ev Event) Response {
	id, err := strconv.ParseInt(ev.Query["id"], 10, 64)
	if err != nil || ev.Query["type"] == "" {
		return errorResponse(http.StatusBadRequest, "Missing id or type")
	}
	kind, err := models.ParseResourceKind(ev.Query["type"])
	if err != nil {
		return h.fail(ctx, common.ErrInvalidType)
	}

	if err := h.planner.Delete(ctx, userID, kind, id); err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, okBody)
}

// decode parses the body and its type. When failed is true, resp is the
// error response to return.
func (h *PlanningHandler) decode(ctx context.Context, ev Event) (req planningRequest, kind models.ResourceKind, resp Response, failed bool) {
	if err := json.Unmarshal([]byte(orEmptyObject(ev.Body)), &req); err != nil {
		return req, 0, h.fail(ctx, common.ErrInvalidRequest), true
	}
	kind, err := models.ParseResourceKind(req.Type)
	if err != nil {
		return req, 0, h.fail(ctx, common.ErrInvalidType), true
	}
	return req, kind, Response{}, false
}
