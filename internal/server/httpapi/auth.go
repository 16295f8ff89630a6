package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

const (
	actionSendCode    = "send_code"
	actionVerifyCode  = "verify_code"
	actionVerifyToken = "verify_token"
)

// OAuthFlow is the redirect-based sign-in.
type OAuthFlow interface {
	Initiate() string
	Complete(ctx context.Context, code string) (string, error)
}

// CodeFlow is the emailed one-time-code sign-in.
type CodeFlow interface {
	RequestCode(ctx context.Context, email string) (*services.CodeRequest, error)
	VerifyCode(ctx context.Context, email, code string) (*services.AuthResult, error)
}

type authRequest struct {
	Action string  `json:"action"`
	Email  string  `json:"email"`
	Code   string  `json:"code"`
	Token  *string `json:"token"`
}

type sendCodeResponse struct {
	Success bool   `json:"success"`
	DevMode bool   `json:"dev_mode,omitempty"`
	Code    string `json:"code,omitempty"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthHandler serves /auth.
type AuthHandler struct {
	base
	oauth   OAuthFlow
	codes   CodeFlow
	session SessionVerifier
}

func NewAuthHandler(o OAuthFlow, c CodeFlow, s SessionVerifier, l logging.Logger) *AuthHandler {
	return &AuthHandler{base: base{logger: l.With("handler", "auth")}, oauth: o, codes: c, session: s}
}

// Handle dispatches on method, then on the query or body discriminator. A
// body action takes precedence over a bare token field.
func (h *AuthHandler) Handle(ctx context.Context, ev Event) Response {
	switch ev.Method {
	case http.MethodOptions:
		return preflight("GET, POST, OPTIONS", "Content-Type, Authorization")

	case http.MethodGet:
		switch {
		case ev.HasQuery("code"):
			location, err := h.oauth.Complete(ctx, ev.Query["code"])
			if err != nil {
				return h.fail(ctx, err)
			}
			return redirect(location)
		case ev.HasQuery("login"):
			return redirect(h.oauth.Initiate())
		}

	case http.MethodPost:
		var req authRequest
		if err := json.Unmarshal([]byte(orEmptyObject(ev.Body)), &req); err != nil {
			return h.fail(ctx, common.ErrInvalidRequest)
		}

		switch {
		case req.Action == actionSendCode:
			return h.sendCode(ctx, req)
		case req.Action == actionVerifyCode:
			return h.verifyCode(ctx, req)
		case req.Action == actionVerifyToken:
			token := ""
			if req.Token != nil {
				token = *req.Token
			}
			if token == "" {
				token = bearerToken(ev, common.AuthorizationHeaderName)
			}
			return h.verifyToken(ctx, token)
		case req.Action == "" && req.Token != nil:
			return h.verifyToken(ctx, *req.Token)
		}
	}

	return h.fail(ctx, common.ErrInvalidRequest)
}

func (h *AuthHandler) sendCode(ctx context.Context, req authRequest) Response {
	if req.Email == "" {
		return h.fail(ctx, common.ErrInvalidEmail)
	}
	res, err := h.codes.RequestCode(ctx, req.Email)
	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, sendCodeResponse{Success: true, DevMode: res.DevMode, Code: res.Code})
}

func (h *AuthHandler) verifyCode(ctx context.Context, req authRequest) Response {
	if req.Email == "" || req.Code == "" {
		return h.fail(ctx, common.ErrInvalidRequest)
	}
	res, err := h.codes.VerifyCode(ctx, req.Email, req.Code)
	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, tokenResponse{Token: res.Token, User: res.User})
}

func (h *AuthHandler) verifyToken(ctx context.Context, token string) Response {
	if token == "" {
		return h.fail(ctx, common.ErrInvalidToken)
	}
	user, err := h.session.Verify(ctx, token)
	if err != nil {
		return h.fail(ctx, err)
	}
	return jsonResponse(http.StatusOK, userResponse{User: user})
}

func orEmptyObject(body string) string {
	if body == "" {
		return "{}"
	}
	return body
}
