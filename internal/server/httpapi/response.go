package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/common"
)

const (
	headerContentType = "Content-Type"
	headerAllowOrigin = "Access-Control-Allow-Origin"
	headerLocation    = "Location"
	contentTypeJSON   = "application/json"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool `json:"success"`
}

var okBody = successBody{Success: true}

func jsonResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: err.Error()})
	}
	return Response{
		StatusCode: status,
		Headers: map[string]string{
			headerContentType: contentTypeJSON,
			headerAllowOrigin: "*",
		},
		Body: string(body),
	}
}

func errorResponse(status int, msg string) Response {
	return jsonResponse(status, errorBody{Error: msg})
}

func redirect(location string) Response {
	return Response{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			headerLocation:    location,
			headerAllowOrigin: "*",
		},
	}
}

// preflight answers a CORS OPTIONS request.
func preflight(methods, headers string) Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			headerAllowOrigin:              "*",
			"Access-Control-Allow-Methods": methods,
			"Access-Control-Allow-Headers": headers,
			"Access-Control-Max-Age":       "86400",
		},
	}
}

var errorStatuses = []struct {
	err    error
	status int
	msg    string
}{
	{common.ErrInvalidRequest, http.StatusBadRequest, "Invalid request"},
	{common.ErrInvalidEmail, http.StatusBadRequest, "Invalid email"},
	{common.ErrMissingFields, http.StatusBadRequest, "Missing required fields"},
	{common.ErrInvalidType, http.StatusBadRequest, "Invalid type"},
	{common.ErrNoFieldsToUpdate, http.StatusBadRequest, "No fields to update"},

	{common.ErrorUnauthorized, http.StatusUnauthorized, "Authorization required"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{common.ErrInvalidCode, http.StatusUnauthorized, "Invalid code"},
	{common.ErrCodeExpired, http.StatusUnauthorized, "Code expired"},

	{common.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{common.ErrCodeNotFound, http.StatusNotFound, "Code not found"},
	{common.ErrTransactionNotFound, http.StatusNotFound, "Transaction not found"},
	{common.ErrItemNotFound, http.StatusNotFound, "Item not found"},
	{common.ErrorNotFound, http.StatusNotFound, "Not found"},

	{common.ErrAccountConflict, http.StatusConflict, "Email is already linked to another account"},
}

// statusFor maps err onto an HTTP status and a client-facing message.
// Unknown errors are 500 and carry their own text.
func statusFor(err error) (int, string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.msg
		}
	}
	return http.StatusInternalServerError, err.Error()
}
