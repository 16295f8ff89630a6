// Package common defines shared constants and sentinel errors used across
// the repository, service and HTTP layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("authorization required")
	ErrInvalidRequest = errors.New("invalid request")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Directory errors.
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountConflict = errors.New("email is linked to another identity")

	// One-time code errors.
	ErrInvalidEmail   = errors.New("invalid email")
	ErrCodeNotFound   = errors.New("code not found")
	ErrCodeExpired    = errors.New("code expired")
	ErrInvalidCode    = errors.New("invalid code")
	ErrDeliveryFailed = errors.New("failed to deliver code")

	// Business data errors.
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidType         = errors.New("invalid type")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrItemNotFound        = errors.New("item not found")
)
