package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// base carries what every handler needs to answer errors.
type base struct {
	logger logging.Logger
}

// fail converts err into an error response. Server-side failures are
// logged; client errors are not.
func (b base) fail(ctx context.Context, err error) Response {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		b.logger.Error(ctx, "request failed", "error", err)
	}
	return errorResponse(status, msg)
}
