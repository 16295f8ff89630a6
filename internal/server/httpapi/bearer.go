package httpapi

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// SessionVerifier resolves a bearer token to its user.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*models.User, error)
}

// bearerToken returns the credential from the first non-empty header in
// names, with an optional "Bearer " prefix removed.
func bearerToken(ev Event, names ...string) string {
	for _, name := range names {
		v := strings.TrimSpace(ev.Header(name))
		if v == "" {
			continue
		}
		if len(v) >= len(common.BearerPrefix) && strings.EqualFold(v[:len(common.BearerPrefix)], common.BearerPrefix) {
			v = v[len(common.BearerPrefix):]
		}
		return strings.TrimSpace(v)
	}
	return ""
}

// authenticate resolves the request's user. On failure the returned error
// is ready for statusFor.
func authenticate(ctx context.Context, v SessionVerifier, ev Event, headers ...string) (*models.User, error) {
	token := bearerToken(ev, headers...)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	user, err := v.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return user, nil
}
