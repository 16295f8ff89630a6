package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/stretchr/testify/require"
)

func discardLogger(t *testing.T) logging.Logger {
	t.Helper()
	l, err := logging.New(logging.Options{Level: "error"}, io.Discard)
	require.NoError(t, err)
	return l
}

// fakeSession accepts a fixed set of tokens.
type fakeSession struct {
	users  map[string]*models.User
	errs   map[string]error
	tokens []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		users: map[string]*models.User{
			"good": {ID: 7, Email: "ann@example.com", Name: "Ann", AvatarURL: "pic"},
		},
		errs: map[string]error{
			"expired": common.ErrTokenExpired,
			"orphan":  common.ErrUserNotFound,
		},
	}
}

func (s *fakeSession) Verify(_ context.Context, token string) (*models.User, error) {
	s.tokens = append(s.tokens, token)
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	if err, ok := s.errs[token]; ok {
		return nil, err
	}
	return nil, common.ErrInvalidToken
}

func decodeBody(t *testing.T, resp Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	return out
}

func bearer(token string) map[string]string {
	return map[string]string{"authorization": "Bearer " + token}
}
