package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// SessionVerifier is the gate every protected handler passes through.
type SessionVerifier struct {
	codec     *auth.Codec
	directory *Directory
}

func NewSessionVerifier(codec *auth.Codec, directory *Directory) *SessionVerifier {
	return &SessionVerifier{codec: codec, directory: directory}
}

// Verify decodes token and re-reads its user so callers see current display
// fields. It fails with common.ErrTokenExpired, common.ErrInvalidToken or
// common.ErrUserNotFound.
func (s *SessionVerifier) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	user, err := s.directory.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
