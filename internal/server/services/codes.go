package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/dbx"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/mailer"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/shared"
)

const codeLength = 6

// CodeRequest is the outcome of RequestCode. Code is only set in
// development mode, when no mail transport is configured.
type CodeRequest struct {
	DevMode bool
	Code    string
}

// AuthResult is a freshly minted session for a user.
type AuthResult struct {
	Token string
	User  *models.User
}

// CodeService runs the emailed one-time-code sign-in.
type CodeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	directory   *Directory
	codec       *auth.Codec
	mailer      mailer.Mailer
	logger      logging.Logger
	validity    time.Duration
	now         func() time.Time
}

// NewCodeService wires the service. A nil mailer switches it to development
// mode.
func NewCodeService(db *sql.DB, rm repomanager.RepositoryManager, dir *Directory, codec *auth.Codec,
	m mailer.Mailer, l logging.Logger, cfg *config.Config) *CodeService {
	return &CodeService{
		db:          db,
		repomanager: rm,
		directory:   dir,
		codec:       codec,
		mailer:      m,
		logger:      l.With("module", "codes"),
		validity:    cfg.CodeValidityDuration,
		now:         time.Now,
	}
}

// RequestCode issues a new code for email, replacing any outstanding one,
// and mails it.
//
// A delivery failure returns common.ErrDeliveryFailed; the stored code stays
// valid.
func (s *CodeService) RequestCode(ctx context.Context, email string) (*CodeRequest, error) {
	if !strings.Contains(email, "@") {
		return nil, common.ErrInvalidEmail
	}
	email = shared.NormalizeEmail(email)

	code, err := shared.MakeRandDigits(codeLength)
	if err != nil {
		return nil, fmt.Errorf("error generating code: %w", err)
	}

	if err := s.repomanager.Codes(s.db).Upsert(ctx, email, code, s.now().Add(s.validity)); err != nil {
		return nil, fmt.Errorf("error saving code: %w", err)
	}

	if s.mailer == nil {
		s.logger.Warn(ctx, "mail transport not configured, returning code in response", "email", email)
		return &CodeRequest{DevMode: true, Code: code}, nil
	}

	if err := s.mailer.SendCode(ctx, email, code, s.validity); err != nil {
		s.logger.Error(ctx, "code delivery failed", "email", email, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}

	s.logger.Info(ctx, "code sent", "email", email)
	return &CodeRequest{}, nil
}

// VerifyCode checks code for email and, on a match, consumes it and signs the
// user in, creating the user on first sign-in.
//
// Errors: common.ErrCodeNotFound when there is no outstanding code or it was
// consumed concurrently, common.ErrCodeExpired, common.ErrInvalidCode.
func (s *CodeService) VerifyCode(ctx context.Context, email, code string) (*AuthResult, error) {
	email = shared.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	stored, err := s.repomanager.Codes(s.db).Find(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrCodeNotFound
		}
		return nil, fmt.Errorf("error searching code: %w", err)
	}

	if stored.Expired(s.now()) {
		return nil, common.ErrCodeExpired
	}
	if strings.TrimSpace(stored.Code) != code {
		return nil, common.ErrInvalidCode
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Codes(tx).Consume(ctx, email, stored.Code); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrCodeNotFound
			}
			return fmt.Errorf("error consuming code: %w", err)
		}

		user, err = s.directory.findOrCreateByEmail(ctx, s.directory.usersOn(tx), email)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.codec.Mint(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info(ctx, "signed in with code", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}
