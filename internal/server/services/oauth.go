package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/oauth"
	"golang.org/x/oauth2"
)

// IdentityProvider is the external OAuth 2.0 service.
type IdentityProvider interface {
	AuthCodeURL() string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, tok *oauth2.Token) (*oauth.Profile, error)
}

// OAuthService runs the redirect-based authorization-code sign-in.
type OAuthService struct {
	provider    IdentityProvider
	directory   *Directory
	codec       *auth.Codec
	logger      logging.Logger
	frontendURL string
}

func NewOAuthService(p IdentityProvider, dir *Directory, codec *auth.Codec, l logging.Logger, cfg *config.Config) *OAuthService {
	return &OAuthService{
		provider:    p,
		directory:   dir,
		codec:       codec,
		logger:      l.With("module", "oauth"),
		frontendURL: cfg.FrontendURL,
	}
}

// Initiate returns the provider URL that starts the flow.
func (s *OAuthService) Initiate() string {
	return s.provider.AuthCodeURL()
}

// Complete exchanges code, reconciles the profile into the directory and
// returns the frontend URL carrying the new token as ?token=. Nothing is
// retried; a token is only minted after the directory write succeeds.
func (s *OAuthService) Complete(ctx context.Context, code string) (string, error) {
	tok, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	profile, err := s.provider.FetchProfile(ctx, tok)
	if err != nil {
		return "", err
	}

	user, err := s.directory.UpsertByExternalID(ctx, profile.ID, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		return "", err
	}

	token, err := s.codec.Mint(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info(ctx, "signed in with oauth", "user_id", user.ID)
	return s.redirectWithToken(token)
}

func (s *OAuthService) redirectWithToken(token string) (string, error) {
	u, err := url.Parse(s.frontendURL)
	if err != nil {
		return "", fmt.Errorf("invalid frontend url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
