// Package oauth talks to the external identity provider: it builds the
// authorization redirect, exchanges the returned code and fetches the
// signed-in user's profile.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"golang.org/x/oauth2"
)

// DefaultScopes are requested on every authorization.
var DefaultScopes = []string{"openid", "email", "profile"}

// Google endpoints used by the authorization-code flow.
var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the provider's user info the tracker keeps.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider runs the Google authorization-code flow.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// Option customizes a GoogleProvider.
type Option func(*GoogleProvider)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(p *GoogleProvider) { p.config.Endpoint = ep }
}

// WithUserInfoURL overrides the profile endpoint.
func WithUserInfoURL(u string) Option {
	return func(p *GoogleProvider) { p.userInfoURL = u }
}

// WithHTTPClient sets the client used for the token exchange and profile
// fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(p *GoogleProvider) { p.httpClient = c }
}

func NewGoogleProvider(cfg *config.Config, opts ...Option) *GoogleProvider {
	p := &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Endpoint:     GoogleEndpoint,
			Scopes:       DefaultScopes,
		},
		userInfoURL: GoogleUserInfoURL,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// AuthCodeURL returns the provider URL the browser is redirected to. No
// state parameter is generated.
func (p *GoogleProvider) AuthCodeURL() string {
	return p.config.AuthCodeURL("", oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) ctx(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

// Exchange trades an authorization code for an access token.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.config.Exchange(p.ctx(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}
	return tok, nil
}

// FetchProfile reads the user's profile with the access token.
func (p *GoogleProvider) FetchProfile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	client := p.config.Client(p.ctx(ctx), tok)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, body)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("userinfo response is missing id or email")
	}
	return &profile, nil
}
