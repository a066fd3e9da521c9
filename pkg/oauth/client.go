package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// Option configures a Google or Facebook backend.
type Option func(*client)

// WithHTTPClient routes token exchange, refresh and profile calls through c.
// Tests point it at an httptest server.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// client holds what Google and Facebook share: an oauth2 config and an
// optional HTTP client override.
type client struct {
	config     *oauth2.Config
	httpClient *http.Client
	name       string
}

func newClient(name string, cfg *oauth2.Config, opts []Option) client {
	c := client{name: name, config: cfg}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Name returns the provider identifier.
func (c *client) Name() string {
	return c.name
}

// AuthCodeURL generates the authorization URL.
func (c *client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return c.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens.
func (c *client) Exchange(ctx context.Context, code, redirectURI string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	cfg := c.config
	if redirectURI != "" {
		cp := *c.config
		cp.RedirectURL = redirectURI
		cfg = &cp
	}
	ctx = c.contextWithHTTPClient(ctx)
	return cfg.Exchange(ctx, code, opts...)
}

// Refresh returns a valid token, refreshing it when expired.
func (c *client) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil {
		return nil, ErrMissingToken
	}
	ctx = c.contextWithHTTPClient(ctx)
	return c.config.TokenSource(ctx, token).Token()
}

// getJSON performs an authorized GET and decodes the JSON body into v.
func (c *client) getJSON(ctx context.Context, token *oauth2.Token, endpoint string, v any) error {
	ctx = c.contextWithHTTPClient(ctx)
	httpClient := c.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Join(ErrFetchFailed, fmt.Errorf("build request: %w", err))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrFetchFailed, fmt.Errorf("fetch %s profile: %w", c.name, err))
	}
	if resp == nil {
		return errors.Join(ErrNilResponse, fmt.Errorf("unexpected nil response from %s profile endpoint", c.name))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.Join(ErrRequestFailed, fmt.Errorf("%s profile request failed: status=%d body=%s", c.name, resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Join(ErrDecodeFailed, fmt.Errorf("decode %s profile: %w", c.name, err))
	}
	return nil
}

func (c *client) contextWithHTTPClient(ctx context.Context) context.Context {
	if c.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	return ctx
}
