package federated

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialauth/pkg/keychain"
	"github.com/dmitrymomot/socialauth/pkg/oauth"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// Keychain keys.
const (
	keyToken   = "token"
	keyIDToken = "id_token"
	keyEmail   = "email"
	keyName    = "name"
)

// variant holds what differs between Google and Facebook.
type variant struct {
	// newBackend validates cfg and builds the OAuth backend.
	newBackend func(cfg provider.SetupConfig, o *options) (oauth.Provider, error)
	// redirectError maps an error reported through the redirect URL.
	redirectError func(e *oauth.RedirectError) error
	// authToken picks the token handed out as Credential.AuthToken.
	authToken func(token *oauth2.Token, idToken string) string
	// authOptions are added to the authorization URL.
	authOptions []oauth2.AuthCodeOption
	kind        provider.Kind
	suffix      string
}

// Provider signs users in through an OAuth2 authorization code flow with PKCE.
// The authorization page is shown through the request's Presenter and the
// redirect must be handed back through HandleCallback.
type Provider struct {
	opts     options
	v        variant
	flow     *oauth.Flow
	backend  oauth.Provider
	current  *provider.Credential
	scope    keychain.Scope
	redirect string
	mu       sync.RWMutex
}

func newProvider(v variant, opts []Option) *Provider {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.keychain == nil {
		o.keychain = keychain.NewMemory()
	}
	return &Provider{
		opts:  o,
		v:     v,
		flow:  oauth.NewFlow(),
		scope: keychain.NewScope(o.keychain, keychain.ServiceName("", v.suffix)),
	}
}

// Kind returns the provider kind.
func (p *Provider) Kind() provider.Kind {
	return p.v.kind
}

// Setup validates cfg and builds the OAuth backend. Calling it again
// replaces the previous configuration.
func (p *Provider) Setup(cfg provider.SetupConfig) error {
	backend, err := p.v.newBackend(cfg, &p.opts)
	if err != nil {
		return provider.NewSetupError(p.v.kind, err)
	}
	if p.opts.backend != nil {
		backend = p.opts.backend
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.backend = backend
	p.redirect = cfg.RedirectURL
	p.scope = keychain.NewScope(p.opts.keychain, keychain.ServiceName(cfg.KeychainServicePrefix, p.v.suffix))
	return nil
}

// CurrentIdentity returns the credential of the last successful sign-in or restore.
func (p *Provider) CurrentIdentity() (provider.Credential, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return provider.Credential{}, false
	}
	return *p.current, true
}

// HasPreviousSignIn reports whether a token is stored in the keychain.
func (p *Provider) HasPreviousSignIn(_ context.Context) bool {
	scope, ok := p.keychainScope()
	if !ok {
		return false
	}
	_, found := scope.Lookup(keyToken)
	return found
}

// SignIn presents the authorization page and waits for its redirect.
func (p *Provider) SignIn(ctx context.Context, req provider.SignInRequest) (provider.Credential, error) {
	backend, err := p.configured()
	if err != nil {
		return provider.Credential{}, err
	}
	if req.Presenter == nil {
		return provider.Credential{}, provider.NewSetupError(p.v.kind, nil)
	}

	auth, err := p.flow.Begin()
	if err != nil {
		if errors.Is(err, oauth.ErrFlowInProgress) {
			return provider.Credential{}, errors.Join(provider.ErrBusy, err)
		}
		return provider.Credential{}, provider.SignInFailed(err)
	}

	authURL := backend.AuthCodeURL(auth.State, append(auth.AuthCodeOptions(), p.v.authOptions...)...)
	if err := req.Presenter.Present(ctx, authURL); err != nil {
		p.flow.Cancel()
		_, _ = p.flow.Wait(ctx)
		return provider.Credential{}, provider.SignInFailed(err)
	}

	redirect, err := p.flow.Wait(ctx)
	if err != nil {
		if errors.Is(err, oauth.ErrFlowCancelled) {
			return provider.Credential{}, errors.Join(provider.ErrCancelled, err)
		}
		return provider.Credential{}, provider.SignInFailed(err)
	}
	if err := redirect.Err(); err != nil {
		var rerr *oauth.RedirectError
		if errors.As(err, &rerr) {
			return provider.Credential{}, p.v.redirectError(rerr)
		}
		return provider.Credential{}, provider.SignInFailed(err)
	}

	token, err := backend.Exchange(ctx, redirect.Code, p.redirectURL(), auth.ExchangeOptions()...)
	if err != nil {
		return provider.Credential{}, provider.SignInFailed(err)
	}

	return p.complete(ctx, backend, token, oauth.IDToken(token))
}

// RestoreSession refreshes the stored token and re-fetches the profile.
func (p *Provider) RestoreSession(ctx context.Context) (provider.Credential, error) {
	backend, err := p.configured()
	if err != nil {
		return provider.Credential{}, err
	}
	scope, _ := p.keychainScope()

	raw, err := scope.Get(keyToken)
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return provider.Credential{}, provider.ErrSessionRestore
		}
		return provider.Credential{}, errors.Join(provider.ErrKeychain, err)
	}

	var stored oauth2.Token
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return provider.Credential{}, errors.Join(provider.ErrSessionRestore, ErrCorruptToken, err)
	}

	token, err := backend.Refresh(ctx, &stored)
	if err != nil {
		return provider.Credential{}, errors.Join(provider.ErrSessionRestore, err)
	}

	idToken := oauth.IDToken(token)
	if idToken == "" {
		idToken, _ = scope.Lookup(keyIDToken)
	}
	return p.complete(ctx, backend, token, idToken)
}

// SignOut forgets the stored token and the cached credential.
// The cached email and name are kept for later sign-ins.
func (p *Provider) SignOut(_ context.Context) (bool, error) {
	p.flow.Cancel()

	p.mu.Lock()
	p.current = nil
	scope := p.scope
	p.mu.Unlock()

	if err := scope.Delete(keyToken, keyIDToken); err != nil {
		return false, errors.Join(provider.ErrKeychain, err)
	}
	return true, nil
}

// InvalidateOnExternalError signs out locally, ignoring keychain failures.
func (p *Provider) InvalidateOnExternalError() {
	_, _ = p.SignOut(context.Background())
}

// HandleCallback claims redirects that carry the pending authorization's state.
func (p *Provider) HandleCallback(cb provider.Callback) bool {
	if cb.URL == nil {
		return false
	}
	return p.flow.Resolve(cb.URL)
}

// complete fetches the profile, persists the session and caches the credential.
func (p *Provider) complete(ctx context.Context, backend oauth.Provider, token *oauth2.Token, idToken string) (provider.Credential, error) {
	info, err := backend.FetchUserInfo(ctx, token)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return provider.Credential{}, provider.SignInFailed(err)
		}
		return provider.Credential{}, errors.Join(provider.ErrProfileFetch, err)
	}
	if info.ID == "" {
		return provider.Credential{}, errors.Join(provider.ErrInvalidResponse, ErrMissingUserID)
	}

	scope, _ := p.keychainScope()
	cred := p.normalize(scope, token, idToken, info)

	// Google issues a refresh token only on first consent; keep the stored one.
	if token.RefreshToken == "" {
		if prev, ok := storedToken(scope); ok && prev.RefreshToken != "" {
			withRefresh := *token
			withRefresh.RefreshToken = prev.RefreshToken
			token = &withRefresh
		}
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return provider.Credential{}, errors.Join(provider.ErrKeychain, err)
	}
	if err := errors.Join(
		scope.Set(keyToken, string(raw)),
		scope.Set(keyIDToken, idToken),
		setIfPresent(scope, keyEmail, cred.Identity.Email),
		setIfPresent(scope, keyName, cred.Identity.DisplayName),
	); err != nil {
		return provider.Credential{}, errors.Join(provider.ErrKeychain, err)
	}

	p.mu.Lock()
	p.current = &cred
	p.mu.Unlock()

	return cred, nil
}

// normalize maps the OAuth result onto the common credential shape,
// substituting cached profile fields the provider omitted.
func (p *Provider) normalize(scope keychain.Scope, token *oauth2.Token, idToken string, info *oauth.UserInfo) provider.Credential {
	name := info.DisplayName()
	if name == "" {
		name, _ = scope.Lookup(keyName)
	}
	email := info.Email
	if email == "" {
		email, _ = scope.Lookup(keyEmail)
	}

	return provider.Credential{
		Kind:      p.v.kind,
		AuthToken: p.v.authToken(token, idToken),
		Identity: &provider.UserIdentity{
			UserID:      info.ID,
			DisplayName: name,
			Email:       email,
		},
	}
}

func (p *Provider) configured() (oauth.Provider, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.backend == nil {
		return nil, provider.NewSetupError(p.v.kind, ErrNotConfigured)
	}
	return p.backend, nil
}

func (p *Provider) keychainScope() (keychain.Scope, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scope, p.backend != nil
}

func (p *Provider) redirectURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.redirect
}

func storedToken(scope keychain.Scope) (*oauth2.Token, bool) {
	raw, ok := scope.Lookup(keyToken)
	if !ok {
		return nil, false
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, false
	}
	return &token, true
}

func setIfPresent(scope keychain.Scope, key, value string) error {
	if value == "" {
		return nil
	}
	return scope.Set(key, value)
}

var _ provider.Provider = (*Provider)(nil)
