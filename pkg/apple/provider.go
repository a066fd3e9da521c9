package apple

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/socialauth/pkg/keychain"
	"github.com/dmitrymomot/socialauth/pkg/notify"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// KeychainSuffix namespaces the Apple keychain service.
const KeychainSuffix = ".AppleSignIn"

// PlatformRevoked is the topic the platform bridge publishes when the OS
// reports that the Apple ID credential was revoked.
const PlatformRevoked = "ASAuthorizationAppleIDProviderCredentialRevokedNotification"

// Keychain keys.
const (
	keyEmail      = "email"
	keyName       = "name"
	keyIdentifier = "identifier"
	keyUsername   = "username"
	keyPassword   = "password"
)

// Provider implements Sign in with Apple on top of a platform Authorizer.
type Provider struct {
	authorizer Authorizer
	checker    StateChecker
	kc         keychain.Keychain
	hub        *notify.Hub
	observer   *notify.Observer
	appleID    *provider.Credential
	password   *provider.Credential
	scope      keychain.Scope
	inflight   atomic.Bool
	mu         sync.RWMutex
}

// New creates the Apple provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		kc:  keychain.NewMemory(),
		hub: notify.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.scope = keychain.NewScope(p.kc, keychain.ServiceName("", KeychainSuffix))
	p.observer = notify.NewObserver(p.hub, PlatformRevoked, func(string) { p.revoke() })
	return p
}

// Setup namespaces the keychain service with cfg.KeychainServicePrefix.
func (p *Provider) Setup(cfg provider.SetupConfig) error {
	if p.authorizer == nil {
		return provider.NewSetupError(provider.KindApple, ErrNoAuthorizer)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.scope = keychain.NewScope(p.kc, keychain.ServiceName(cfg.KeychainServicePrefix, KeychainSuffix))
	return nil
}

// CurrentIdentity returns the Apple ID credential, or else the password credential.
func (p *Provider) CurrentIdentity() (provider.Credential, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch {
	case p.appleID != nil:
		return *p.appleID, true
	case p.password != nil:
		return *p.password, true
	default:
		return provider.Credential{}, false
	}
}

// HasPreviousSignIn reports whether the stored user is still authorized.
func (p *Provider) HasPreviousSignIn(ctx context.Context) bool {
	userID, ok := p.keychainScope().Lookup(keyIdentifier)
	if !ok {
		return false
	}
	if p.checker == nil {
		return true
	}
	state, err := p.checker.CredentialState(ctx, userID)
	return err == nil && state == StateAuthorized
}

// SignIn asks for the user's Apple ID with name and email scopes.
func (p *Provider) SignIn(ctx context.Context, req provider.SignInRequest) (provider.Credential, error) {
	if p.authorizer == nil {
		return provider.Credential{}, provider.NewSetupError(provider.KindApple, ErrNoAuthorizer)
	}
	if req.Presenter == nil {
		return provider.Credential{}, provider.NewSetupError(provider.KindApple, nil)
	}
	return p.authorize(ctx, Request{
		Presenter: req.Presenter,
		Scopes:    []Scope{ScopeFullName, ScopeEmail},
	})
}

// RestoreSession silently re-authorizes using either the Apple ID or a saved password.
func (p *Provider) RestoreSession(ctx context.Context) (provider.Credential, error) {
	if p.authorizer == nil {
		return provider.Credential{}, provider.NewSetupError(provider.KindApple, ErrNoAuthorizer)
	}
	scope := p.keychainScope()
	_, hasID := scope.Lookup(keyIdentifier)
	_, hasPassword := scope.Lookup(keyUsername)
	if !hasID && !hasPassword {
		return provider.Credential{}, provider.ErrSessionRestore
	}
	return p.authorize(ctx, Request{IncludePassword: true, Silent: true})
}

// SignOut forgets the cached credentials and stops observing revocation.
// Apple offers no programmatic sign-out, so the keychain is kept.
func (p *Provider) SignOut(_ context.Context) (bool, error) {
	p.mu.Lock()
	p.appleID = nil
	p.password = nil
	p.mu.Unlock()

	p.observer.Stop()
	return true, nil
}

// InvalidateOnExternalError drops the saved password, then signs out.
func (p *Provider) InvalidateOnExternalError() {
	_ = p.keychainScope().Delete(keyUsername, keyPassword)
	_, _ = p.SignOut(context.Background())
}

// HandleCallback never claims URLs; Apple results come from the Authorizer.
func (p *Provider) HandleCallback(provider.Callback) bool {
	return false
}

// CredentialRevoked handles the platform's revocation signal. It is a no-op
// unless an Apple ID sign-in is being observed.
func (p *Provider) CredentialRevoked() {
	if p.observer.Active() {
		p.revoke()
	}
}

func (p *Provider) revoke() {
	_ = p.keychainScope().Delete(keyEmail, keyName, keyIdentifier)
	p.hub.Publish(notify.CredentialRevoked)
}

func (p *Provider) authorize(ctx context.Context, req Request) (provider.Credential, error) {
	if !p.inflight.CompareAndSwap(false, true) {
		return provider.Credential{}, provider.ErrBusy
	}
	defer p.inflight.Store(false)

	auth, err := p.authorizer.Authorize(ctx, req)
	if err != nil {
		return provider.Credential{}, mapError(err)
	}

	switch {
	case auth.AppleID != nil:
		return p.completeAppleID(auth.AppleID)
	case auth.Password != nil:
		return p.completePassword(auth.Password)
	default:
		return provider.Credential{}, errors.Join(provider.ErrInvalidResponse, ErrEmptyAuthorization)
	}
}

func (p *Provider) completeAppleID(c *AppleIDCredential) (provider.Credential, error) {
	if c.User == "" {
		return provider.Credential{}, errors.Join(provider.ErrInvalidResponse, ErrEmptyAuthorization)
	}
	scope := p.keychainScope()

	tokenEmail, err := identityTokenEmail(c.IdentityToken, c.User)
	if err != nil {
		return provider.Credential{}, errors.Join(provider.ErrInvalidResponse, err)
	}

	name := c.FullName.String()
	if name == "" {
		name, _ = scope.Lookup(keyName)
	}
	email := c.Email
	if email == "" {
		email = tokenEmail
	}
	if email == "" {
		email, _ = scope.Lookup(keyEmail)
	}

	cred := provider.Credential{
		Kind:            provider.KindApple,
		AuthToken:       c.IdentityToken,
		AuthTokenSecret: c.AuthorizationCode,
		Identity: &provider.UserIdentity{
			UserID:       c.User,
			DisplayName:  name,
			Email:        email,
			IsNewAccount: c.Email != "",
		},
	}

	var errs []error
	if c.Email != "" {
		errs = append(errs, scope.Set(keyEmail, c.Email))
	}
	if n := c.FullName.String(); n != "" {
		errs = append(errs, scope.Set(keyName, n))
	}
	errs = append(errs, scope.Set(keyIdentifier, c.User))
	if err := errors.Join(errs...); err != nil {
		return provider.Credential{}, errors.Join(provider.ErrKeychain, err)
	}

	p.mu.Lock()
	p.appleID = &cred
	p.password = nil
	p.mu.Unlock()

	p.observer.Start()
	return cred, nil
}

func (p *Provider) completePassword(c *PasswordCredential) (provider.Credential, error) {
	cred := provider.Credential{
		Kind:     provider.KindApple,
		Password: &provider.PasswordCredential{Username: c.User, Password: c.Password},
	}

	scope := p.keychainScope()
	if err := errors.Join(scope.Set(keyUsername, c.User), scope.Set(keyPassword, c.Password)); err != nil {
		return provider.Credential{}, errors.Join(provider.ErrKeychain, err)
	}

	p.mu.Lock()
	p.password = &cred
	p.appleID = nil
	p.mu.Unlock()

	return cred, nil
}

func (p *Provider) keychainScope() keychain.Scope {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scope
}

// identityTokenEmail reads the email claim of the identity token and checks
// that its subject is user. The signature is verified by the backend that
// consumes AuthToken, not here.
func identityTokenEmail(token, user string) (string, error) {
	if token == "" {
		return "", nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", errors.Join(ErrMalformedToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", errors.Join(ErrMalformedToken, err)
	}
	if sub != user {
		return "", ErrUserMismatch
	}

	email, _ := claims["email"].(string)
	return email, nil
}

var _ provider.Provider = (*Provider)(nil)
