package manual

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/socialauth/pkg/keychain"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// KeychainSuffix namespaces the manual provider's keychain service.
const KeychainSuffix = ".ManualSignIn"

const (
	keyUsername = "username"
	keyPassword = "password"
)

// Option configures the manual provider.
type Option func(*Provider)

// WithKeychain sets where the signed-in username and password are kept for
// silent restore. Default: an in-memory keychain.
func WithKeychain(kc keychain.Keychain) Option {
	return func(p *Provider) {
		if kc != nil {
			p.kc = kc
		}
	}
}

// Provider signs users in with a username and password checked against a Directory.
// It is sign-up capable.
type Provider struct {
	dir      Directory
	kc       keychain.Keychain
	current  *provider.Credential
	scope    keychain.Scope
	inflight atomic.Bool
	mu       sync.RWMutex
}

// New creates the manual provider backed by dir.
func New(dir Directory, opts ...Option) *Provider {
	p := &Provider{dir: dir, kc: keychain.NewMemory()}
	for _, opt := range opts {
		opt(p)
	}
	p.scope = keychain.NewScope(p.kc, keychain.ServiceName("", KeychainSuffix))
	return p
}

// Setup namespaces the keychain service. It fails when no Directory is set.
func (p *Provider) Setup(cfg provider.SetupConfig) error {
	if p.dir == nil {
		return provider.NewSetupError(provider.KindManual, ErrNoDirectory)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.scope = keychain.NewScope(p.kc, keychain.ServiceName(cfg.KeychainServicePrefix, KeychainSuffix))
	return nil
}

// CurrentIdentity returns the credential of the last successful operation.
func (p *Provider) CurrentIdentity() (provider.Credential, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return provider.Credential{}, false
	}
	return *p.current, true
}

// HasPreviousSignIn reports whether a username is stored for restore.
func (p *Provider) HasPreviousSignIn(_ context.Context) bool {
	_, ok := p.keychainScope().Lookup(keyUsername)
	return ok
}

// SignIn authenticates req.Username and req.Password.
func (p *Provider) SignIn(ctx context.Context, req provider.SignInRequest) (provider.Credential, error) {
	if p.dir == nil {
		return provider.Credential{}, provider.NewSetupError(provider.KindManual, ErrNoDirectory)
	}
	if req.Username == "" || req.Password == "" {
		return provider.Credential{}, provider.ErrInvalidCredentials
	}
	if !p.inflight.CompareAndSwap(false, true) {
		return provider.Credential{}, provider.ErrBusy
	}
	defer p.inflight.Store(false)

	acc, err := p.dir.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return provider.Credential{}, err
	}
	return p.complete(acc, req.Password, false)
}

// SignUp registers a new account and signs it in.
func (p *Provider) SignUp(ctx context.Context, req provider.SignUpRequest) (provider.Credential, error) {
	if p.dir == nil {
		return provider.Credential{}, provider.NewSetupError(provider.KindManual, ErrNoDirectory)
	}
	if !p.inflight.CompareAndSwap(false, true) {
		return provider.Credential{}, provider.ErrBusy
	}
	defer p.inflight.Store(false)

	acc, err := p.dir.Register(ctx, req)
	if err != nil {
		return provider.Credential{}, err
	}
	return p.complete(acc, req.Password, true)
}

// RestoreSession re-authenticates with the stored username and password.
// Stored credentials the directory no longer accepts are removed.
func (p *Provider) RestoreSession(ctx context.Context) (provider.Credential, error) {
	if p.dir == nil {
		return provider.Credential{}, provider.NewSetupError(provider.KindManual, ErrNoDirectory)
	}
	scope := p.keychainScope()
	username, okUser := scope.Lookup(keyUsername)
	password, okPass := scope.Lookup(keyPassword)
	if !okUser || !okPass {
		return provider.Credential{}, provider.ErrSessionRestore
	}

	if !p.inflight.CompareAndSwap(false, true) {
		return provider.Credential{}, provider.ErrBusy
	}
	defer p.inflight.Store(false)

	acc, err := p.dir.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, provider.ErrInvalidCredentials) {
			_ = scope.Delete(keyUsername, keyPassword)
			return provider.Credential{}, errors.Join(provider.ErrSessionRestore, err)
		}
		return provider.Credential{}, err
	}
	return p.complete(acc, password, false)
}

// SignOut removes the stored credentials.
func (p *Provider) SignOut(_ context.Context) (bool, error) {
	p.mu.Lock()
	p.current = nil
	scope := p.scope
	p.mu.Unlock()

	if err := scope.Delete(keyUsername, keyPassword); err != nil {
		return false, errors.Join(provider.ErrKeychain, err)
	}
	return true, nil
}

// InvalidateOnExternalError signs out locally, ignoring keychain failures.
func (p *Provider) InvalidateOnExternalError() {
	_, _ = p.SignOut(context.Background())
}

// HandleCallback never claims callbacks.
func (p *Provider) HandleCallback(provider.Callback) bool {
	return false
}

func (p *Provider) complete(acc Account, password string, isNew bool) (provider.Credential, error) {
	cred := provider.Credential{
		Kind:     provider.KindManual,
		Password: &provider.PasswordCredential{Username: acc.Username, Password: password},
		Identity: &provider.UserIdentity{
			UserID:       acc.ID,
			DisplayName:  acc.DisplayName,
			Email:        acc.Email,
			IsNewAccount: isNew,
		},
	}

	scope := p.keychainScope()
	if err := errors.Join(scope.Set(keyUsername, acc.Username), scope.Set(keyPassword, password)); err != nil {
		return provider.Credential{}, errors.Join(provider.ErrKeychain, err)
	}

	p.mu.Lock()
	p.current = &cred
	p.mu.Unlock()

	return cred, nil
}

func (p *Provider) keychainScope() keychain.Scope {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scope
}

var _ provider.SignUpProvider = (*Provider)(nil)
