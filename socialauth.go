package socialauth

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/socialauth/internal"
	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/notify"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/session"
)

// Type aliases - public API
type (
	// Coordinator routes sign-in operations to registered providers and owns
	// the single active session.
	Coordinator = internal.Coordinator

	// Option configures the coordinator.
	Option = internal.Option

	// Provider is the contract every sign-in provider implements.
	Provider = provider.Provider

	// SignUpProvider is a Provider that can also register new accounts.
	SignUpProvider = provider.SignUpProvider

	// Kind identifies a provider.
	Kind = provider.Kind

	// Credential is the normalized result of a successful sign-in.
	Credential = provider.Credential

	// UserIdentity describes the signed-in user.
	UserIdentity = provider.UserIdentity

	// PasswordCredential is a username and password pair.
	PasswordCredential = provider.PasswordCredential

	// SetupConfig is passed to every provider's Setup.
	SetupConfig = provider.SetupConfig

	// SignInRequest carries the presenter and optional manual credentials.
	SignInRequest = provider.SignInRequest

	// SignUpRequest carries the fields for a new manual account.
	SignUpRequest = provider.SignUpRequest

	// Callback is a platform redirect forwarded to the active provider.
	Callback = provider.Callback

	// Presenter shows an authorization URL to the user.
	Presenter = provider.Presenter

	// PresenterFunc adapts a function to Presenter.
	PresenterFunc = provider.PresenterFunc

	// SessionStore persists the active provider kind.
	SessionStore = session.Store

	// Hub is the revocation broadcast channel.
	Hub = notify.Hub

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Built-in provider kinds.
const (
	KindFacebook = provider.KindFacebook
	KindGoogle   = provider.KindGoogle
	KindApple    = provider.KindApple
	KindManual   = provider.KindManual
	KindNone     = provider.KindNone
)

// CredentialRevoked is the topic providers publish on when a credential is
// revoked outside the application.
const CredentialRevoked = notify.CredentialRevoked

// Errors

var (
	ErrSetup               = provider.ErrSetup
	ErrSignInFailed        = provider.ErrSignInFailed
	ErrProviderUnavailable = provider.ErrProviderUnavailable
	ErrSessionRestore      = provider.ErrSessionRestore
	ErrBusy                = provider.ErrBusy
	ErrInvalidCredentials  = provider.ErrInvalidCredentials
	ErrStorage             = session.ErrStorage
	ErrInvalidRegistration = internal.ErrInvalidRegistration
)

// Constructors

// New creates a coordinator that persists the active session in store and
// resumes it when the persisted provider is registered.
//
// Example:
//
//	auth, err := socialauth.New(ctx, session.NewFileStore(prefsPath),
//	    socialauth.WithProvider(socialauth.KindGoogle, federated.NewGoogle()),
//	    socialauth.WithSignUpProvider(socialauth.KindManual, manual.New(dir)),
//	    socialauth.WithLogger(logger.New(logger.DefaultExtractors()...)),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := auth.Setup(socialauth.SetupConfig{GoogleClientID: id}); err != nil {
//	    return err
//	}
func New(ctx context.Context, store SessionStore, opts ...Option) (*Coordinator, error) {
	return internal.New(ctx, store, opts...)
}

// Coordinator options

// WithProvider registers p under kind.
func WithProvider(kind Kind, p Provider) Option {
	return internal.WithProvider(kind, p)
}

// WithSignUpProvider registers a sign-up capable provider under kind.
func WithSignUpProvider(kind Kind, p SignUpProvider) Option {
	return internal.WithSignUpProvider(kind, p)
}

// WithLogger sets the coordinator logger. Default: no logging.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMetrics registers Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return internal.WithMetrics(reg)
}

// WithHub sets the revocation channel. Default: notify.Default().
func WithHub(h *Hub) Option {
	return internal.WithHub(h)
}

// WithCollectSetupErrors makes Setup report every provider failure instead of
// stopping at the first.
func WithCollectSetupErrors() Option {
	return internal.WithCollectSetupErrors()
}

// WithInvalidateOnRevocation drops the active session when CredentialRevoked
// is published on the coordinator's hub.
func WithInvalidateOnRevocation() Option {
	return internal.WithInvalidateOnRevocation()
}
