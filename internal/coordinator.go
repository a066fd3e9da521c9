package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/notify"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/session"
)

// Operation names used for log attributes and metric labels.
const (
	OpSignIn          = "sign_in"
	OpSignUp          = "sign_up"
	OpSignOut         = "sign_out"
	OpRestore         = "restore"
	OpRestoreExplicit = "restore_explicit"
	OpInvalidate      = "invalidate"
)

type entry struct {
	provider provider.Provider
	kind     provider.Kind
}

// Coordinator routes authentication operations to registered providers and
// owns the single active session.
//
// The active session is a provider kind. It is set by a successful SignIn,
// SignUp, RestoreSession or RestoreSessionExplicit, and cleared by SignOut or
// InvalidateOnExternalError. Every change is written to the session store
// before it becomes visible.
//
// SignIn, SignUp, RestoreSession and RestoreSessionExplicit share one
// in-flight slot. A call made while another is outstanding fails with
// provider.ErrBusy.
type Coordinator struct {
	store      session.Store
	logger     *slog.Logger
	hub        *notify.Hub
	metrics    *metrics
	registerer prometheus.Registerer
	err        error

	entries []entry
	signUp  map[provider.Kind]provider.SignUpProvider

	// active may name a kind that is no longer registered.
	active provider.Kind
	// persisted mirrors the store so a late registration can resume it.
	persisted provider.Kind
	// pending is the provider running the in-flight operation.
	pending provider.Provider

	collectSetupErrors     bool
	invalidateOnRevocation bool

	inflight atomic.Bool
	writeMu  sync.Mutex
	mu       sync.RWMutex
}

// New creates a coordinator backed by store, registers the providers passed
// as options, and resumes the persisted session if its provider is registered.
// A nil store keeps the session in memory.
func New(ctx context.Context, store session.Store, opts ...Option) (*Coordinator, error) {
	if store == nil {
		store = session.NewMemoryStore()
	}

	c := &Coordinator{
		store:  store,
		logger: logger.NewNope(),
		hub:    notify.Default(),
		signUp: make(map[provider.Kind]provider.SignUpProvider),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.err != nil {
		return nil, c.err
	}

	m, err := newMetrics(c.registerer)
	if err != nil {
		return nil, err
	}
	c.metrics = m

	c.resume(ctx)

	if c.invalidateOnRevocation {
		c.hub.Subscribe(notify.CredentialRevoked, c, func(string) {
			c.InvalidateOnExternalError(context.Background())
		})
	}

	return c, nil
}

// Close unsubscribes the coordinator from the revocation channel.
func (c *Coordinator) Close() {
	c.hub.Unsubscribe(c, nil)
}

func (c *Coordinator) resume(ctx context.Context) {
	kind, err := c.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			c.logger.WarnContext(ctx, "socialauth: persisted session unreadable, starting signed out",
				slog.Any("error", err))
		}
		return
	}

	c.mu.Lock()
	c.persisted = kind
	if c.lookupLocked(kind) != nil {
		c.active = kind
	}
	active := c.active
	c.mu.Unlock()

	if active.IsZero() {
		c.logger.DebugContext(ctx, "socialauth: persisted provider not registered",
			slog.String("provider", kind.String()))
		return
	}
	c.metrics.setActive(active)
	c.logger.DebugContext(ctx, "socialauth: session resumed", slog.String("provider", active.String()))
}

// RegisterProvider adds p under kind, replacing any provider registered there.
// If kind is the persisted session and nothing is active, it becomes active.
func (c *Coordinator) RegisterProvider(kind provider.Kind, p provider.Provider) error {
	return c.register(kind, p, nil)
}

// RegisterSignUpProvider is RegisterProvider for providers that support SignUp.
func (c *Coordinator) RegisterSignUpProvider(kind provider.Kind, p provider.SignUpProvider) error {
	return c.register(kind, p, p)
}

func (c *Coordinator) register(kind provider.Kind, p provider.Provider, su provider.SignUpProvider) error {
	if kind.IsZero() || p == nil {
		return errors.Join(ErrInvalidRegistration, fmt.Errorf("kind %q", kind))
	}

	c.mu.Lock()
	replaced := false
	for i := range c.entries {
		if c.entries[i].kind == kind {
			c.entries[i].provider = p
			replaced = true
			break
		}
	}
	if !replaced {
		c.entries = append(c.entries, entry{kind: kind, provider: p})
	}
	if su != nil {
		c.signUp[kind] = su
	} else {
		delete(c.signUp, kind)
	}

	resumed := false
	if c.active.IsZero() && kind == c.persisted {
		c.active = kind
		resumed = true
	}
	c.mu.Unlock()

	if resumed {
		c.metrics.setActive(kind)
		c.logger.Debug("socialauth: session resumed on registration", slog.String("provider", kind.String()))
	}
	return nil
}

// UnregisterProvider removes the provider registered under kind.
// An active session for kind is kept until the next sign-in or restore.
func (c *Coordinator) UnregisterProvider(kind provider.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		if c.entries[i].kind == kind {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	delete(c.signUp, kind)
}

// Providers returns the registered kinds in registration order.
func (c *Coordinator) Providers() []provider.Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kinds := make([]provider.Kind, len(c.entries))
	for i, e := range c.entries {
		kinds[i] = e.kind
	}
	return kinds
}

// CanSignUp reports whether a sign-up capable provider is registered under kind.
func (c *Coordinator) CanSignUp(kind provider.Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.signUp[kind]
	return ok
}

// Setup configures every registered provider in registration order.
// It stops at the first failure unless WithCollectSetupErrors is set.
// Providers set up before a failure stay set up.
func (c *Coordinator) Setup(cfg provider.SetupConfig) error {
	var errs []error
	for _, e := range c.snapshot() {
		if err := e.provider.Setup(cfg); err != nil {
			c.logger.Warn("socialauth: provider setup failed",
				slog.String("provider", e.kind.String()),
				slog.Any("error", err))
			if !c.collectSetupErrors {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ActiveKind returns the kind of the active session, or provider.KindNone.
func (c *Coordinator) ActiveKind() provider.Kind {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.active.IsZero() {
		return provider.KindNone
	}
	return c.active
}

// CurrentIdentity returns the active provider's cached credential.
func (c *Coordinator) CurrentIdentity() (provider.Credential, bool) {
	_, p := c.current()
	if p == nil {
		return provider.Credential{}, false
	}
	return p.CurrentIdentity()
}

// HasPreviousSignIn asks the active provider whether it holds a restorable
// session. It is false when nothing is active.
func (c *Coordinator) HasPreviousSignIn(ctx context.Context) bool {
	_, p := c.current()
	if p == nil {
		return false
	}
	return p.HasPreviousSignIn(ctx)
}

// PreviousSignIns probes every registered provider concurrently and reports
// which of them hold a restorable session.
func (c *Coordinator) PreviousSignIns(ctx context.Context) (map[provider.Kind]bool, error) {
	entries := c.snapshot()
	found := make([]bool, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found[i] = e.provider.HasPreviousSignIn(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[provider.Kind]bool, len(entries))
	for i, e := range entries {
		out[e.kind] = found[i]
	}
	return out, nil
}

// SignIn runs the sign-in flow of the provider registered under kind and makes
// it the active session on success. Provider errors are returned as is.
func (c *Coordinator) SignIn(ctx context.Context, kind provider.Kind, req provider.SignInRequest) (provider.Credential, error) {
	ctx = opContext(ctx, OpSignIn, kind)

	p := c.lookup(kind)
	if p == nil {
		return c.unavailable(ctx, OpSignIn, kind)
	}
	if !c.acquire(p) {
		return c.busy(ctx, OpSignIn, kind)
	}
	defer c.release()

	cred, err := p.SignIn(ctx, req)
	return c.finish(ctx, OpSignIn, kind, cred, err)
}

// SignUp registers an account with the sign-up capable provider under kind and
// makes it the active session on success.
func (c *Coordinator) SignUp(ctx context.Context, kind provider.Kind, req provider.SignUpRequest) (provider.Credential, error) {
	ctx = opContext(ctx, OpSignUp, kind)

	c.mu.RLock()
	p := c.signUp[kind]
	c.mu.RUnlock()
	if p == nil {
		return c.unavailable(ctx, OpSignUp, kind)
	}
	if !c.acquire(p) {
		return c.busy(ctx, OpSignUp, kind)
	}
	defer c.release()

	cred, err := p.SignUp(ctx, req)
	return c.finish(ctx, OpSignUp, kind, cred, err)
}

// RestoreSession silently re-authenticates the active provider.
// Without an active session it fails with provider.ErrSignInFailed.
func (c *Coordinator) RestoreSession(ctx context.Context) (provider.Credential, error) {
	kind, p := c.current()
	ctx = opContext(ctx, OpRestore, kind)

	if kind.IsZero() {
		c.metrics.observe(OpRestore, kind, resultFailure)
		return provider.Credential{}, provider.ErrSignInFailed
	}
	if p == nil {
		return c.unavailable(ctx, OpRestore, kind)
	}
	if !c.acquire(p) {
		return c.busy(ctx, OpRestore, kind)
	}
	defer c.release()

	cred, err := p.RestoreSession(ctx)
	return c.finish(ctx, OpRestore, kind, cred, err)
}

// RestoreSessionExplicit silently re-authenticates the provider under kind
// and makes it the active session on success.
func (c *Coordinator) RestoreSessionExplicit(ctx context.Context, kind provider.Kind) (provider.Credential, error) {
	ctx = opContext(ctx, OpRestoreExplicit, kind)

	p := c.lookup(kind)
	if p == nil {
		return c.unavailable(ctx, OpRestoreExplicit, kind)
	}
	if !c.acquire(p) {
		return c.busy(ctx, OpRestoreExplicit, kind)
	}
	defer c.release()

	cred, err := p.RestoreSession(ctx)
	return c.finish(ctx, OpRestoreExplicit, kind, cred, err)
}

// SignOut signs the active provider out and clears the session.
// It reports true without calling any provider when nothing is active.
// If the active provider was unregistered only local state is cleared.
func (c *Coordinator) SignOut(ctx context.Context) (bool, error) {
	kind, p := c.current()
	ctx = opContext(ctx, OpSignOut, kind)

	if kind.IsZero() {
		c.metrics.observe(OpSignOut, kind, resultSuccess)
		return true, nil
	}

	ok := true
	if p == nil {
		c.logger.WarnContext(ctx, "socialauth: signing out unregistered provider, clearing local state")
	} else {
		var err error
		ok, err = p.SignOut(ctx)
		if err != nil {
			c.metrics.observe(OpSignOut, kind, resultFailure)
			return false, err
		}
	}

	cleared, err := c.reset(ctx, kind, false)
	if err != nil {
		c.metrics.observe(OpSignOut, kind, resultFailure)
		return false, err
	}
	c.metrics.observe(OpSignOut, kind, resultSuccess)
	if !cleared {
		c.logger.DebugContext(ctx, "socialauth: signed out, another session became active meanwhile")
		return ok, nil
	}
	c.logger.DebugContext(ctx, "socialauth: signed out")
	return ok, nil
}

// InvalidateOnExternalError drops the active session locally without network
// calls. It always leaves the coordinator signed out.
func (c *Coordinator) InvalidateOnExternalError(ctx context.Context) {
	kind, p := c.current()
	ctx = opContext(ctx, OpInvalidate, kind)

	if p != nil {
		p.InvalidateOnExternalError()
	}
	_, _ = c.reset(ctx, kind, true)

	c.metrics.observe(OpInvalidate, kind, resultSuccess)
	c.logger.DebugContext(ctx, "socialauth: session invalidated")
}

// HandleCallback forwards a platform redirect to the provider running the
// in-flight sign-in, then to the active provider. Providers are never
// broadcast to. It is false when no provider claims the callback.
func (c *Coordinator) HandleCallback(cb provider.Callback) bool {
	c.mu.RLock()
	pending := c.pending
	c.mu.RUnlock()

	if pending != nil && pending.HandleCallback(cb) {
		return true
	}

	_, p := c.current()
	if p == nil {
		return false
	}
	return p.HandleCallback(cb)
}

// Revocations returns the channel providers publish credential revocations on.
func (c *Coordinator) Revocations() *notify.Hub {
	return c.hub
}

func (c *Coordinator) finish(ctx context.Context, op string, kind provider.Kind, cred provider.Credential, err error) (provider.Credential, error) {
	if err != nil {
		c.metrics.observe(op, kind, resultFailure)
		c.logger.DebugContext(ctx, "socialauth: provider operation failed", slog.Any("error", err))
		return provider.Credential{}, err
	}

	if err := c.commit(ctx, kind); err != nil {
		c.metrics.observe(op, kind, resultFailure)
		c.logger.WarnContext(ctx, "socialauth: could not persist session", slog.Any("error", err))
		return provider.Credential{}, err
	}

	c.metrics.observe(op, kind, resultSuccess)
	c.logger.DebugContext(ctx, "socialauth: session active")
	return cred, nil
}

// commit persists kind, then moves the active pointer to it.
func (c *Coordinator) commit(ctx context.Context, kind provider.Kind) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.store.Save(ctx, kind); err != nil {
		return storageError(err)
	}

	c.mu.Lock()
	c.active = kind
	c.persisted = kind
	c.mu.Unlock()

	c.metrics.setActive(kind)
	return nil
}

// reset clears the store and the active pointer if kind is still active.
// It reports false and leaves state alone when another session was committed
// after the caller read kind. With force set, a store failure is logged and
// the pointer is cleared anyway.
func (c *Coordinator) reset(ctx context.Context, kind provider.Kind, force bool) (bool, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.RLock()
	active := c.active
	c.mu.RUnlock()
	if active != kind {
		return false, nil
	}

	if err := c.store.Clear(ctx); err != nil {
		err = storageError(err)
		if !force {
			return false, err
		}
		c.logger.WarnContext(ctx, "socialauth: could not clear persisted session", slog.Any("error", err))
	}

	c.mu.Lock()
	c.active = ""
	c.persisted = ""
	c.mu.Unlock()

	c.metrics.setActive("")
	return true, nil
}

func (c *Coordinator) unavailable(ctx context.Context, op string, kind provider.Kind) (provider.Credential, error) {
	c.metrics.observe(op, kind, resultUnavailable)
	c.logger.DebugContext(ctx, "socialauth: provider not registered")
	return provider.Credential{}, &provider.UnavailableError{Kind: kind}
}

func (c *Coordinator) busy(ctx context.Context, op string, kind provider.Kind) (provider.Credential, error) {
	c.metrics.observe(op, kind, resultBusy)
	c.logger.DebugContext(ctx, "socialauth: rejected, another operation is in progress")
	return provider.Credential{}, provider.ErrBusy
}

func (c *Coordinator) acquire(p provider.Provider) bool {
	if !c.inflight.CompareAndSwap(false, true) {
		return false
	}
	c.mu.Lock()
	c.pending = p
	c.mu.Unlock()
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.inflight.Store(false)
}

// current returns the active kind and its provider. The provider is nil when
// nothing is active or the active kind is no longer registered.
func (c *Coordinator) current() (provider.Kind, provider.Provider) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.active.IsZero() {
		return "", nil
	}
	return c.active, c.lookupLocked(c.active)
}

func (c *Coordinator) lookup(kind provider.Kind) provider.Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookupLocked(kind)
}

func (c *Coordinator) lookupLocked(kind provider.Kind) provider.Provider {
	for _, e := range c.entries {
		if e.kind == kind {
			return e.provider
		}
	}
	return nil
}

func (c *Coordinator) snapshot() []entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entry(nil), c.entries...)
}

func opContext(ctx context.Context, op string, kind provider.Kind) context.Context {
	return logger.WithOperation(logger.WithProvider(ctx, kindLabel(kind)), op)
}

func storageError(err error) error {
	if errors.Is(err, session.ErrStorage) {
		return err
	}
	return errors.Join(session.ErrStorage, err)
}
