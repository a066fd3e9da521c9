package internal_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth/internal"
	"github.com/dmitrymomot/socialauth/pkg/notify"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/session"
)

var errBoom = errors.New("boom")

type mockProvider struct {
	setupErr   error
	signInErr  error
	restoreErr error
	signOutErr error

	// started is closed when SignIn begins; SignIn then waits on release.
	started chan struct{}
	release chan struct{}

	// signOutStarted is closed when SignOut begins; SignOut then waits on signOutRelease.
	signOutStarted chan struct{}
	signOutRelease chan struct{}

	current  *provider.Credential
	calls    map[string]int
	kind     provider.Kind
	previous bool
	claims   bool

	mu sync.Mutex
}

func newMock(kind provider.Kind) *mockProvider {
	return &mockProvider{kind: kind, calls: make(map[string]int)}
}

func (m *mockProvider) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
}

func (m *mockProvider) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockProvider) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockProvider) credential() provider.Credential {
	return provider.Credential{
		Kind:      m.kind,
		AuthToken: "token-" + m.kind.String(),
		Identity:  &provider.UserIdentity{UserID: "user-" + m.kind.String()},
	}
}

func (m *mockProvider) succeed() (provider.Credential, error) {
	cred := m.credential()
	m.mu.Lock()
	m.current = &cred
	m.mu.Unlock()
	return cred, nil
}

func (m *mockProvider) CurrentIdentity() (provider.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return provider.Credential{}, false
	}
	return *m.current, true
}

func (m *mockProvider) HasPreviousSignIn(context.Context) bool {
	m.record("has_previous")
	return m.previous
}

func (m *mockProvider) Setup(provider.SetupConfig) error {
	m.record("setup")
	return m.setupErr
}

func (m *mockProvider) SignIn(ctx context.Context, _ provider.SignInRequest) (provider.Credential, error) {
	m.record("sign_in")
	if m.started != nil {
		close(m.started)
		select {
		case <-m.release:
		case <-ctx.Done():
			return provider.Credential{}, ctx.Err()
		}
	}
	if m.signInErr != nil {
		return provider.Credential{}, m.signInErr
	}
	return m.succeed()
}

func (m *mockProvider) SignOut(ctx context.Context) (bool, error) {
	m.record("sign_out")
	if m.signOutStarted != nil {
		close(m.signOutStarted)
		select {
		case <-m.signOutRelease:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if m.signOutErr != nil {
		return false, m.signOutErr
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return true, nil
}

func (m *mockProvider) RestoreSession(context.Context) (provider.Credential, error) {
	m.record("restore")
	if m.restoreErr != nil {
		return provider.Credential{}, m.restoreErr
	}
	return m.succeed()
}

func (m *mockProvider) HandleCallback(provider.Callback) bool {
	m.record("callback")
	return m.claims
}

func (m *mockProvider) InvalidateOnExternalError() {
	m.record("invalidate")
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

type mockSignUp struct {
	*mockProvider
}

func (m mockSignUp) SignUp(context.Context, provider.SignUpRequest) (provider.Credential, error) {
	m.record("sign_up")
	cred := m.credential()
	cred.Identity.IsNewAccount = true
	return cred, nil
}

// failingStore fails Save and Clear with err. Load fails with loadErr when set.
type failingStore struct {
	*session.MemoryStore
	err     error
	loadErr error
}

func (s failingStore) Load(ctx context.Context) (provider.Kind, error) {
	if s.loadErr != nil {
		return "", s.loadErr
	}
	return s.MemoryStore.Load(ctx)
}

func (s failingStore) Save(context.Context, provider.Kind) error { return s.err }
func (s failingStore) Clear(context.Context) error               { return s.err }

func persisted(t *testing.T, store session.Store) provider.Kind {
	t.Helper()
	kind, err := store.Load(context.Background())
	if errors.Is(err, session.ErrNotFound) {
		return provider.KindNone
	}
	require.NoError(t, err)
	return kind
}

func newCoordinator(t *testing.T, store session.Store, opts ...internal.Option) *internal.Coordinator {
	t.Helper()
	opts = append([]internal.Option{internal.WithHub(notify.NewHub())}, opts...)
	c, err := internal.New(context.Background(), store, opts...)
	require.NoError(t, err)
	return c
}

func TestCoordinator_SignInSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, kind := range []provider.Kind{provider.KindGoogle, provider.KindFacebook, provider.KindApple, "custom"} {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()
			store := session.NewMemoryStore()
			p := newMock(kind)
			c := newCoordinator(t, store, internal.WithProvider(kind, p))

			cred, err := c.SignIn(ctx, kind, provider.SignInRequest{})
			require.NoError(t, err)
			require.Equal(t, kind, cred.Kind)
			require.Equal(t, kind, c.ActiveKind())
			require.Equal(t, kind, persisted(t, store))

			current, ok := c.CurrentIdentity()
			require.True(t, ok)
			require.Equal(t, "user-"+kind.String(), current.UserID())
		})
	}
}

func TestCoordinator_SignInFailureLeavesState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	facebook := newMock(provider.KindFacebook)
	facebook.signInErr = provider.ErrCancelled

	c := newCoordinator(t, store,
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)

	cred, err := c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.Equal(t, provider.ErrCancelled, err, "provider errors are passed through unwrapped")
	require.True(t, cred.IsZero())
	require.Equal(t, provider.KindGoogle, c.ActiveKind())
	require.Equal(t, provider.KindGoogle, persisted(t, store))
}

func TestCoordinator_SignInUnavailable(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	c := newCoordinator(t, store)

	_, err := c.SignIn(context.Background(), provider.KindApple, provider.SignInRequest{})
	require.ErrorIs(t, err, provider.ErrProviderUnavailable)

	var unavailable *provider.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, provider.KindApple, unavailable.Kind)
	require.Equal(t, "Apple sign in is unavailable.", err.Error())
	require.Equal(t, provider.KindNone, c.ActiveKind())
}

func TestCoordinator_SignOutWithoutSession(t *testing.T) {
	t.Parallel()
	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

	for range 2 {
		ok, err := c.SignOut(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, provider.KindNone, c.ActiveKind())
	}
	require.Zero(t, google.totalCalls())
}

func TestCoordinator_SignOutRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)

	ok, err := c.SignOut(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, provider.KindNone, c.ActiveKind())

	_, err = store.Load(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)

	_, ok = c.CurrentIdentity()
	require.False(t, ok)
}

func TestCoordinator_SignOutFailureLeavesState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	google.signOutErr = errBoom
	c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)

	ok, err := c.SignOut(ctx)
	require.Equal(t, errBoom, err)
	require.False(t, ok)
	require.Equal(t, provider.KindGoogle, c.ActiveKind())
	require.Equal(t, provider.KindGoogle, persisted(t, store))
}

func TestCoordinator_RestoreWithoutSession(t *testing.T) {
	t.Parallel()
	google := newMock(provider.KindGoogle)
	c := newCoordinator(t, session.NewMemoryStore(), internal.WithProvider(provider.KindGoogle, google))

	_, err := c.RestoreSession(context.Background())
	require.Equal(t, provider.ErrSignInFailed, err)
	require.Zero(t, google.totalCalls())
}

func TestCoordinator_RestoreRepersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore(provider.KindFacebook)
	facebook := newMock(provider.KindFacebook)
	c := newCoordinator(t, store, internal.WithProvider(provider.KindFacebook, facebook))

	// the store is lost behind the coordinator's back
	require.NoError(t, store.Clear(ctx))

	cred, err := c.RestoreSession(ctx)
	require.NoError(t, err)
	require.Equal(t, provider.KindFacebook, cred.Kind)
	require.Equal(t, 1, facebook.count("restore"))
	require.Equal(t, provider.KindFacebook, persisted(t, store))
}

func TestCoordinator_RestoreFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore(provider.KindGoogle)
	google := newMock(provider.KindGoogle)
	google.restoreErr = provider.ErrSessionRestore
	c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

	_, err := c.RestoreSession(ctx)
	require.Equal(t, provider.ErrSessionRestore, err)
	require.Equal(t, provider.KindGoogle, c.ActiveKind())
	require.Equal(t, provider.KindGoogle, persisted(t, store))
}

func TestCoordinator_RestoreExplicit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unregistered kind", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore(provider.KindGoogle)
		google := newMock(provider.KindGoogle)
		c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

		_, err := c.RestoreSessionExplicit(ctx, provider.KindApple)
		require.ErrorIs(t, err, provider.ErrProviderUnavailable)
		require.Equal(t, provider.KindGoogle, c.ActiveKind())
		require.Equal(t, provider.KindGoogle, persisted(t, store))
		require.Zero(t, google.totalCalls())
	})

	t.Run("promotes provider", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore(provider.KindGoogle)
		google := newMock(provider.KindGoogle)
		apple := newMock(provider.KindApple)
		c := newCoordinator(t, store,
			internal.WithProvider(provider.KindGoogle, google),
			internal.WithProvider(provider.KindApple, apple),
		)

		cred, err := c.RestoreSessionExplicit(ctx, provider.KindApple)
		require.NoError(t, err)
		require.Equal(t, provider.KindApple, cred.Kind)
		require.Equal(t, provider.KindApple, c.ActiveKind())
		require.Equal(t, provider.KindApple, persisted(t, store))
		require.Zero(t, apple.count("sign_in"))
	})
}

func TestCoordinator_ColdStart(t *testing.T) {
	t.Parallel()

	t.Run("persisted kind registered", func(t *testing.T) {
		t.Parallel()
		c := newCoordinator(t, session.NewMemoryStore(provider.KindFacebook),
			internal.WithProvider(provider.KindFacebook, newMock(provider.KindFacebook)),
			internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)),
		)
		require.Equal(t, provider.KindFacebook, c.ActiveKind())
	})

	t.Run("persisted kind not registered", func(t *testing.T) {
		t.Parallel()
		c := newCoordinator(t, session.NewMemoryStore(provider.KindApple),
			internal.WithProvider(provider.KindFacebook, newMock(provider.KindFacebook)),
			internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)),
		)
		require.Equal(t, provider.KindNone, c.ActiveKind())

		_, err := c.RestoreSession(context.Background())
		require.Equal(t, provider.ErrSignInFailed, err)

		// registering the persisted kind later resumes it
		require.NoError(t, c.RegisterProvider(provider.KindApple, newMock(provider.KindApple)))
		require.Equal(t, provider.KindApple, c.ActiveKind())
	})

	t.Run("unreadable store", func(t *testing.T) {
		t.Parallel()
		store := failingStore{MemoryStore: session.NewMemoryStore(provider.KindGoogle), loadErr: session.ErrStorage}
		c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)))
		require.Equal(t, provider.KindNone, c.ActiveKind())
	})
}

func TestCoordinator_Registry(t *testing.T) {
	t.Parallel()

	c := newCoordinator(t, session.NewMemoryStore(),
		internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)),
		internal.WithProvider(provider.KindFacebook, newMock(provider.KindFacebook)),
		internal.WithSignUpProvider(provider.KindManual, mockSignUp{newMock(provider.KindManual)}),
	)
	require.Equal(t, []provider.Kind{provider.KindGoogle, provider.KindFacebook, provider.KindManual}, c.Providers())
	require.True(t, c.CanSignUp(provider.KindManual))
	require.False(t, c.CanSignUp(provider.KindGoogle))

	// re-registration replaces in place
	replacement := newMock(provider.KindGoogle)
	require.NoError(t, c.RegisterProvider(provider.KindGoogle, replacement))
	require.Equal(t, []provider.Kind{provider.KindGoogle, provider.KindFacebook, provider.KindManual}, c.Providers())

	_, err := c.SignIn(context.Background(), provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, replacement.count("sign_in"))

	// a plain registration drops sign-up capability
	require.NoError(t, c.RegisterProvider(provider.KindManual, newMock(provider.KindManual)))
	require.False(t, c.CanSignUp(provider.KindManual))

	c.UnregisterProvider(provider.KindFacebook)
	require.Equal(t, []provider.Kind{provider.KindGoogle, provider.KindManual}, c.Providers())

	require.ErrorIs(t, c.RegisterProvider(provider.KindNone, newMock(provider.KindNone)), internal.ErrInvalidRegistration)
	require.ErrorIs(t, c.RegisterProvider("apple", nil), internal.ErrInvalidRegistration)

	_, err = internal.New(context.Background(), nil, internal.WithProvider("", newMock("")))
	require.ErrorIs(t, err, internal.ErrInvalidRegistration)
}

func TestCoordinator_DanglingPointer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)

	c.UnregisterProvider(provider.KindGoogle)
	require.Equal(t, provider.KindGoogle, c.ActiveKind())

	_, ok := c.CurrentIdentity()
	require.False(t, ok)
	require.False(t, c.HandleCallback(provider.Callback{}))

	_, err = c.RestoreSession(ctx)
	require.ErrorIs(t, err, provider.ErrProviderUnavailable)

	ok, err = c.SignOut(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, provider.KindNone, c.ActiveKind())
	require.Equal(t, provider.KindNone, persisted(t, store))
	require.Zero(t, google.count("sign_out"))
}

func TestCoordinator_InvalidateOnExternalError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("active session", func(t *testing.T) {
		t.Parallel()
		store := session.NewMemoryStore()
		google := newMock(provider.KindGoogle)
		c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, google))

		_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
		require.NoError(t, err)

		c.InvalidateOnExternalError(ctx)
		require.Equal(t, provider.KindNone, c.ActiveKind())
		require.Equal(t, provider.KindNone, persisted(t, store))
		require.Equal(t, 1, google.count("invalidate"))
		require.Zero(t, google.count("sign_out"))
	})

	t.Run("no session", func(t *testing.T) {
		t.Parallel()
		c := newCoordinator(t, session.NewMemoryStore())
		c.InvalidateOnExternalError(ctx)
		require.Equal(t, provider.KindNone, c.ActiveKind())
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		store := failingStore{MemoryStore: session.NewMemoryStore(provider.KindGoogle), err: errBoom}
		c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)))
		require.Equal(t, provider.KindGoogle, c.ActiveKind())

		c.InvalidateOnExternalError(ctx)
		require.Equal(t, provider.KindNone, c.ActiveKind())
	})
}

func TestCoordinator_SwitchProviders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	facebook := newMock(provider.KindFacebook)
	c := newCoordinator(t, store,
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)
	_, err = c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.NoError(t, err)

	require.Equal(t, provider.KindFacebook, c.ActiveKind())
	require.Equal(t, provider.KindFacebook, persisted(t, store))

	googleCred, ok := google.CurrentIdentity()
	require.True(t, ok)
	require.Equal(t, "user-googleLogin", googleCred.UserID())
	require.Zero(t, google.count("sign_out"))
}

func TestCoordinator_StoreFailureOnCommit(t *testing.T) {
	t.Parallel()
	store := failingStore{MemoryStore: session.NewMemoryStore(), err: errBoom}
	c := newCoordinator(t, store, internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)))

	cred, err := c.SignIn(context.Background(), provider.KindGoogle, provider.SignInRequest{})
	require.ErrorIs(t, err, session.ErrStorage)
	require.ErrorIs(t, err, errBoom)
	require.True(t, cred.IsZero())
	require.Equal(t, provider.KindNone, c.ActiveKind())
}

func TestCoordinator_RejectsConcurrentOperations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	google.started = make(chan struct{})
	google.release = make(chan struct{})
	facebook := newMock(provider.KindFacebook)

	c := newCoordinator(t, store,
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
		internal.WithSignUpProvider(provider.KindManual, mockSignUp{newMock(provider.KindManual)}),
	)

	type result struct {
		err  error
		cred provider.Credential
	}
	done := make(chan result, 1)
	go func() {
		cred, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
		done <- result{cred: cred, err: err}
	}()

	select {
	case <-google.started:
	case <-time.After(5 * time.Second):
		t.Fatal("sign in did not start")
	}

	_, err := c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.ErrorIs(t, err, provider.ErrBusy)
	_, err = c.RestoreSessionExplicit(ctx, provider.KindFacebook)
	require.ErrorIs(t, err, provider.ErrBusy)
	_, err = c.SignUp(ctx, provider.KindManual, provider.SignUpRequest{})
	require.ErrorIs(t, err, provider.ErrBusy)
	require.Zero(t, facebook.totalCalls())

	close(google.release)

	select {
	case r := <-done:
		require.NoError(t, r.err)
		require.Equal(t, provider.KindGoogle, r.cred.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("sign in did not finish")
	}

	// the slot is free again
	_, err = c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.NoError(t, err)
	require.Equal(t, provider.KindFacebook, c.ActiveKind())
}

func TestCoordinator_SignUp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := session.NewMemoryStore()
	c := newCoordinator(t, store,
		internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)),
		internal.WithSignUpProvider(provider.KindManual, mockSignUp{newMock(provider.KindManual)}),
	)

	cred, err := c.SignUp(ctx, provider.KindManual, provider.SignUpRequest{Username: "u", Password: "p"})
	require.NoError(t, err)
	require.True(t, cred.Identity.IsNewAccount)
	require.Equal(t, provider.KindManual, c.ActiveKind())
	require.Equal(t, provider.KindManual, persisted(t, store))

	_, err = c.SignUp(ctx, provider.KindGoogle, provider.SignUpRequest{})
	require.ErrorIs(t, err, provider.ErrProviderUnavailable)
	require.Equal(t, provider.KindManual, c.ActiveKind())
}

func TestCoordinator_Setup(t *testing.T) {
	t.Parallel()
	cfg := provider.SetupConfig{KeychainServicePrefix: "com.example"}

	build := func(opts ...internal.Option) (*internal.Coordinator, []*mockProvider) {
		google := newMock(provider.KindGoogle)
		facebook := newMock(provider.KindFacebook)
		facebook.setupErr = provider.NewSetupError(provider.KindFacebook, errBoom)
		apple := newMock(provider.KindApple)
		apple.setupErr = provider.NewSetupError(provider.KindApple, errBoom)

		opts = append([]internal.Option{
			internal.WithProvider(provider.KindGoogle, google),
			internal.WithProvider(provider.KindFacebook, facebook),
			internal.WithProvider(provider.KindApple, apple),
		}, opts...)
		return newCoordinator(t, session.NewMemoryStore(), opts...), []*mockProvider{google, facebook, apple}
	}

	t.Run("fail fast", func(t *testing.T) {
		t.Parallel()
		c, mocks := build()

		err := c.Setup(cfg)
		require.ErrorIs(t, err, provider.ErrSetup)
		require.Equal(t, "Facebook SDK setup failed: boom", err.Error())
		require.Equal(t, 1, mocks[0].count("setup"))
		require.Equal(t, 1, mocks[1].count("setup"))
		require.Zero(t, mocks[2].count("setup"))
	})

	t.Run("collect", func(t *testing.T) {
		t.Parallel()
		c, mocks := build(internal.WithCollectSetupErrors())

		err := c.Setup(cfg)
		require.ErrorIs(t, err, provider.ErrSetup)
		require.Contains(t, err.Error(), "Facebook SDK setup failed")
		require.Contains(t, err.Error(), "Apple Sign In setup failed")
		for _, m := range mocks {
			require.Equal(t, 1, m.count("setup"))
		}
	})
}

func TestCoordinator_HandleCallbackRoutesToActiveOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	google := newMock(provider.KindGoogle)
	google.claims = true
	facebook := newMock(provider.KindFacebook)
	facebook.claims = true
	c := newCoordinator(t, session.NewMemoryStore(),
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	require.False(t, c.HandleCallback(provider.Callback{}))
	require.Zero(t, google.count("callback"))

	_, err := c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.NoError(t, err)

	require.True(t, c.HandleCallback(provider.Callback{}))
	require.Equal(t, 1, facebook.count("callback"))
	require.Zero(t, google.count("callback"))
}

func TestCoordinator_PreviousSignIns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	google := newMock(provider.KindGoogle)
	google.previous = true
	facebook := newMock(provider.KindFacebook)
	c := newCoordinator(t, session.NewMemoryStore(),
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	require.False(t, c.HasPreviousSignIn(ctx))

	found, err := c.PreviousSignIns(ctx)
	require.NoError(t, err)
	require.Equal(t, map[provider.Kind]bool{
		provider.KindGoogle:   true,
		provider.KindFacebook: false,
	}, found)

	_, err = c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)
	require.True(t, c.HasPreviousSignIn(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.PreviousSignIns(cancelled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCoordinator_InvalidateOnRevocation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	hub := notify.NewHub()
	c, err := internal.New(ctx, session.NewMemoryStore(),
		internal.WithHub(hub),
		internal.WithInvalidateOnRevocation(),
		internal.WithProvider(provider.KindApple, newMock(provider.KindApple)),
	)
	require.NoError(t, err)
	require.Same(t, hub, c.Revocations())

	_, err = c.SignIn(ctx, provider.KindApple, provider.SignInRequest{})
	require.NoError(t, err)

	require.Equal(t, 1, hub.Publish(notify.CredentialRevoked))
	require.Equal(t, provider.KindNone, c.ActiveKind())

	c.Close()
	require.Zero(t, hub.Subscribers(notify.CredentialRevoked))
}

func TestCoordinator_Metrics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	facebook := newMock(provider.KindFacebook)
	facebook.signInErr = provider.ErrCancelled
	c := newCoordinator(t, session.NewMemoryStore(),
		internal.WithMetrics(reg),
		internal.WithProvider(provider.KindGoogle, newMock(provider.KindGoogle)),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)
	_, err = c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var active []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			switch mf.GetName() {
			case "socialauth_operations_total":
				counts[labels["operation"]+"/"+labels["provider"]+"/"+labels["result"]] = m.GetCounter().GetValue()
			case "socialauth_active_session":
				if m.GetGauge().GetValue() == 1 {
					active = append(active, labels["provider"])
				}
			}
		}
	}
	require.Equal(t, float64(1), counts["sign_in/googleLogin/success"])
	require.Equal(t, float64(1), counts["sign_in/facebookLogin/failure"])
	require.Equal(t, []string{"googleLogin"}, active)

	// a second coordinator on the same registry shares the collectors
	_, err = internal.New(ctx, nil, internal.WithMetrics(reg), internal.WithHub(notify.NewHub()))
	require.NoError(t, err)
}

func TestCoordinator_HandleCallbackDuringSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	google := newMock(provider.KindGoogle)
	facebook := newMock(provider.KindFacebook)
	facebook.claims = true
	facebook.started = make(chan struct{})
	facebook.release = make(chan struct{})
	c := newCoordinator(t, session.NewMemoryStore(provider.KindGoogle),
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	done := make(chan error, 1)
	go func() {
		_, err := c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
		done <- err
	}()
	<-facebook.started

	// the redirect belongs to the provider that is signing in, not the active one
	require.True(t, c.HandleCallback(provider.Callback{}))
	require.Equal(t, 1, facebook.count("callback"))
	require.Zero(t, google.count("callback"))

	close(facebook.release)
	require.NoError(t, <-done)
	require.Equal(t, provider.KindFacebook, c.ActiveKind())
}

func TestCoordinator_SignOutKeepsSessionCommittedMeanwhile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore()
	google := newMock(provider.KindGoogle)
	facebook := newMock(provider.KindFacebook)
	c := newCoordinator(t, store,
		internal.WithProvider(provider.KindGoogle, google),
		internal.WithProvider(provider.KindFacebook, facebook),
	)

	_, err := c.SignIn(ctx, provider.KindGoogle, provider.SignInRequest{})
	require.NoError(t, err)

	google.signOutStarted = make(chan struct{})
	google.signOutRelease = make(chan struct{})

	type result struct {
		err error
		ok  bool
	}
	done := make(chan result, 1)
	go func() {
		ok, err := c.SignOut(ctx)
		done <- result{ok: ok, err: err}
	}()
	<-google.signOutStarted

	_, err = c.SignIn(ctx, provider.KindFacebook, provider.SignInRequest{})
	require.NoError(t, err)
	require.Equal(t, provider.KindFacebook, c.ActiveKind())

	close(google.signOutRelease)
	res := <-done
	require.NoError(t, res.err)
	require.True(t, res.ok)

	require.Equal(t, provider.KindFacebook, c.ActiveKind())
	require.Equal(t, provider.KindFacebook, persisted(t, store))
	_, signedIn := facebook.CurrentIdentity()
	require.True(t, signedIn)
	_, signedIn = google.CurrentIdentity()
	require.False(t, signedIn)
}
