package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialauth"
	"github.com/dmitrymomot/socialauth/pkg/logger"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want socialauth.Kind
	}{
		{"google", socialauth.KindGoogle},
		{"Facebook", socialauth.KindFacebook},
		{"manual", socialauth.KindManual},
		{"appleLogin", socialauth.KindApple},
	}
	for _, tt := range tests {
		got, err := parseKind(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	_, err := parseKind("twitter")
	require.ErrorIs(t, err, errUnknownKind)
	require.Contains(t, err.Error(), "apple, facebook, google, manual")
}

type callbackFunc func(socialauth.Callback) bool

func (f callbackFunc) HandleCallback(cb socialauth.Callback) bool { return f(cb) }

func TestCallbackRouter(t *testing.T) {
	t.Parallel()

	var got []string
	router := newCallbackRouter(callbackFunc(func(cb socialauth.Callback) bool {
		state := cb.URL.Query().Get("state")
		got = append(got, state)
		return state == "expected"
	}), logger.NewNope())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=expected&code=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "You can close this window")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=stale", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	require.Equal(t, []string{"expected", "stale"}, got)
}

func TestCallbackServer(t *testing.T) {
	t.Parallel()

	claimed := make(chan string, 1)
	router := newCallbackRouter(callbackFunc(func(cb socialauth.Callback) bool {
		claimed <- cb.URL.Query().Get("code")
		return true
	}), logger.NewNope())

	srv, err := startCallbackServer("127.0.0.1:0", router, logger.NewNope())
	require.NoError(t, err)

	resp, err := http.Get("http://" + srv.Addr() + "/callback?state=s&code=the-code")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "the-code", <-claimed)

	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("AUTHCTL_GOOGLE_CLIENT_ID", "google-id")
	t.Setenv("AUTHCTL_KEYCHAIN", "memory")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AUTHCTL_CALLBACK_ADDR=127.0.0.1:9999\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AUTHCTL_CALLBACK_ADDR") })

	cfg, err := loadConfig(envFile)
	require.NoError(t, err)
	require.Equal(t, "google-id", cfg.GoogleClientID)
	require.Equal(t, keychainMemory, cfg.Keychain)
	require.Equal(t, "127.0.0.1:9999", cfg.CallbackAddr)
	require.Equal(t, "http://127.0.0.1:9999/callback", cfg.redirectURL())
	require.Equal(t, "dev.socialauth.authctl", cfg.KeychainPrefix)

	// a missing env file is not an error
	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	t.Setenv("AUTHCTL_KEYCHAIN", "vault")
	_, err = loadConfig("")
	require.ErrorIs(t, err, errUnknownKeychain)
}

// run executes one authctl invocation and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	c := &cli{}
	root := c.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--env-file", ""}, args...))

	err := root.ExecuteContext(context.Background())
	c.close()
	return out.String(), err
}

func TestManualFlow(t *testing.T) {
	t.Setenv("AUTHCTL_KEYCHAIN", "memory")
	t.Setenv("AUTHCTL_DATA_DIR", t.TempDir())
	t.Setenv("AUTHCTL_CALLBACK_ADDR", "127.0.0.1:0")

	out, err := run(t, "signup", "-u", "kim", "-p", "correct-horse", "--name", "Kim", "-o", "json")
	require.NoError(t, err)

	var cred credentialView
	require.NoError(t, json.Unmarshal([]byte(out), &cred))
	require.Equal(t, "manualLogin", cred.Kind)
	require.Equal(t, "Kim", cred.DisplayName)
	require.True(t, cred.IsNewAccount)

	out, err = run(t, "status", "-o", "json")
	require.NoError(t, err)

	var st statusView
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Equal(t, "manualLogin", st.Active)
	require.True(t, st.StoreHealthy)
	require.Equal(t, []providerStatus{{Kind: "manualLogin", CanSignUp: true}}, st.Providers)

	out, err = run(t, "signin", "manual", "-u", "kim", "-p", "correct-horse")
	require.NoError(t, err)
	require.Contains(t, out, "username:")
	require.Contains(t, out, "kim")

	_, err = run(t, "signin", "manual", "-u", "kim", "-p", "wrong-password")
	require.ErrorIs(t, err, socialauth.ErrInvalidCredentials)

	_, err = run(t, "signin", "google")
	require.ErrorIs(t, err, socialauth.ErrProviderUnavailable)

	out, err = run(t, "signout")
	require.NoError(t, err)
	require.Equal(t, "signed out of manualLogin\n", out)

	out, err = run(t, "status")
	require.NoError(t, err)
	require.Contains(t, out, "none")

	_, err = run(t, "restore")
	require.ErrorIs(t, err, socialauth.ErrSignInFailed)
}
