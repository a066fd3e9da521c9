package oauth

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

// Redirect is the outcome of an authorization redirect.
type Redirect struct {
	Code             string
	State            string
	Error            string
	ErrorReason      string
	ErrorDescription string
}

// Err returns a *RedirectError when the provider reported a failure,
// ErrMissingCode when the redirect carries neither code nor error.
func (r Redirect) Err() error {
	if r.Error != "" {
		return &RedirectError{Code: r.Error, Reason: r.ErrorReason, Description: r.ErrorDescription}
	}
	if r.Code == "" {
		return ErrMissingCode
	}
	return nil
}

// RedirectError is an OAuth error reported through the redirect URL.
type RedirectError struct {
	Code        string // error, e.g. "access_denied"
	Reason      string // error_reason, Facebook only, e.g. "user_denied"
	Description string // error_description
}

func (e *RedirectError) Error() string {
	msg := "oauth: authorization error: " + e.Code
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

// AccessDenied reports whether the user refused the authorization request.
func (e *RedirectError) AccessDenied() bool {
	return e.Code == "access_denied"
}

// UserDenied reports whether the user dismissed the dialog rather than
// declining specific permissions.
func (e *RedirectError) UserDenied() bool {
	return e.AccessDenied() && e.Reason == "user_denied"
}

// Flow tracks a single pending authorization: the state value sent to the
// provider and the PKCE verifier needed to redeem the code. Only one
// authorization can be pending at a time.
type Flow struct {
	pending *pendingAuth
	mu      sync.Mutex
}

type pendingAuth struct {
	done     chan Redirect
	state    string
	verifier string
	err      error
}

// Authorization describes a started authorization.
type Authorization struct {
	State    string
	Verifier string
}

// AuthCodeOptions returns the PKCE challenge options for AuthCodeURL.
func (a Authorization) AuthCodeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(a.Verifier)}
}

// ExchangeOptions returns the PKCE verifier option for Exchange.
func (a Authorization) ExchangeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{oauth2.VerifierOption(a.Verifier)}
}

// NewFlow creates an idle flow.
func NewFlow() *Flow {
	return &Flow{}
}

// Begin starts an authorization with a fresh state and PKCE verifier.
// Returns ErrFlowInProgress if one is already pending.
func (f *Flow) Begin() (Authorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending != nil {
		return Authorization{}, ErrFlowInProgress
	}
	f.pending = &pendingAuth{
		done:     make(chan Redirect, 1),
		state:    oauth2.GenerateVerifier(),
		verifier: oauth2.GenerateVerifier(),
	}
	return Authorization{State: f.pending.state, Verifier: f.pending.verifier}, nil
}

// Pending reports whether an authorization is waiting for its redirect.
func (f *Flow) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}

// Wait blocks until the redirect for the pending authorization arrives,
// Cancel is called, or ctx is done. The flow is idle again when Wait returns.
func (f *Flow) Wait(ctx context.Context) (Redirect, error) {
	f.mu.Lock()
	p := f.pending
	f.mu.Unlock()

	if p == nil {
		return Redirect{}, ErrNoPendingFlow
	}

	select {
	case r, ok := <-p.done:
		f.clear(p)
		if !ok {
			return Redirect{}, p.err
		}
		return r, nil
	case <-ctx.Done():
		f.clear(p)
		return Redirect{}, ctx.Err()
	}
}

// Resolve delivers a redirect URL to the pending authorization.
// Returns false when nothing is pending or the state does not match, leaving
// the URL for someone else to claim.
func (f *Flow) Resolve(u *url.URL) bool {
	if u == nil {
		return false
	}
	q := u.Query()
	state := q.Get("state")

	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.pending
	if p == nil || p.err != nil || state == "" || state != p.state {
		return false
	}

	select {
	case p.done <- Redirect{
		Code:             q.Get("code"),
		State:            state,
		Error:            q.Get("error"),
		ErrorReason:      q.Get("error_reason"),
		ErrorDescription: q.Get("error_description"),
	}:
		return true
	default:
		// already resolved
		return false
	}
}

// Cancel aborts the pending authorization; Wait returns ErrFlowCancelled.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.pending
	if p == nil || p.err != nil {
		return
	}
	p.err = ErrFlowCancelled
	close(p.done)
}

func (f *Flow) clear(p *pendingAuth) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == p {
		f.pending = nil
	}
}
