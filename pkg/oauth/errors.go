package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrEmailNotVerified is returned when the OAuth provider reports
	// that the user's email is not verified.
	ErrEmailNotVerified = errors.New("oauth: email not verified")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-OK status.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrMissingToken is returned by Refresh when no token is given.
	ErrMissingToken = errors.New("oauth: missing token")
)

// Authorization flow errors.
var (
	// ErrFlowInProgress is returned by Begin while another authorization is pending.
	ErrFlowInProgress = errors.New("oauth: authorization already in progress")

	// ErrFlowCancelled is returned by Wait after Cancel.
	ErrFlowCancelled = errors.New("oauth: authorization cancelled")

	// ErrNoPendingFlow is returned by Wait when Begin was not called.
	ErrNoPendingFlow = errors.New("oauth: no pending authorization")

	// ErrMissingCode is returned when a redirect carries neither a code nor an error.
	ErrMissingCode = errors.New("oauth: redirect has no authorization code")
)
