package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// UserInfo represents provider-agnostic user information
// retrieved from an OAuth provider's profile endpoint.
type UserInfo struct {
	ID         string // Provider's unique user identifier
	Email      string // Empty when the provider withheld it
	Name       string
	GivenName  string
	FamilyName string
	Picture    string
}

// DisplayName returns Name, or the given and family names joined by a space.
func (u *UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	switch {
	case u.GivenName != "" && u.FamilyName != "":
		return u.GivenName + " " + u.FamilyName
	case u.GivenName != "":
		return u.GivenName
	default:
		return u.FamilyName
	}
}

// Provider abstracts provider-specific OAuth operations.
// Each provider (Google, Facebook) implements this interface and handles
// its own endpoint and profile quirks internally.
type Provider interface {
	// Name returns the provider identifier (e.g., "google", "facebook").
	Name() string

	// AuthCodeURL generates the authorization URL for the OAuth flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	// Pass oauth2.VerifierOption to complete a PKCE flow.
	Exchange(ctx context.Context, code, redirectURI string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	// Refresh returns token unchanged while it is valid, otherwise obtains a new one
	// using its refresh token.
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)

	// FetchUserInfo retrieves user information using the access token.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}
