package oauth

import (
	"context"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

const (
	// GoogleProviderName is the identifier for Google OAuth provider.
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
// "openid" makes Google return an ID token alongside the access token.
func GoogleDefaultScopes() []string {
	return []string{
		"openid",
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleProvider implements Provider for Google OAuth.
type GoogleProvider struct {
	client
}

// NewGoogleProvider creates a new Google OAuth provider.
// Returns an error if ClientID is empty.
func NewGoogleProvider(cfg GoogleConfig, opts ...Option) (*GoogleProvider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GoogleDefaultScopes()
	}

	return &GoogleProvider{
		client: newClient(GoogleProviderName, &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     googleOAuth.Endpoint,
		}, opts),
	}, nil
}

// FetchUserInfo retrieves user information from Google.
// Returns ErrEmailNotVerified if the user's email is not verified.
func (p *GoogleProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	var googleUser googleUserInfo
	if err := p.getJSON(ctx, token, googleUserInfoURL, &googleUser); err != nil {
		return nil, err
	}

	if !googleUser.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}

	return &UserInfo{
		ID:         googleUser.ID,
		Email:      googleUser.Email,
		Name:       googleUser.Name,
		GivenName:  googleUser.GivenName,
		FamilyName: googleUser.FamilyName,
		Picture:    googleUser.Picture,
	}, nil
}

// IDToken returns the OpenID Connect ID token carried by token, if any.
func IDToken(token *oauth2.Token) string {
	if token == nil {
		return ""
	}
	v, _ := token.Extra("id_token").(string)
	return v
}

// googleUserInfo represents the response from Google's userinfo endpoint.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}
