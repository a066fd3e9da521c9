package oauth

import (
	"context"
	"net/url"

	"golang.org/x/oauth2"
	facebookOAuth "golang.org/x/oauth2/facebook"
)

const (
	// FacebookProviderName is the identifier for Facebook Login.
	FacebookProviderName = "facebook"
	facebookGraphURL     = "https://graph.facebook.com/"
	facebookFields       = "id,name,email,first_name,last_name,picture"
	defaultGraphVersion  = "v19.0"
)

// FacebookDefaultScopes returns the default Facebook Login permissions.
func FacebookDefaultScopes() []string {
	return []string{"public_profile", "email"}
}

// FacebookProvider implements Provider for Facebook Login.
// Facebook only exposes confirmed emails and may omit the field entirely
// when the user declined the email permission.
type FacebookProvider struct {
	client
	meURL string
}

// NewFacebookProvider creates a new Facebook Login provider.
// Returns an error if AppID is empty.
func NewFacebookProvider(cfg FacebookConfig, opts ...Option) (*FacebookProvider, error) {
	if cfg.AppID == "" {
		return nil, ErrMissingClientID
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = FacebookDefaultScopes()
	}
	version := cfg.GraphVersion
	if version == "" {
		version = defaultGraphVersion
	}

	q := url.Values{"fields": {facebookFields}}
	return &FacebookProvider{
		client: newClient(FacebookProviderName, &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     facebookOAuth.Endpoint,
		}, opts),
		meURL: facebookGraphURL + version + "/me?" + q.Encode(),
	}, nil
}

// FetchUserInfo retrieves the user's profile from the Graph API.
func (p *FacebookProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	var fbUser facebookUser
	if err := p.getJSON(ctx, token, p.meURL, &fbUser); err != nil {
		return nil, err
	}

	return &UserInfo{
		ID:         fbUser.ID,
		Email:      fbUser.Email,
		Name:       fbUser.Name,
		GivenName:  fbUser.FirstName,
		FamilyName: fbUser.LastName,
		Picture:    fbUser.Picture.Data.URL,
	}, nil
}

// facebookUser represents the Graph API /me response.
type facebookUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}
