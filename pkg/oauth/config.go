package oauth

// GoogleConfig holds Google OAuth configuration.
// ClientSecret is optional: installed and mobile clients are public and rely on PKCE.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
}

// FacebookConfig holds Facebook Login configuration.
// AppSecret is optional for the same reason as GoogleConfig.ClientSecret.
type FacebookConfig struct {
	AppID        string   `env:"FACEBOOK_APP_ID,required"`
	AppSecret    string   `env:"FACEBOOK_APP_SECRET"`
	RedirectURL  string   `env:"FACEBOOK_REDIRECT_URL" envDefault:""`
	GraphVersion string   `env:"FACEBOOK_GRAPH_VERSION" envDefault:"v19.0"`
	Scopes       []string `env:"FACEBOOK_SCOPES" envSeparator:","`
}
