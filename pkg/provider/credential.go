package provider

// Credential is the provider-agnostic result of a successful sign-in,
// sign-up or session restore. Providers build a fresh value for every
// success and never merge fields from another provider's credential.
type Credential struct {
	Password        *PasswordCredential
	Identity        *UserIdentity
	AuthToken       string
	AuthTokenSecret string
	Kind            Kind
}

// UserIdentity describes the authenticated user.
// UserID is the only mandatory field; it is assigned by the provider and stable.
type UserIdentity struct {
	DisplayName  string
	UserID       string
	Email        string
	IsNewAccount bool
}

// PasswordCredential is a username/password pair returned by providers that
// hand out stored passwords (the manual provider, Apple's password autofill).
type PasswordCredential struct {
	Username string
	Password string
}

// UserID returns the identity's user ID, or an empty string when the
// credential carries no identity.
func (c Credential) UserID() string {
	if c.Identity == nil {
		return ""
	}
	return c.Identity.UserID
}

// IsZero reports whether c is the empty credential.
func (c Credential) IsZero() bool {
	return c.Kind == "" && c.Identity == nil && c.Password == nil && c.AuthToken == ""
}
