package provider

// Kind identifies a sign-in provider. Two kinds are equal when their
// identifiers are equal. The identifier is what gets persisted by the
// session store, so built-in values must never change.
type Kind string

// Built-in provider kinds. Any other non-empty identifier is a custom kind.
const (
	KindFacebook Kind = "facebookLogin"
	KindGoogle   Kind = "googleLogin"
	KindApple    Kind = "appleLogin"
	KindManual   Kind = "manualLogin"
	KindNone     Kind = "none"
)

// String returns the persisted identifier.
func (k Kind) String() string {
	return string(k)
}

// IsZero reports whether k names no provider.
func (k Kind) IsZero() bool {
	return k == "" || k == KindNone
}

// label is the human name used in error messages.
func (k Kind) label() string {
	switch k {
	case KindGoogle:
		return "Google"
	case KindFacebook:
		return "Facebook"
	case KindApple:
		return "Apple"
	case KindManual:
		return "Manual"
	default:
		return ""
	}
}
