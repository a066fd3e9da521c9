package session

import (
	"context"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// Key is the persisted preference key holding the active provider kind.
const Key = "ANAuthLogin"

// Store persists which provider is active. It never holds credentials;
// those stay behind each provider.
//
// An absent record means "no remembered session".
type Store interface {
	// Load returns the remembered kind.
	// Returns ErrNotFound if nothing is remembered.
	Load(ctx context.Context) (provider.Kind, error)

	// Save remembers kind, replacing any previous value.
	Save(ctx context.Context, kind provider.Kind) error

	// Clear forgets the remembered kind. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func validKind(kind provider.Kind) error {
	if kind.IsZero() {
		return ErrInvalidKind
	}
	return nil
}
