// Package session persists which sign-in provider is active so a relaunch can
// silently resume the same session.
//
// The record is a single key, Key ("ANAuthLogin"), holding a provider kind
// identifier. Credentials are never stored here.
//
// # Backends
//
//   - MemoryStore: process memory, for tests and short-lived processes
//   - FileStore: JSON preferences file, written atomically, other keys preserved
//   - RedisStore: Redis key, optionally prefixed
//
// # Usage
//
//	store := session.NewFileStore(filepath.Join(dir, "preferences.json"))
//	kind, err := store.Load(ctx)
//	if errors.Is(err, session.ErrNotFound) {
//		// no remembered session
//	}
package session
