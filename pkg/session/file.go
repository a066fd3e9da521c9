package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/dmitrymomot/socialauth/pkg/atomicfile"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// FileStore keeps the record in a JSON preferences file shared with other
// application settings. Unrelated keys in the file are preserved on write.
type FileStore struct {
	path string
	perm fs.FileMode
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the preferences file at path.
// The file and its directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, perm: 0o600}
}

// Path returns the preferences file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the remembered kind.
func (s *FileStore) Load(_ context.Context) (provider.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return "", err
	}

	v, ok := prefs[Key].(string)
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return provider.Kind(v), nil
}

// Save remembers kind.
func (s *FileStore) Save(_ context.Context, kind provider.Kind) error {
	if err := validKind(kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	prefs[Key] = kind.String()
	return s.write(prefs)
}

// Clear forgets the remembered kind.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := prefs[Key]; !ok {
		return nil
	}
	delete(prefs, Key)
	return s.write(prefs)
}

func (s *FileStore) read() (map[string]any, error) {
	prefs := make(map[string]any)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prefs, nil
		}
		return nil, errors.Join(ErrStorage, fmt.Errorf("read preferences: %w", err))
	}
	if len(data) == 0 {
		return prefs, nil
	}

	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, errors.Join(ErrStorage, fmt.Errorf("parse preferences %s: %w", s.path, err))
	}
	return prefs, nil
}

func (s *FileStore) write(prefs map[string]any) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return errors.Join(ErrStorage, fmt.Errorf("encode preferences: %w", err))
	}
	if err := atomicfile.WriteFile(s.path, data, s.perm); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
