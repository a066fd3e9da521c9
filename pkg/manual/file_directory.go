package manual

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/socialauth/pkg/atomicfile"
	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// FileDirectory is a MemoryDirectory persisted to a YAML file.
// The file is read once on open and rewritten atomically after every registration.
type FileDirectory struct {
	*MemoryDirectory
	path string
}

type accountsFile struct {
	Accounts []Account `yaml:"accounts"`
}

// OpenFileDirectory loads the accounts file at path. A missing file is an
// empty directory; it is created on the first registration.
func OpenFileDirectory(path string, opts ...DirectoryOption) (*FileDirectory, error) {
	d := &FileDirectory{MemoryDirectory: NewMemoryDirectory(opts...), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return d, nil
		}
		return nil, errors.Join(ErrDirectory, fmt.Errorf("read %s: %w", path, err))
	}

	var f accountsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrDirectory, fmt.Errorf("parse %s: %w", path, err))
	}
	for _, acc := range f.Accounts {
		if err := d.insert(acc); err != nil {
			return nil, errors.Join(ErrDirectory, fmt.Errorf("duplicate username %q in %s", acc.Username, path))
		}
	}
	return d, nil
}

// Path returns the accounts file location.
func (d *FileDirectory) Path() string {
	return d.path
}

// Register stores a new account and rewrites the file.
// The in-memory directory is left unchanged if the write fails.
func (d *FileDirectory) Register(_ context.Context, req provider.SignUpRequest) (Account, error) {
	acc, err := d.newAccount(req)
	if err != nil {
		return Account{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.insert(acc); err != nil {
		return Account{}, err
	}
	if err := d.persist(); err != nil {
		delete(d.accounts, normalizeUsername(acc.Username))
		return Account{}, err
	}
	return acc, nil
}

// persist must be called with d.mu held.
func (d *FileDirectory) persist() error {
	f := accountsFile{Accounts: make([]Account, 0, len(d.accounts))}
	for _, acc := range d.accounts {
		f.Accounts = append(f.Accounts, acc)
	}
	sort.Slice(f.Accounts, func(i, j int) bool {
		return f.Accounts[i].CreatedAt.Before(f.Accounts[j].CreatedAt)
	})

	data, err := yaml.Marshal(&f)
	if err != nil {
		return errors.Join(ErrDirectory, fmt.Errorf("encode accounts: %w", err))
	}
	if err := atomicfile.WriteFile(d.path, data, 0o600); err != nil {
		return errors.Join(ErrDirectory, err)
	}
	return nil
}

var _ Directory = (*FileDirectory)(nil)
