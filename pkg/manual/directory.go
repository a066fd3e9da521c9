package manual

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// Account is a registered username/password user.
type Account struct {
	CreatedAt    time.Time         `yaml:"created_at"`
	Attributes   map[string]string `yaml:"attributes,omitempty"`
	ID           string            `yaml:"id"`
	Username     string            `yaml:"username"`
	DisplayName  string            `yaml:"display_name,omitempty"`
	Email        string            `yaml:"email,omitempty"`
	PasswordHash string            `yaml:"password_hash"`
}

// Directory authenticates and registers accounts.
type Directory interface {
	// Authenticate returns the account for username if password matches.
	// Returns an error matching provider.ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, username, password string) (Account, error)

	// Register creates an account.
	// Returns ErrAccountExists when the username is taken.
	Register(ctx context.Context, req provider.SignUpRequest) (Account, error)
}

// DirectoryOption configures the built-in directories.
type DirectoryOption func(*MemoryDirectory)

// WithBcryptCost sets the bcrypt cost used for new password hashes.
// Default: bcrypt.DefaultCost
func WithBcryptCost(cost int) DirectoryOption {
	return func(d *MemoryDirectory) {
		d.cost = cost
	}
}

// MemoryDirectory keeps accounts in memory. Usernames are case-insensitive.
type MemoryDirectory struct {
	accounts map[string]Account
	now      func() time.Time
	cost     int
	mu       sync.RWMutex
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory(opts ...DirectoryOption) *MemoryDirectory {
	d := &MemoryDirectory{
		accounts: make(map[string]Account),
		now:      time.Now,
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Authenticate checks password against the stored bcrypt hash.
func (d *MemoryDirectory) Authenticate(_ context.Context, username, password string) (Account, error) {
	d.mu.RLock()
	acc, ok := d.accounts[normalizeUsername(username)]
	d.mu.RUnlock()

	if !ok {
		// keep timing similar to a wrong password
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return Account{}, provider.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Account{}, provider.ErrInvalidCredentials
	}
	return acc, nil
}

// Register hashes the password and stores a new account.
func (d *MemoryDirectory) Register(_ context.Context, req provider.SignUpRequest) (Account, error) {
	acc, err := d.newAccount(req)
	if err != nil {
		return Account{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.insert(acc); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Len returns the number of accounts.
func (d *MemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.accounts)
}

func (d *MemoryDirectory) newAccount(req provider.SignUpRequest) (Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return Account{}, ErrMissingUsername
	}
	if len(req.Password) < MinPasswordLength {
		return Account{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), d.cost)
	if err != nil {
		return Account{}, errors.Join(ErrDirectory, err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = username
	}

	return Account{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  displayName,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Attributes:   req.Attributes,
		CreatedAt:    d.now().UTC(),
	}, nil
}

// insert must be called with d.mu held.
func (d *MemoryDirectory) insert(acc Account) error {
	key := normalizeUsername(acc.Username)
	if _, taken := d.accounts[key]; taken {
		return ErrAccountExists
	}
	d.accounts[key] = acc
	return nil
}

func normalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.MinCost)

var _ Directory = (*MemoryDirectory)(nil)
