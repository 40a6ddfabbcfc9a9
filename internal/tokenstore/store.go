package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"withings/pkg/logging"

	"golang.org/x/oauth2"
)

// ErrNotFound is returned by Load when no token file exists.
var ErrNotFound = errors.New("no stored tokens")

// Token is the persisted token pair with metadata.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// UserID is the provider's user id, recorded at exchange time.
	UserID string `json:"user_id,omitempty"`

	// Expiry is when the access token expires, if the provider said so.
	Expiry time.Time `json:"expiry,omitempty"`

	// UpdatedAt is when the pair was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the access token is known to have expired at now.
func (t *Token) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && !now.Before(t.Expiry)
}

// OAuth2Token converts the stored pair to an oauth2.Token.
func (t *Token) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       t.Expiry,
	}
}

// Store reads and writes one token file.
type Store struct {
	path string
	now  func() time.Time
}

// New returns a Store backed by path.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the token file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored pair. It returns ErrNotFound when the file is absent.
func (s *Store) Load() (*Token, error) {
	// #nosec G304 -- path comes from the user's own configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file %s: %w", s.path, err)
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s is missing a token", s.path)
	}
	return &tok, nil
}

// Save writes tok, stamping UpdatedAt.
func (s *Store) Save(tok Token) error {
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return errors.New("refusing to store an incomplete token pair")
	}
	tok.UpdatedAt = s.now().UTC()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		logging.Warn("TokenStore", "Failed to store tokens at %s: %v", s.path, err)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	logging.Info("TokenStore", "Stored tokens at %s (expiry=%s)", s.path, formatExpiry(tok.Expiry))
	return nil
}

// Delete removes the token file. A missing file is not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	logging.Info("TokenStore", "Removed tokens at %s", s.path)
	return nil
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(time.RFC3339)
}
