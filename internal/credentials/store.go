package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "vaf-cli"
	keyringUser    = "api-token"

	// TokenEnv overrides any stored token, for CI use.
	TokenEnv = "VAF_TOKEN"
)

// Store holds the API bearer token in the OS keyring, falling back to a mode
// 0600 file under dir when no keyring backend is available (headless CI).
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. An empty dir selects ~/.vaf.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".vaf")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) tokenFile() string {
	return filepath.Join(s.dir, "credentials")
}

// Token returns the stored token. Resolution order: environment variable,
// keyring, fallback file. An empty string with nil error means "not logged in".
func (s *Store) Token() (string, error) {
	if env := strings.TrimSpace(os.Getenv(TokenEnv)); env != "" {
		return env, nil
	}
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil {
		return token, nil
	}
	if err != keyring.ErrNotFound && err != keyring.ErrUnsupportedPlatform {
		// Keyring backend present but unusable. Try the file before giving up.
		if fileToken, ferr := s.readTokenFile(); ferr == nil {
			return fileToken, nil
		}
		return "", fmt.Errorf("read token from keyring: %w", err)
	}
	token, err = s.readTokenFile()
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Store) readTokenFile() (string, error) {
	data, err := os.ReadFile(s.tokenFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read credentials file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SetToken stores the token, preferring the keyring.
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err == nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}
	if err := os.WriteFile(s.tokenFile(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}

// ClearToken removes the token from both the keyring and the fallback file.
func (s *Store) ClearToken() error {
	kerr := keyring.Delete(keyringService, keyringUser)
	if kerr == keyring.ErrNotFound || kerr == keyring.ErrUnsupportedPlatform {
		kerr = nil
	}
	ferr := os.Remove(s.tokenFile())
	if ferr != nil && os.IsNotExist(ferr) {
		ferr = nil
	}
	if kerr != nil {
		return fmt.Errorf("remove token from keyring: %w", kerr)
	}
	if ferr != nil {
		return fmt.Errorf("remove credentials file: %w", ferr)
	}
	return nil
}
