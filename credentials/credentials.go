// Package credentials provides secure storage for the bot's reddit app
// credentials. The client secret and account password are encrypted at rest
// in ~/.librarian/credentials.yaml.
//
// Encryption Key Storage:
// The encryption key is stored securely using the system keyring:
// - macOS: Keychain
// - Windows: Credential Manager
// - Linux: Secret Service (libsecret)
//
// For CI/testing environments, set LIBRARIAN_ENCRYPTION_KEY to a
// 64-character hex string (32 bytes).
package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential storage constants.
const (
	DefaultCredentialsDir  = ".librarian"
	DefaultCredentialsFile = "credentials.yaml"
)

// Common errors.
var (
	// ErrNoCredentials is returned when no credentials are stored.
	ErrNoCredentials = errors.New("no credentials stored")
	// ErrIncomplete is returned when stored credentials are missing fields.
	ErrIncomplete = errors.New("incomplete credentials")
	// ErrEncryptionFailed is returned when encryption/decryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")
)

// Credentials holds the reddit script-app credentials.
type Credentials struct {
	// ClientID is the reddit app's client id.
	ClientID string `yaml:"client_id"`
	// ClientSecret is the reddit app's client secret (encrypted at rest).
	ClientSecret string `yaml:"client_secret"`
	// Username is the bot account's username.
	Username string `yaml:"username"`
	// Password is the bot account's password (encrypted at rest).
	Password string `yaml:"password"`
	// LastUpdated is when the credentials were last updated.
	LastUpdated time.Time `yaml:"last_updated"`
}

// Complete reports whether all four fields are present.
func (c *Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" &&
		c.Username != "" && c.Password != ""
}

// Store manages credential storage operations.
type Store struct {
	// credentialsDir is the directory containing credentials.
	credentialsDir string
	// encryptionKey is the key used for encrypting/decrypting credentials.
	encryptionKey []byte
}

// NewStore creates a new credential store with default settings. The
// encryption key comes from LIBRARIAN_ENCRYPTION_KEY when set, otherwise
// from the system keyring.
func NewStore() (*Store, error) {
	return NewStoreWithKeyProvider(DefaultKeyProvider())
}

// NewStoreWithKeyProvider creates a new credential store with a custom key
// provider. This is primarily used for testing.
func NewStoreWithKeyProvider(provider KeyProvider) (*Store, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return nil, fmt.Errorf("getting credentials directory: %w", err)
	}

	key, err := provider.Key()
	if err != nil {
		return nil, fmt.Errorf("getting encryption key: %w", err)
	}

	return &Store{
		credentialsDir: dir,
		encryptionKey:  key,
	}, nil
}

// CredentialsDir returns the credentials directory path.
// Uses $LIBRARIAN_CONFIG_DIR if set, otherwise ~/.librarian
func CredentialsDir() (string, error) {
	if dir := os.Getenv("LIBRARIAN_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultCredentialsDir), nil
}

// CredentialsPath returns the full path to the credentials file.
func CredentialsPath() (string, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultCredentialsFile), nil
}

// Save stores credentials to the credentials file.
func (s *Store) Save(creds *Credentials) error {
	if err := s.ensureDir(); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	// Encrypt sensitive fields.
	storageCreds := *creds
	storageCreds.LastUpdated = time.Now()

	if storageCreds.ClientSecret != "" {
		encrypted, err := s.encrypt(storageCreds.ClientSecret)
		if err != nil {
			return fmt.Errorf("encrypting client secret: %w", err)
		}
		storageCreds.ClientSecret = encrypted
	}

	if storageCreds.Password != "" {
		encrypted, err := s.encrypt(storageCreds.Password)
		if err != nil {
			return fmt.Errorf("encrypting password: %w", err)
		}
		storageCreds.Password = encrypted
	}

	data, err := yaml.Marshal(&storageCreds)
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	// Write with restrictive permissions.
	credPath := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	if err := os.WriteFile(credPath, data, 0600); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}

	return nil
}

// Load reads credentials from the credentials file.
func (s *Store) Load() (*Credentials, error) {
	credPath := filepath.Join(s.credentialsDir, DefaultCredentialsFile)

	data, err := os.ReadFile(credPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCredentials
		}
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	// Decrypt sensitive fields.
	if creds.ClientSecret != "" {
		decrypted, err := s.decrypt(creds.ClientSecret)
		if err != nil {
			return nil, fmt.Errorf("decrypting client secret: %w", err)
		}
		creds.ClientSecret = decrypted
	}

	if creds.Password != "" {
		decrypted, err := s.decrypt(creds.Password)
		if err != nil {
			return nil, fmt.Errorf("decrypting password: %w", err)
		}
		creds.Password = decrypted
	}

	return &creds, nil
}

// Delete removes stored credentials.
func (s *Store) Delete() error {
	credPath := filepath.Join(s.credentialsDir, DefaultCredentialsFile)

	if err := os.Remove(credPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("removing credentials file: %w", err)
	}

	return nil
}

// Exists checks if credentials file exists.
func (s *Store) Exists() bool {
	credPath := filepath.Join(s.credentialsDir, DefaultCredentialsFile)
	_, err := os.Stat(credPath)
	return err == nil
}

// ensureDir creates the credentials directory if it doesn't exist.
func (s *Store) ensureDir() error {
	return os.MkdirAll(s.credentialsDir, 0700)
}

// encrypt encrypts a string using AES-GCM.
func (s *Store) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generating nonce: %v", ErrEncryptionFailed, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts an AES-GCM encrypted string.
func (s *Store) decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decoding base64: %v", ErrEncryptionFailed, err)
	}

	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("%w: creating cipher: %v", ErrEncryptionFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: creating GCM: %v", ErrEncryptionFailed, err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrEncryptionFailed)
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", fmt.Errorf("%w: decryption failed: %v", ErrEncryptionFailed, err)
	}

	return string(plaintext), nil
}

// GetActiveCredentials returns the credentials to run with. Environment
// variables take priority over the stored file, so the bot can run in
// containers without a credentials file.
func (s *Store) GetActiveCredentials() (*Credentials, error) {
	env := &Credentials{
		ClientID:     os.Getenv("LIBRARIAN_CLIENT_ID"),
		ClientSecret: os.Getenv("LIBRARIAN_CLIENT_SECRET"),
		Username:     os.Getenv("LIBRARIAN_USERNAME"),
		Password:     os.Getenv("LIBRARIAN_PASSWORD"),
	}
	if env.Complete() {
		return env, nil
	}

	creds, err := s.Load()
	if err != nil {
		return nil, err
	}

	if !creds.Complete() {
		return nil, ErrIncomplete
	}

	return creds, nil
}

// MaskCredential returns a masked version of the credential for display.
func MaskCredential(cred string) string {
	if len(cred) <= 8 {
		return strings.Repeat("*", len(cred))
	}
	return cred[:4] + strings.Repeat("*", len(cred)-8) + cred[len(cred)-4:]
}
