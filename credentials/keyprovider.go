package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/argon2"
)

// Key sourcing for the encrypted store. The store needs exactly one thing
// from a provider: the 32-byte AES-256 key.
const (
	// keyringService and keyringAccount name the keyring entry the key
	// lives under.
	keyringService = "japari-librarian"
	keyringAccount = "encryption-key"

	// keyLength is the AES-256 key size.
	keyLength = 32

	// EncryptionKeyEnvVar carries a hex-encoded key for headless
	// environments where no keyring is available.
	EncryptionKeyEnvVar = "LIBRARIAN_ENCRYPTION_KEY"
)

// Argon2id parameters for passphrase-derived keys. The salt must be kept
// next to the credentials file and reused on every load.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	saltLength   = 16
)

// ErrKeyringUnavailable indicates the system keyring cannot be reached.
var ErrKeyringUnavailable = errors.New("system keyring unavailable")

// KeyProvider yields the encryption key the store seals credentials with.
type KeyProvider interface {
	Key() ([]byte, error)
}

// KeyProviderFunc adapts a function to the KeyProvider interface.
type KeyProviderFunc func() ([]byte, error)

// Key calls f.
func (f KeyProviderFunc) Key() ([]byte, error) {
	return f()
}

// EnvKey reads a hex-encoded key from the named environment variable.
func EnvKey(envVar string) KeyProvider {
	return KeyProviderFunc(func() ([]byte, error) {
		keyHex := os.Getenv(envVar)
		if keyHex == "" {
			return nil, fmt.Errorf("environment variable %s not set", envVar)
		}

		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid key in %s: %w", envVar, err)
		}
		if len(key) != keyLength {
			return nil, fmt.Errorf("key in %s must be %d bytes, got %d", envVar, keyLength, len(key))
		}

		return key, nil
	})
}

// KeyringKey loads the key from the system keyring, minting and storing a
// new random key on first use. A keyring entry that fails to decode to a
// valid key is replaced.
func KeyringKey() KeyProvider {
	return KeyProviderFunc(func() ([]byte, error) {
		keyHex, err := keyring.Get(keyringService, keyringAccount)
		if err == nil {
			if key, decErr := hex.DecodeString(keyHex); decErr == nil && len(key) == keyLength {
				return key, nil
			}
		} else if !errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: set %s instead: %v", ErrKeyringUnavailable, EncryptionKeyEnvVar, err)
		}

		key := make([]byte, keyLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating key: %w", err)
		}
		if err := keyring.Set(keyringService, keyringAccount, hex.EncodeToString(key)); err != nil {
			return nil, fmt.Errorf("%w: set %s instead: %v", ErrKeyringUnavailable, EncryptionKeyEnvVar, err)
		}

		return key, nil
	})
}

// PassphraseKey derives the key from a passphrase with Argon2id. The same
// passphrase and salt always derive the same key.
func PassphraseKey(passphrase string, salt []byte) KeyProvider {
	return KeyProviderFunc(func() ([]byte, error) {
		if passphrase == "" {
			return nil, errors.New("passphrase is required")
		}
		if len(salt) == 0 {
			return nil, errors.New("salt is required")
		}

		return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLength), nil
	})
}

// GenerateSalt mints a random salt for passphrase key derivation.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// DefaultKeyProvider picks the key source for this environment: the
// LIBRARIAN_ENCRYPTION_KEY variable when set, otherwise the system keyring.
// Keyring failures surface on first use, carrying the env-var hint.
func DefaultKeyProvider() KeyProvider {
	if os.Getenv(EncryptionKeyEnvVar) != "" {
		return EnvKey(EncryptionKeyEnvVar)
	}
	return KeyringKey()
}
