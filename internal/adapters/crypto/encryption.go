package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/crypto/pbkdf2"

	"github.com/longregen/slovo-agent/internal/domain"
)

// PBKDF2Iterations is the floor spec §4.1 sets for passphrase-derived keys.
const PBKDF2Iterations = 480_000

const keySize = 32 // AES-256

// Service is an AES-256-GCM authenticated encryption service with a single
// active key held for the process lifetime (spec §9: "model as explicit
// dependencies injected into the components that use them").
type Service struct {
	key [keySize]byte
}

// NewServiceFromRawKey builds a Service from a key that is already 32
// bytes (or a 64-char hex string decoding to 32 bytes).
func NewServiceFromRawKey(raw []byte) (*Service, error) {
	if len(raw) == 2*keySize {
		if decoded, err := hex.DecodeString(string(raw)); err == nil {
			raw = decoded
		}
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(raw))
	}
	s := &Service{}
	copy(s.key[:], raw)
	return s, nil
}

// NewServiceFromPassphrase derives a key from a passphrase via
// PBKDF2-SHA256 over a random salt persisted at a platform-appropriate
// user data path, as spec §4.1/§6 require.
func NewServiceFromPassphrase(passphrase string) (*Service, error) {
	salt, err := loadOrCreateSalt()
	if err != nil {
		return nil, fmt.Errorf("loading encryption salt: %w", err)
	}
	key := pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, keySize, sha256.New)
	s := &Service{}
	copy(s.key[:], key)
	return s, nil
}

func saltPath() (string, error) {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			return "", errors.New("APPDATA not set")
		}
		return filepath.Join(base, "slovo", "encryption.salt"), nil
	}
	base = os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "slovo", "encryption.salt"), nil
}

func loadOrCreateSalt() ([]byte, error) {
	path, err := saltPath()
	if err != nil {
		return nil, err
	}
	if b, err := os.ReadFile(path); err == nil && len(b) == 16 {
		return b, nil
	}
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, err
	}
	return salt, nil
}

// Encrypt returns nonce||ciphertext||tag.
func (s *Service) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt returns domain.ErrCorruptOrWrongKey if authentication fails,
// never silently dropping the error (spec §4.1/§7).
func (s *Service) Decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, domain.ErrCorruptOrWrongKey
	}
	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrCorruptOrWrongKey
	}
	return plaintext, nil
}

// HashForIndex returns a stable hex digest for equality search over
// encrypted columns, keyed on the same active key so it rotates with it.
func (s *Service) HashForIndex(value string) string {
	mac := hmac.New(sha256.New, s.key[:])
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
