package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/longregen/slovo-agent/internal/domain"
)

func testService(t *testing.T) *Service {
	t.Helper()
	key := bytes.Repeat([]byte{0x42}, keySize)
	s, err := NewServiceFromRawKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	s := testService(t)
	plaintext := []byte("the quick brown fox")

	ciphertext, err := s.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext must not equal plaintext")
	}

	got, err := s.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecrypt_WrongKeyFailsDeterministically(t *testing.T) {
	s := testService(t)
	ciphertext, err := s.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	other, err := NewServiceFromRawKey(bytes.Repeat([]byte{0x24}, keySize))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := other.Decrypt(ciphertext); !errors.Is(err, domain.ErrCorruptOrWrongKey) {
		t.Fatalf("expected ErrCorruptOrWrongKey, got %v", err)
	}
}

func TestHashForIndex_Stable(t *testing.T) {
	s := testService(t)
	a := s.HashForIndex("alex")
	b := s.HashForIndex("alex")
	if a != b {
		t.Fatal("expected stable hash for identical input")
	}
	if a == s.HashForIndex("bob") {
		t.Fatal("expected different hashes for different input")
	}
}
