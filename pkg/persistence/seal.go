package persistence

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealMagic prefixes sealed files.
var sealMagic = []byte("PRS1")

// keyInfo binds derived keys to this use.
var keyInfo = []byte("provisioning-state v1")

// Sealing errors.
var (
	ErrSealed      = errors.New("state file is sealed and no key was configured")
	ErrOpenFailed  = errors.New("failed to open sealed state")
	ErrEmptySecret = errors.New("sealing secret is empty")
)

// Sealer encrypts and decrypts state files.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a sealing key from secret. The salt scopes the key,
// typically to the registration id.
func NewSealer(secret, salt []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, keyInfo), key); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. The output is magic || nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+len(nonce)+len(plaintext)+s.aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, sealMagic), nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	if !isSealed(data) {
		return nil, fmt.Errorf("%w: missing header", ErrOpenFailed)
	}
	body := data[len(sealMagic):]
	if len(body) < s.aead.NonceSize() {
		return nil, fmt.Errorf("%w: truncated", ErrOpenFailed)
	}

	nonce, ciphertext := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, sealMagic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	return plain, nil
}

func isSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealMagic)
}
