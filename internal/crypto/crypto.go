// Package crypto seals reader contact details before they are written to the
// content store. Sealed values are AES-256-GCM ciphertext carrying a version
// prefix so plaintext written before a key was configured still reads back.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks a value produced by Seal.
const sealedPrefix = "enc:v1:"

var (
	ErrEmptySecret = errors.New("field encryption secret must not be empty")
	ErrMalformed   = errors.New("sealed value is malformed")
	ErrOpenFailed  = errors.New("sealed value could not be opened with this secret")
)

// Sealer encrypts individual string fields.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 256-bit key from secret. Any non-empty secret is
// accepted so operators can use a passphrase from the environment.
func NewSealer(secret string) (*Sealer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// IsSealed reports whether value carries the sealed prefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

// Seal encrypts value. Empty values stay empty.
func (s *Sealer) Seal(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as-is.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", ErrMalformed
	}
	n := s.aead.NonceSize()
	if len(raw) < n {
		return "", ErrMalformed
	}
	plain, err := s.aead.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return "", ErrOpenFailed
	}
	return string(plain), nil
}
