// Package secret seals order account passwords for later reveal and hashes
// passwords that only ever need verification.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrEmptyKey      = errors.New("secret: key material is empty")
	ErrMalformed     = errors.New("secret: sealed value is malformed")
	ErrPasswordEmpty = errors.New("secret: password is empty")
)

const hkdfInfo = "rank-boost/order-credentials/v1"

// Box encrypts and decrypts short strings with XChaCha20-Poly1305. The key is
// derived from arbitrary key material with HKDF-SHA256.
type Box struct {
	key []byte
}

func NewBox(material string) (*Box, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, ErrEmptyKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(material), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("secret: derive key: %w", err)
	}
	return &Box{key: key}, nil
}

// Seal returns base64(nonce || ciphertext). additional binds the ciphertext to
// a context such as the order id so sealed values cannot be swapped between rows.
func (b *Box) Seal(plaintext, additional string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", fmt.Errorf("secret: init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secret: read nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(additional))
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

func (b *Box) Open(sealed, additional string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrMalformed
	}

	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", fmt.Errorf("secret: init aead: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", ErrMalformed
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(additional))
	if err != nil {
		return "", ErrMalformed
	}
	return string(plaintext), nil
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordEmpty
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("secret: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a bcrypt hash.
func CheckPassword(hash, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
