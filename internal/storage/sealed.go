package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// sealedPrefix marks values written by Sealed. The version lets the format
// change without misreading old values.
const sealedPrefix = "s1."

// sealSalt is fixed: the key is derived once from the operator's secret,
// and every value gets its own random nonce.
var sealSalt = []byte("storefront/storage/seal/v1")

// ErrSecretTooShort is returned when the sealing secret is unusable.
var ErrSecretTooShort = errors.New("storage secret must be at least 16 characters")

// Sealed wraps a Backend and encrypts every value at rest with
// XChaCha20-Poly1305. The client ID and item key are bound as associated
// data, so a value copied to another client or key fails to open.
//
// Values that fail to open read as absent. For the token that means the
// client is treated as logged out, which is the safe outcome.
type Sealed struct {
	inner Backend
	aead  cipher.AEAD
}

// NewSealed derives the sealing key from secret with scrypt.
func NewSealed(inner Backend, secret string) (*Sealed, error) {
	if len(secret) < 16 {
		return nil, ErrSecretTooShort
	}
	key, err := scrypt.Key([]byte(secret), sealSalt, 1<<15, 8, 1, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving storage key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, aead: aead}, nil
}

// Scope returns the sealed namespace for clientID.
func (s *Sealed) Scope(clientID string) Storage {
	return &sealedScope{inner: s.inner.Scope(clientID), aead: s.aead, client: clientID}
}

type sealedScope struct {
	inner  Storage
	aead   cipher.AEAD
	client string
}

func (s *sealedScope) GetItem(ctx context.Context, key string) (string, error) {
	raw, err := s.inner.GetItem(ctx, key)
	if err != nil || raw == "" {
		return "", err
	}
	val, err := s.open(key, raw)
	if err != nil {
		slog.Warn("discarding unreadable sealed item",
			slog.String("client_id", s.client),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return "", nil
	}
	return val, nil
}

func (s *sealedScope) SetItem(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.SetItem(ctx, key, sealed)
}

func (s *sealedScope) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, key)
}

func (s *sealedScope) seal(key, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), s.associatedData(key))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *sealedScope) open(key, raw string) (string, error) {
	if !strings.HasPrefix(raw, sealedPrefix) {
		return "", errors.New("value is not sealed")
	}
	b, err := base64.RawURLEncoding.DecodeString(raw[len(sealedPrefix):])
	if err != nil {
		return "", fmt.Errorf("decoding sealed value: %w", err)
	}
	if len(b) < s.aead.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, ct := b[:s.aead.NonceSize()], b[s.aead.NonceSize():]
	pt, err := s.aead.Open(nil, nonce, ct, s.associatedData(key))
	if err != nil {
		return "", errors.New("sealed value failed authentication")
	}
	return string(pt), nil
}

func (s *sealedScope) associatedData(key string) []byte {
	return []byte(s.client + "\x00" + key)
}

var _ Backend = (*Sealed)(nil)
