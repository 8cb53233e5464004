// Package credential decrypts provider credentials supplied by callers.
//
// Callers never hold plaintext webhook URLs or bot tokens. They hold base64
// text produced by an external encryptor using AES-256-GCM: a 12-byte nonce
// followed by the sealed ciphertext and authentication tag.
package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"

	"streaky-relay/internal/domain/entity"
)

const (
	// KeySize is the number of key bytes used for AES-256.
	KeySize = 32

	// NonceSize is the GCM standard nonce length prefixed to every payload.
	NonceSize = 12
)

// ErrKeyTooShort is returned by New when the key material has fewer than KeySize bytes.
var ErrKeyTooShort = errors.New("encryption key must be at least 32 bytes")

// encodings are tried in order. Browser producers emit padded standard
// base64; the others exist for encoders that use the URL alphabet or strip padding.
var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.URLEncoding,
	base64.RawStdEncoding,
	base64.RawURLEncoding,
}

// AESGCM decrypts EncryptedField values with a process-wide key.
// It holds no mutable state and is safe for concurrent use.
type AESGCM struct {
	aead cipher.AEAD
}

// New builds an AESGCM from key material.
//
// Keys shorter than KeySize bytes are rejected with ErrKeyTooShort. Longer
// keys are truncated deterministically: only key[:32] is used, so two keys
// that differ only after byte 32 decrypt identically.
func New(key []byte) (*AESGCM, error) {
	if len(key) < KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrKeyTooShort, len(key))
	}

	block, err := aes.NewCipher(key[:KeySize])
	if err != nil {
		return nil, fmt.Errorf("create aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &AESGCM{aead: aead}, nil
}

// Decrypt decodes and authenticates encoded, returning the plaintext secret.
//
// Failures are *entity.DispatchError values of kind InvalidCiphertext,
// DecryptionFailed or InvalidPlaintext. They never include the input or any
// partial plaintext.
func (c *AESGCM) Decrypt(encoded string) (string, error) {
	data, ok := decode(encoded)
	if !ok {
		return "", &entity.DispatchError{Kind: entity.InvalidCiphertext, Detail: "not base64"}
	}
	if len(data) < NonceSize {
		return "", &entity.DispatchError{
			Kind:   entity.InvalidCiphertext,
			Detail: fmt.Sprintf("payload is %d bytes, shorter than the %d byte nonce", len(data), NonceSize),
		}
	}

	nonce, sealed := data[:NonceSize], data[NonceSize:]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", &entity.DispatchError{Kind: entity.DecryptionFailed}
	}
	if !utf8.Valid(plain) {
		return "", &entity.DispatchError{Kind: entity.InvalidPlaintext}
	}
	return string(plain), nil
}

func decode(s string) ([]byte, bool) {
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil {
			return b, true
		}
	}
	return nil, false
}
