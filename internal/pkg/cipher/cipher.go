/*
Package cipher implements the transit transform applied to message content.

Message bodies are encrypted with AES-GCM before they leave the sender and
decrypted just before display. The key is a symmetric secret shared by every
client and supplied through configuration at deploy time. This is a
data-obfuscation layer over the wire and at rest, not a confidentiality
guarantee against a party holding the key.
*/
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// ErrUnreadable is returned when a ciphertext cannot be decrypted, whether
// from a key mismatch, corrupt input, or truncation. Callers render the
// affected message as an unreadable placeholder instead of failing the batch.
var ErrUnreadable = errors.New("cipher: message unreadable")

// keySalt pins the key derivation so every client deriving from the same
// passphrase obtains the same transit key.
var keySalt = []byte("dmchat/transit/v1")

// DeriveKey stretches a configured passphrase into a 32-byte AES-256 key
// using Argon2id.
func DeriveKey(passphrase string) []byte {
	return argon2.IDKey([]byte(passphrase), keySalt, 1, 64*1024, 4, 32)
}

// Cipher encrypts and decrypts message content with a fixed symmetric key.
type Cipher struct {
	aead stdcipher.AEAD
}

// New constructs a Cipher from an AES key (16, 24, or 32 bytes).
func New(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: invalid key: %w", err)
	}

	aead, err := stdcipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher: gcm init: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext), safe to embed in JSON message bodies.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cipher: nonce generation: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any failure in decoding, nonce extraction, or
// authentication is reported as ErrUnreadable.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrUnreadable)
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	return string(plaintext), nil
}
