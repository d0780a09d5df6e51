// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF parameters binding derived keys to this use. Changing either value
// orphans every ciphertext already in the database.
const (
	credentialEncryptionSalt = "tubefleet-channel-credentials"
	credentialEncryptionInfo = "credential-encryption-v1"
)

const (
	aesKeySize   = 32 // AES-256
	gcmNonceSize = 12
)

var (
	ErrEmptySecret     = errors.New("JWT secret cannot be empty")
	ErrEmptyPlaintext  = errors.New("plaintext cannot be empty")
	ErrEmptyCiphertext = errors.New("ciphertext cannot be empty")

	// ErrDecryptionFailed covers both corrupted ciphertexts and ciphertexts
	// written under a previous JWT_SECRET.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or authentication tag")

	ErrInvalidCiphertext  = errors.New("invalid ciphertext format")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// CredentialEncryptor encrypts channel OAuth refresh tokens, RTMP stream
// keys, and webhook secrets before they reach the database. AES-256-GCM with
// a per-call random nonce; the key is derived from JWT_SECRET, so rotating
// that secret invalidates stored credentials and linked channels must be
// re-authorized.
type CredentialEncryptor struct {
	aead cipher.AEAD
}

// NewCredentialEncryptor derives the AES key from the JWT secret via
// HKDF-SHA256 and prepares the GCM cipher.
func NewCredentialEncryptor(jwtSecret string) (*CredentialEncryptor, error) {
	if jwtSecret == "" {
		return nil, ErrEmptySecret
	}

	key, err := deriveKey(jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &CredentialEncryptor{aead: aead}, nil
}

// deriveKey stretches the JWT secret into a 256-bit AES key.
func deriveKey(jwtSecret string) ([]byte, error) {
	reader := hkdf.New(sha256.New,
		[]byte(jwtSecret),
		[]byte(credentialEncryptionSalt),
		[]byte(credentialEncryptionInfo))

	key := make([]byte, aesKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to read HKDF output: %w", err)
	}
	return key, nil
}

// Encrypt seals the plaintext and returns base64(nonce || ciphertext || tag).
func (e *CredentialEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered data and key mismatches both surface as
// ErrDecryptionFailed; GCM cannot distinguish them.
func (e *CredentialEncryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", ErrEmptyCiphertext
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode failed: %s", ErrInvalidCiphertext, err.Error())
	}
	if len(data) < gcmNonceSize+1+e.aead.Overhead() {
		return "", ErrCiphertextTooShort
	}

	plaintext, err := e.aead.Open(nil, data[:gcmNonceSize], data[gcmNonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// MaskCredential renders a credential for logs and API responses, keeping
// only the last 4 characters: "abcd-1234-wxyz" becomes "****...wxyz".
func MaskCredential(credential string) string {
	switch {
	case credential == "":
		return ""
	case len(credential) <= 4:
		return "****"
	default:
		return "****..." + credential[len(credential)-4:]
	}
}

// ValidateEncryptionSetup round-trips a probe value at startup so a broken
// cipher surfaces before any channel credential is accepted.
func (e *CredentialEncryptor) ValidateEncryptionSetup() error {
	const probe = "encryption-validation-test"

	encrypted, err := e.Encrypt(probe)
	if err != nil {
		return fmt.Errorf("encryption test failed: %w", err)
	}
	decrypted, err := e.Decrypt(encrypted)
	if err != nil {
		return fmt.Errorf("decryption test failed: %w", err)
	}
	if decrypted != probe {
		return errors.New("round-trip validation failed: data mismatch")
	}
	return nil
}
