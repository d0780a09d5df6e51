// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

const testJWTSecret = "this_is_a_very_long_secret_key_with_more_than_32_characters"

func newTestEncryptor(t testing.TB) *CredentialEncryptor {
	t.Helper()
	enc, err := NewCredentialEncryptor(testJWTSecret)
	if err != nil {
		t.Fatalf("NewCredentialEncryptor() error = %v", err)
	}
	return enc
}

func TestNewCredentialEncryptor(t *testing.T) {
	t.Parallel()

	if _, err := NewCredentialEncryptor(""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewCredentialEncryptor(\"\") error = %v, want ErrEmptySecret", err)
	}

	// Any non-empty secret works; HKDF stretches short inputs.
	if _, err := NewCredentialEncryptor("x"); err != nil {
		t.Errorf("NewCredentialEncryptor(short) error = %v", err)
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	t.Parallel()

	enc := newTestEncryptor(t)

	// The credentials this encryptor actually protects: Google OAuth
	// refresh tokens, RTMP stream keys, and webhook signing secrets.
	credentials := []string{
		"1//0gRefreshTokenFromGoogle-abcdef123456",
		"rtmp-stream-key-abcd-1234-efgh-5678",
		"whsec_webhook_signing_secret_12345",
		"a",
		strings.Repeat("long-", 500),
		"日本語トークン",
		"🔐🔑🗝️",
		"key with spaces and\ttabs",
	}

	for _, cred := range credentials {
		ciphertext, err := enc.Encrypt(cred)
		if err != nil {
			t.Errorf("Encrypt(%.20q) error = %v", cred, err)
			continue
		}
		if ciphertext == cred {
			t.Errorf("Encrypt(%.20q) returned plaintext unchanged", cred)
		}
		got, err := enc.Decrypt(ciphertext)
		if err != nil {
			t.Errorf("Decrypt after Encrypt(%.20q) error = %v", cred, err)
			continue
		}
		if got != cred {
			t.Errorf("round trip = %.20q, want %.20q", got, cred)
		}
	}
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	t.Parallel()

	enc := newTestEncryptor(t)
	if _, err := enc.Encrypt(""); !errors.Is(err, ErrEmptyPlaintext) {
		t.Errorf("Encrypt(\"\") error = %v, want ErrEmptyPlaintext", err)
	}
}

func TestDecryptRejectsBadInput(t *testing.T) {
	t.Parallel()

	enc := newTestEncryptor(t)

	valid, err := enc.Encrypt("refresh-token-12345678")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Flip one ciphertext byte past the nonce so GCM authentication fails.
	raw, err := base64.StdEncoding.DecodeString(valid)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	tampered := bytes.Clone(raw)
	tampered[gcmNonceSize] ^= 0x01

	tests := []struct {
		name       string
		ciphertext string
		want       error
	}{
		{"empty", "", ErrEmptyCiphertext},
		{"not base64", "not-valid-base64!!!", ErrInvalidCiphertext},
		{"shorter than nonce plus tag", base64.StdEncoding.EncodeToString([]byte("tiny")), ErrCiphertextTooShort},
		{"tampered payload", base64.StdEncoding.EncodeToString(tampered), ErrDecryptionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := enc.Decrypt(tt.ciphertext); !errors.Is(err, tt.want) {
				t.Errorf("Decrypt(%s) error = %v, want %v", tt.name, err, tt.want)
			}
		})
	}
}

func TestDecryptWithRotatedSecret(t *testing.T) {
	t.Parallel()

	// Rotating JWT_SECRET must invalidate stored channel credentials.
	oldEnc := newTestEncryptor(t)
	ciphertext, err := oldEnc.Encrypt("1//0gRefreshTokenFromGoogle-abcdef123456")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	newEnc, err := NewCredentialEncryptor(testJWTSecret + "-rotated")
	if err != nil {
		t.Fatalf("NewCredentialEncryptor() error = %v", err)
	}
	if _, err := newEnc.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt with rotated secret error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptNonceUniqueness(t *testing.T) {
	t.Parallel()

	enc := newTestEncryptor(t)

	// Same plaintext twice must never produce the same ciphertext.
	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		ct, err := enc.Encrypt("rtmp-stream-key-abcd-1234")
		if err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if _, dup := seen[ct]; dup {
			t.Fatal("duplicate ciphertext for repeated plaintext: nonce reuse")
		}
		seen[ct] = struct{}{}
	}
}

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	k1, err := deriveKey(testJWTSecret)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	if len(k1) != aesKeySize {
		t.Errorf("key length = %d, want %d", len(k1), aesKeySize)
	}

	// Deterministic per secret, distinct across secrets.
	k2, err := deriveKey(testJWTSecret)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("deriveKey is not deterministic for the same secret")
	}

	k3, err := deriveKey(testJWTSecret + "-other")
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	if bytes.Equal(k1, k3) {
		t.Error("different secrets derived the same key")
	}
}

func TestMaskCredential(t *testing.T) {
	t.Parallel()

	tests := []struct {
		credential string
		want       string
	}{
		{"", ""},
		{"ab", "****"},
		{"abcd", "****"},
		{"refresh-token-12345678", "****...5678"},
		{"rtmp-stream-key-wxyz", "****...wxyz"},
	}

	for _, tt := range tests {
		if got := MaskCredential(tt.credential); got != tt.want {
			t.Errorf("MaskCredential(%q) = %q, want %q", tt.credential, got, tt.want)
		}
	}
}

func TestValidateEncryptionSetup(t *testing.T) {
	t.Parallel()

	if err := newTestEncryptor(t).ValidateEncryptionSetup(); err != nil {
		t.Errorf("ValidateEncryptionSetup() error = %v", err)
	}
}

func BenchmarkCredentialRoundTrip(b *testing.B) {
	enc := newTestEncryptor(b)
	plaintext := "1//0gRefreshTokenFromGoogle-abcdef123456"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ct, err := enc.Encrypt(plaintext)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := enc.Decrypt(ct); err != nil {
			b.Fatal(err)
		}
	}
}
