package encryption

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	ciphertext, err := EncryptValue([]byte("CONVO_SESSION=abc"), key)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("abc")) {
		t.Fatal("ciphertext leaks plaintext")
	}
	plaintext, err := DecryptValue(ciphertext, key)
	if err != nil {
		t.Fatalf("DecryptValue: %v", err)
	}
	if string(plaintext) != "CONVO_SESSION=abc" {
		t.Fatalf("unexpected plaintext %q", plaintext)
	}
}

func TestEncryptValueFreshNonce(t *testing.T) {
	key := bytes.Repeat([]byte{0x12}, 32)
	a, err := EncryptValue([]byte("same"), key)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	b, err := EncryptValue([]byte("same"), key)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of the same value must differ")
	}
}

func TestEncryptValueInvalidKey(t *testing.T) {
	if _, err := EncryptValue([]byte("hi"), []byte{0x01}); err == nil {
		t.Fatalf("expected error for invalid key length")
	}
}

func TestDecryptValueErrors(t *testing.T) {
	key := bytes.Repeat([]byte{0x22}, 32)
	if _, err := DecryptValue([]byte{0x00, 0x01}, key); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := DecryptValue([]byte(gcmPrefix+"short"), key); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}

	ct, err := EncryptValue([]byte("v"), key)
	if err != nil {
		t.Fatalf("EncryptValue: %v", err)
	}
	ct[len(ct)-1] ^= 0xff
	if _, err := DecryptValue(ct, key); err == nil {
		t.Fatal("expected authentication failure for tampered ciphertext")
	}

	ct, _ = EncryptValue([]byte("v"), key)
	if _, err := DecryptValue(ct, bytes.Repeat([]byte{0x23}, 32)); err == nil {
		t.Fatal("expected failure for wrong key")
	}
}

func TestDeriveKeys(t *testing.T) {
	master := bytes.Repeat([]byte{0x42}, KeySize)
	k1, err := DeriveKeys(master)
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	k2, err := DeriveKeys(master)
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	if !bytes.Equal(k1.Value, k2.Value) || !bytes.Equal(k1.ID, k2.ID) {
		t.Fatal("derivation must be deterministic")
	}
	if bytes.Equal(k1.Value, k1.ID) {
		t.Fatal("value and id keys must differ")
	}
	if bytes.Equal(k1.Value, master) {
		t.Fatal("derived key must differ from master")
	}

	if _, err := DeriveKeys([]byte("short")); err == nil {
		t.Fatal("expected error for short master key")
	}
}

func TestKeyID(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, 32)
	a := KeyID("cookies_api.convo.app", key)
	if a != KeyID("cookies_api.convo.app", key) {
		t.Fatal("KeyID must be deterministic")
	}
	if a == KeyID("cookies_cdn.convo.app", key) {
		t.Fatal("different names must produce different ids")
	}
	if a == KeyID("cookies_api.convo.app", bytes.Repeat([]byte{0x08}, 32)) {
		t.Fatal("different keys must produce different ids")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
