// Package encryption implements the at-rest protection used by the encrypted
// preference store: AES-256-GCM for values and HMAC-SHA256 for deterministic
// key identifiers, both keyed from one master key via HKDF.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const gcmPrefix = "gcm1"

// KeySize is the length in bytes of master and derived keys.
const KeySize = 32

var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrUnknownFormat      = errors.New("unknown ciphertext format")
)

var randReader io.Reader = rand.Reader

// Keys holds the sub-keys derived from a master key.
type Keys struct {
	// Value encrypts stored names and values.
	Value []byte
	// ID keys the MAC that turns a preference name into its row identifier.
	ID []byte
}

// DeriveKeys expands master into independent value and id keys with
// HKDF-SHA256. The master key must be KeySize bytes.
func DeriveKeys(master []byte) (*Keys, error) {
	if len(master) != KeySize {
		return nil, fmt.Errorf("invalid master key length: expected %d, got %d", KeySize, len(master))
	}
	k := &Keys{
		Value: make([]byte, KeySize),
		ID:    make([]byte, KeySize),
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte("convo-prefs-value")), k.Value); err != nil {
		return nil, fmt.Errorf("derive value key: %w", err)
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte("convo-prefs-id")), k.ID); err != nil {
		return nil, fmt.Errorf("derive id key: %w", err)
	}
	return k, nil
}

// KeyID returns the hex HMAC-SHA256 of name under key. Equal names always map
// to equal identifiers, which lets the store look rows up without decrypting.
func KeyID(name string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(name))
	return hex.EncodeToString(mac.Sum(nil))
}

// EncryptValue seals value with AES-GCM under a fresh random nonce. The output
// is the format prefix, the nonce and the ciphertext, concatenated.
func EncryptValue(value []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nil, nonce, value, nil)
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(ciphertext))
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptValue opens a value produced by EncryptValue. Tampered or truncated
// input and a wrong key all return an error.
func DecryptValue(ciphertext []byte, key []byte) ([]byte, error) {
	if len(ciphertext) < len(gcmPrefix) || string(ciphertext[:len(gcmPrefix)]) != gcmPrefix {
		return nil, ErrUnknownFormat
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < len(gcmPrefix)+nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce := ciphertext[len(gcmPrefix) : len(gcmPrefix)+nonceSize]
	data := ciphertext[len(gcmPrefix)+nonceSize:]
	return gcm.Open(nil, nonce, data, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
