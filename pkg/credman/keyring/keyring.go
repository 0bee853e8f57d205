// Package keyring stores the master key that protects persisted cookies.
// The operating system's keyring is preferred; a 0600 key file in the
// config directory serves hosts without a keyring service.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// KeySize is the master key length in bytes.
	KeySize = 32

	defaultService = "convo"
	defaultField   = "cookie-key"
)

// ErrNoProvider is returned by ResolveKey when no provider could produce a key.
var ErrNoProvider = errors.New("no key provider available")

// Provider is a place a master key can be loaded from or created in.
type Provider interface {
	GetKey() ([]byte, error)
	SetKey() ([]byte, error)
}

// Keyring keeps the master key in the OS keyring (Secret Service, macOS
// Keychain, Windows Credential Manager) as a hex string.
type Keyring struct {
	Service string
	Field   string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		Service: defaultService,
		Field:   defaultField,
	}
}

// SetKey generates a fresh random key and stores it, replacing any previous one.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := keyringSet(k.Service, k.Field, hex.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("keyring set: %w", err)
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	s, err := keyringGet(k.Service, k.Field)
	if err != nil {
		return nil, err
	}
	return ParseKey(s)
}

func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.Service, k.Field)
}

// ParseKey decodes a hex master key and checks its length.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", KeySize, len(key))
	}
	return key, nil
}

// ResolveKey returns the first key any provider already holds. When none has
// one, it asks each provider in order to create a key and returns the first
// that succeeds. An existing key is never replaced while another provider can
// still read its own.
func ResolveKey(providers ...Provider) ([]byte, error) {
	var errs []error
	for _, p := range providers {
		key, err := p.GetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	for _, p := range providers {
		key, err := p.SetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNoProvider
	}
	return nil, fmt.Errorf("%w: %w", ErrNoProvider, errors.Join(errs...))
}

var (
	_ Provider = (*Keyring)(nil)
	_ Provider = (*FileKeyStore)(nil)
)
