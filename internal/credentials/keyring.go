// Package credentials resolves provider API keys from configuration or the system keyring.
package credentials

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// LookupFunc fetches a secret by key
type LookupFunc func(key string) (string, error)

// KeyName returns the keyring entry name used for a provider's API key
func KeyName(provider string) string {
	return provider + "-api-key"
}

func openKeyring(service string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + service + "/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringLookup returns a LookupFunc backed by the system keyring
func KeyringLookup(service string) LookupFunc {
	return func(key string) (string, error) {
		ring, err := openKeyring(service)
		if err != nil {
			return "", err
		}
		item, err := ring.Get(key)
		if err != nil {
			return "", fmt.Errorf("getting credential %q: %w", key, err)
		}
		return string(item.Data), nil
	}
}

// Store saves a secret in the system keyring
func Store(service, key, value string) error {
	ring, err := openKeyring(service)
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Resolver picks a provider's API key from config, falling back to a lookup
type Resolver struct {
	lookup LookupFunc
}

// NewResolver creates a resolver. A nil lookup disables the fallback.
func NewResolver(lookup LookupFunc) *Resolver {
	return &Resolver{lookup: lookup}
}

// APIKey returns configured when set, otherwise the stored key for provider
func (r *Resolver) APIKey(provider, configured string) (string, error) {
	return r.Secret(KeyName(provider), configured)
}

// Secret returns configured when set, otherwise the keyring entry named key
func (r *Resolver) Secret(key, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if r == nil || r.lookup == nil {
		return "", fmt.Errorf("%w: %s is not set", core.ErrConfiguration, key)
	}

	value, err := r.lookup(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("%w: %s is not set", core.ErrConfiguration, key)
		}
		return "", fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	if value == "" {
		return "", fmt.Errorf("%w: %s is empty", core.ErrConfiguration, key)
	}
	return value, nil
}
