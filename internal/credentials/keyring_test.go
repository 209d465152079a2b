package credentials

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-email-assistant/internal/core"
)

func TestAPIKey_ConfiguredWins(t *testing.T) {
	r := NewResolver(func(string) (string, error) {
		t.Fatal("lookup should not be called")
		return "", nil
	})
	key, err := r.APIKey("gemini", "from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)
}

func TestAPIKey_FallsBackToLookup(t *testing.T) {
	var asked string
	r := NewResolver(func(k string) (string, error) {
		asked = k
		return "from-keyring", nil
	})
	key, err := r.APIKey("openai", "")
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", key)
	assert.Equal(t, "openai-api-key", asked)
}

func TestAPIKey_MissingIsConfigurationError(t *testing.T) {
	_, err := NewResolver(nil).APIKey("gemini", "")
	assert.ErrorIs(t, err, core.ErrConfiguration)

	notFound := NewResolver(func(string) (string, error) { return "", keyring.ErrKeyNotFound })
	_, err = notFound.APIKey("gemini", "")
	assert.ErrorIs(t, err, core.ErrConfiguration)

	empty := NewResolver(func(string) (string, error) { return "", nil })
	_, err = empty.APIKey("gemini", "")
	assert.ErrorIs(t, err, core.ErrConfiguration)

	broken := NewResolver(func(string) (string, error) { return "", errors.New("dbus unavailable") })
	_, err = broken.APIKey("gemini", "")
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.ErrorContains(t, err, "dbus unavailable")
}

func TestSecret_UsesKeyAsIs(t *testing.T) {
	var asked string
	r := NewResolver(func(k string) (string, error) {
		asked = k
		return "hunter2", nil
	})
	v, err := r.Secret("imap-password", "")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)
	assert.Equal(t, "imap-password", asked)
}
