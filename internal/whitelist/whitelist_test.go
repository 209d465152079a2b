package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsWhitelisted(t *testing.T) {
	c := NewChecker([]string{" Example.COM ", "", "partner.org."}, zap.NewNop())

	assert.True(t, c.IsWhitelisted("bob@example.com"))
	assert.True(t, c.IsWhitelisted("Bob <bob@mail.example.com>"))
	assert.True(t, c.IsWhitelisted("alice@PARTNER.org"))
	assert.False(t, c.IsWhitelisted("eve@notexample.com"))
	assert.False(t, c.IsWhitelisted("no-at-sign"))
	assert.False(t, c.IsWhitelisted("trailing@"))
}

func TestEmptyAndNilCheckers(t *testing.T) {
	assert.False(t, NewChecker(nil, nil).IsWhitelisted("bob@example.com"))

	var c *Checker
	assert.False(t, c.IsWhitelisted("bob@example.com"))
}
