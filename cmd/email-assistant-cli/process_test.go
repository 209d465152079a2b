package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v3"

	"github.com/mikey/llm-email-assistant/internal/core"
)

func runReadEmail(t *testing.T, stdin string, args ...string) (core.Email, error) {
	t.Helper()
	var (
		got    core.Email
		gotErr error
	)
	cmd := &cli.Command{
		Name:  "test",
		Flags: rootFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			got, gotErr = readEmail(ctx, c, strings.NewReader(stdin))
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return got, gotErr
}

func TestReadEmail_FromFlags(t *testing.T) {
	email, err := runReadEmail(t, "",
		"--sender", "bob@example.com", "--subject", "Hi", "--body", "Hello there")
	require.NoError(t, err)
	assert.Equal(t, core.Email{Sender: "bob@example.com", Subject: "Hi", Body: "Hello there"}, email)
}

func TestReadEmail_MissingFieldsIsInvalid(t *testing.T) {
	_, err := runReadEmail(t, "", "--sender", "bob@example.com")
	assert.ErrorIs(t, err, core.ErrInvalidEmail)
}

func TestReadEmail_FileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.eml")
	require.NoError(t, os.WriteFile(path, []byte(
		"From: carol@example.com\r\nSubject: Invoice\r\n\r\nPlease find attached.\r\n"), 0o600))

	email, err := runReadEmail(t, "", "--file", path, "--subject", "Overridden")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", email.Sender)
	assert.Equal(t, "Overridden", email.Subject)
	assert.Equal(t, "Please find attached.", email.Body)
}

func TestReadEmail_Stdin(t *testing.T) {
	email, err := runReadEmail(t, "From: dan@example.com\r\nSubject: Yo\r\n\r\nHey\r\n", "--file", "-")
	require.NoError(t, err)
	assert.Equal(t, "dan@example.com", email.Sender)
}

func TestReadEmail_MissingFile(t *testing.T) {
	_, err := runReadEmail(t, "", "--file", filepath.Join(t.TempDir(), "nope.eml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestOverlay(t *testing.T) {
	got := overlay(formDefaults, core.Email{Subject: "Mine"})
	assert.Equal(t, formDefaults.Sender, got.Sender)
	assert.Equal(t, "Mine", got.Subject)
	assert.Equal(t, formDefaults.Body, got.Body)
}
