package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"

	"github.com/mikey/llm-email-assistant/internal/credentials"
)

// NewStoreKeyCommand saves a provider API key in the system keyring
func NewStoreKeyCommand() *cli.Command {
	return &cli.Command{
		Name:      "store-key",
		Usage:     "Store a provider API key in the system keyring",
		ArgsUsage: "<gemini|openai|imap-password>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "service",
				Usage: "Keyring service name",
				Value: "email-assistant",
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			name := command.Args().First()
			if name == "" {
				return errors.New("a provider name is required")
			}
			key := name
			if name != "imap-password" {
				key = credentials.KeyName(name)
			}

			fmt.Fprintf(os.Stderr, "Enter value for %s: ", key)
			value, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && value == "" {
				return fmt.Errorf("reading value: %w", err)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("an empty value was entered")
			}

			if err := credentials.Store(command.String("service"), key, value); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Stored %s\n", key)
			return nil
		},
	}
}
