package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/mikey/llm-email-assistant/internal/adapters/display"
	"github.com/mikey/llm-email-assistant/internal/adapters/intake"
	"github.com/mikey/llm-email-assistant/internal/assistant"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/di"
)

// errProcessingFailed is returned after the failure was already shown to the user
var errProcessingFailed = cli.Exit("", 1)

var formDefaults = core.Email{
	Sender:  "john.doe@example.com",
	Subject: "Important Inquiry",
	Body:    "Dear Sir, I have a question regarding...",
}

func processAction(ctx context.Context, command *cli.Command) error {
	email, err := readEmail(ctx, command, os.Stdin)
	if err != nil {
		return err
	}

	flags := &di.CLIFlags{
		ConfigFile:  command.String("config"),
		Provider:    command.String("provider"),
		Model:       command.String("model"),
		Persona:     command.String("persona"),
		MaxBodySize: command.Int("max-body-size"),
		Verbose:     command.Bool("verbose"),
		JSONLog:     command.Bool("json-log"),
	}
	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	var procErr error
	err = container.Invoke(func(a *assistant.Assistant, svc *core.GenerationService) {
		defer svc.Close()
		_, procErr = a.Process(ctx, email)
	})
	if err != nil {
		return err
	}
	if procErr != nil {
		return errProcessingFailed
	}
	return nil
}

// readEmail assembles the email from a message file, the interactive form or the
// individual flags. Flags override fields parsed from a file.
func readEmail(ctx context.Context, command *cli.Command, stdin io.Reader) (core.Email, error) {
	fromFlags := core.Email{
		Sender:  command.String("sender"),
		Subject: command.String("subject"),
		Body:    command.String("body"),
	}

	var email core.Email
	switch {
	case command.String("file") != "":
		raw, err := readInput(command.String("file"), stdin)
		if err != nil {
			return core.Email{}, err
		}
		email, err = intake.ParseMessage(raw)
		if err != nil {
			return core.Email{}, err
		}
		email = overlay(email, fromFlags)

	case command.Bool("interactive"):
		var err error
		email, err = display.PromptEmail(ctx, overlay(formDefaults, fromFlags))
		if err != nil {
			return core.Email{}, err
		}

	default:
		email = fromFlags
	}

	if err := email.Validate(); err != nil {
		return core.Email{}, fmt.Errorf("%w (use --sender, --subject and --body, --file or --interactive)", err)
	}
	return email, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("message file %s does not exist", path)
		}
		return nil, fmt.Errorf("reading message file: %w", err)
	}
	return raw, nil
}

// overlay returns base with every non-empty field of top applied
func overlay(base, top core.Email) core.Email {
	if top.Sender != "" {
		base.Sender = top.Sender
	}
	if top.Subject != "" {
		base.Subject = top.Subject
	}
	if top.Body != "" {
		base.Body = top.Body
	}
	return base
}
