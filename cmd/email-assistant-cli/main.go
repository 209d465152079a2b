package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "email-assistant-cli",
		Usage:                 "Classify an email and draft a reply",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewStoreKeyCommand(),
		},
		Flags:  rootFlags(),
		Action: processAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "sender",
			Usage: "Sender's email address",
		},
		&cli.StringFlag{
			Name:  "subject",
			Usage: "Email subject",
		},
		&cli.StringFlag{
			Name:  "body",
			Usage: "Email body",
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read an RFC 5322 message from a file (- for stdin)",
		},
		&cli.BoolFlag{
			Name:    "interactive",
			Aliases: []string{"i"},
			Usage:   "Enter the email in a form",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config file",
		},
		&cli.StringFlag{
			Name:    "provider",
			Usage:   "LLM provider (gemini, openai, bedrock)",
			Sources: cli.EnvVars("EMAIL_ASSISTANT_LLM_PROVIDER"),
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "Model name for the selected provider",
		},
		&cli.StringFlag{
			Name:  "persona",
			Usage: "Name the assistant signs as",
		},
		&cli.IntFlag{
			Name:  "max-body-size",
			Usage: "Maximum email body size sent to the model",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
		},
		&cli.BoolFlag{
			Name:  "json-log",
			Usage: "Output logs in JSON format",
		},
	}
}
