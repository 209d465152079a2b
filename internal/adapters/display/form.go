package display

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// PromptEmail collects sender, subject and body with an interactive form.
// The given email pre-fills the fields.
func PromptEmail(ctx context.Context, defaults core.Email) (core.Email, error) {
	email := defaults

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sender's Email").
				Placeholder("john.doe@example.com").
				Value(&email.Sender).
				Validate(validateRequired("Sender")),
			huh.NewInput().
				Title("Subject").
				Placeholder("Important Inquiry").
				Value(&email.Subject).
				Validate(validateRequired("Subject")),
			huh.NewText().
				Title("Email Body").
				Lines(8).
				Value(&email.Body).
				Validate(validateRequired("Body")),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return core.Email{}, fmt.Errorf("reading email from form: %w", err)
	}
	return email, nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
