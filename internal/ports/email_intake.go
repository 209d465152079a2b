package ports

import (
	"context"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// EmailProcessor runs a single email through the assistant workflow
type EmailProcessor interface {
	Process(ctx context.Context, email core.Email) (*core.WorkflowState, error)
}

// EmailIntake defines the interface for sources that feed emails to a processor
type EmailIntake interface {
	// Start begins accepting email; it returns once the intake is running
	Start(ctx context.Context) error

	// Stop stops the intake and releases its resources
	Stop() error
}
