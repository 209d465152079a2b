// Package assistant hosts the email workflow: it runs one email at a time through the
// engine and reports the outcome to the display sink.
package assistant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/metrics"
	"github.com/mikey/llm-email-assistant/internal/workflow"
)

// Assistant processes emails through the workflow engine
type Assistant struct {
	engine   *workflow.Engine
	notifier core.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// runs are serialized; intakes may call Process from several goroutines
	mu sync.Mutex
}

// New creates an assistant. m may be nil when metrics are disabled.
func New(engine *workflow.Engine, notifier core.Notifier, m *metrics.Metrics, logger *zap.Logger) *Assistant {
	return &Assistant{
		engine:   engine,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Process runs a single email end to end. On failure nothing but the error notice is
// shown and the returned state is nil.
func (a *Assistant) Process(ctx context.Context, email core.Email) (*core.WorkflowState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	final, err := a.engine.Run(ctx, core.NewWorkflowState(email))
	if err != nil {
		a.metrics.ObserveFailure()
		a.logger.Error("Failed to process email",
			zap.Error(err),
			zap.String("sender", email.Sender),
			zap.String("subject", email.Subject))
		a.notifier.Error(fmt.Sprintf("Processing failed: %v", err))
		return nil, err
	}

	route, err := workflow.RouteEmail(final)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveProcessed(route.String())

	switch route {
	case core.RouteSpam:
		a.notifier.Error(fmt.Sprintf("This email was marked as SPAM. Reason: %s", final.Reason()))
	case core.RouteLegitimate:
		a.notifier.Success(fmt.Sprintf("This email is legitimate. Category: %s", final.Category("")))
	}

	a.logger.Info("Processed email",
		zap.String("run_id", final.RunID),
		zap.String("sender", email.Sender),
		zap.String("route", route.String()),
		zap.String("category", final.Category("")),
		zap.String("reason", final.Reason()),
		zap.Int("transcript_len", len(final.Transcript)),
		zap.Duration("duration", time.Since(start)))

	return final, nil
}
