package metrics

import (
	"context"
	"time"

	"github.com/mikey/llm-email-assistant/internal/core"
)

type instrumentedClient struct {
	next    core.GenerationClient
	metrics *Metrics
}

// InstrumentClient wraps next so that every call's latency is recorded
func InstrumentClient(next core.GenerationClient, m *Metrics) core.GenerationClient {
	if m == nil {
		return next
	}
	return &instrumentedClient{next: next, metrics: m}
}

func (c *instrumentedClient) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := c.next.Generate(ctx, prompt)
	c.metrics.ObserveGeneration(time.Since(start))
	return out, err
}
