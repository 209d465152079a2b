package di

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/display"
	"github.com/mikey/llm-email-assistant/internal/assistant"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/credentials"
	"github.com/mikey/llm-email-assistant/internal/factory"
	"github.com/mikey/llm-email-assistant/internal/logging"
	"github.com/mikey/llm-email-assistant/internal/metrics"
	"github.com/mikey/llm-email-assistant/internal/ports"
	"github.com/mikey/llm-email-assistant/internal/utils"
	"github.com/mikey/llm-email-assistant/internal/workflow"
)

// BuildContainer creates and configures a dependency injection container for the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Display events go to the log
	if err := container.Provide(func(logger *zap.Logger) core.Notifier {
		return display.NewLogNotifier(logger)
	}); err != nil {
		return nil, err
	}

	if err := provideAssistant(container); err != nil {
		return nil, err
	}

	// Register intake
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IntakeFactory, a *assistant.Assistant) (ports.EmailIntake, error) {
		return f.CreateIntake(a)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideAssistant registers everything from credentials to the assistant itself.
// The container must already provide *config.Config, *zap.Logger and core.Notifier.
func provideAssistant(container *dig.Container) error {
	// Register credentials resolver
	if err := container.Provide(func(cfg *config.Config) *credentials.Resolver {
		creds := cfg.GetCredentials()
		if !creds.Keyring {
			return credentials.NewResolver(nil)
		}
		return credentials.NewResolver(credentials.KeyringLookup(creds.Service))
	}); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register completion cache; nil when disabled
	if err := container.Provide(func(f *factory.CacheFactory) (core.CompletionCache, error) {
		return f.CreateCache(context.Background())
	}); err != nil {
		return err
	}

	// Register metrics
	if err := container.Provide(metrics.NewRegistry); err != nil {
		return err
	}
	if err := container.Provide(func(reg *prometheus.Registry) (*metrics.Metrics, error) {
		return metrics.New(reg)
	}); err != nil {
		return err
	}

	// Register generation service
	if err := container.Provide(func(
		f *factory.LLMFactory,
		cf *factory.CacheFactory,
		cache core.CompletionCache,
		logger *zap.Logger,
	) (*core.GenerationService, error) {
		client, err := f.CreateClient(context.Background())
		if err != nil {
			return nil, err
		}
		ttl, err := cf.TTL()
		if err != nil {
			return nil, err
		}
		return core.NewGenerationService(client, cache, logger, cf.IsCacheEnabled(), ttl, f.ModelName()), nil
	}); err != nil {
		return err
	}

	// Register workflow steps and engine
	if err := container.Provide(func(
		svc *core.GenerationService,
		m *metrics.Metrics,
		notifier core.Notifier,
		tp *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
	) *workflow.Steps {
		a := cfg.GetAssistant()
		return workflow.NewSteps(
			metrics.InstrumentClient(svc, m),
			notifier,
			tp,
			workflow.Persona{Name: a.Persona, Principal: a.Principal},
			a.MaxBodySize,
			logger.Named("workflow"),
		)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(steps *workflow.Steps, logger *zap.Logger) (*workflow.Engine, error) {
		return workflow.NewEmailWorkflow(steps, logger.Named("engine"))
	}); err != nil {
		return err
	}

	// Register assistant
	return container.Provide(func(
		engine *workflow.Engine,
		notifier core.Notifier,
		m *metrics.Metrics,
		logger *zap.Logger,
	) *assistant.Assistant {
		return assistant.New(engine, notifier, m, logger.Named("assistant"))
	})
}
