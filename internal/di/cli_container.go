package di

import (
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/display"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/logging"
)

// CLIFlags contains the command line settings that shape the container
type CLIFlags struct {
	ConfigFile  string
	Provider    string
	Model       string
	Persona     string
	MaxBodySize int
	Verbose     bool
	JSONLog     bool
}

// BuildCLIContainer creates and configures a dependency injection container for the
// one-shot CLI. Display events are styled and written to out.
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if flags.ConfigFile != "" {
			cfg, err = config.NewFromFile(flags.ConfigFile)
		} else {
			cfg, err = config.New()
		}
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Debug("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Display events go to the terminal
	if err := container.Provide(func() core.Notifier {
		return display.NewConsoleNotifier(out)
	}); err != nil {
		return nil, err
	}

	if err := provideAssistant(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.Provider != "" {
		cfg.Set("llm.provider", flags.Provider)
	}
	if flags.Model != "" {
		switch cfg.GetLLM().Provider {
		case "openai":
			cfg.Set("openai.model_name", flags.Model)
		case "bedrock":
			cfg.Set("bedrock.model_id", flags.Model)
		default:
			cfg.Set("gemini.model_name", flags.Model)
		}
	}
	if flags.Persona != "" {
		cfg.Set("assistant.persona", flags.Persona)
	}
	if flags.MaxBodySize > 0 {
		cfg.Set("assistant.max_body_size", flags.MaxBodySize)
	}
}
