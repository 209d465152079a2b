package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/intake"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/credentials"
	"github.com/mikey/llm-email-assistant/internal/ports"
	"github.com/mikey/llm-email-assistant/internal/whitelist"
)

// IntakeFactory creates email intakes based on configuration
type IntakeFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *credentials.Resolver
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger, resolver *credentials.Resolver) *IntakeFactory {
	return &IntakeFactory{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
	}
}

// CreateIntake creates the configured intake feeding processor
func (f *IntakeFactory) CreateIntake(processor ports.EmailProcessor) (ports.EmailIntake, error) {
	intakeCfg, err := f.cfg.GetIntake()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}

	switch intakeCfg.Type {
	case "smtp":
		s := intakeCfg.SMTP
		return intake.NewSMTPIntake(processor, intake.SMTPOptions{
			ListenAddress:   s.ListenAddress,
			Domain:          s.Domain,
			MaxMessageBytes: int64(s.MaxMessageBytes),
			BlockSpam:       s.BlockSpam,
			SpamHeader:      s.SpamHeader,
			CategoryHeader:  s.CategoryHeader,
			ReasonHeader:    s.ReasonHeader,
			RelayEnabled:    s.RelayEnabled,
			RelayAddress:    s.RelayAddress,
			Trusted:         whitelist.NewChecker(s.TrustedDomains, f.logger.Named("whitelist")),
		}, f.logger.Named("smtp")), nil
	case "imap":
		m := intakeCfg.IMAP
		password, err := f.resolver.Secret("imap-password", m.Password)
		if err != nil {
			return nil, err
		}
		return intake.NewIMAPIntake(processor, intake.IMAPOptions{
			Address:      m.Address,
			Username:     m.Username,
			Password:     password,
			TLS:          m.TLS,
			Mailbox:      m.Mailbox,
			SpamMailbox:  m.SpamMailbox,
			PollInterval: m.PollInterval,
			MaxAttempts:  m.MaxAttempts,
		}, f.logger.Named("imap")), nil
	default:
		return nil, fmt.Errorf("%w: unsupported intake type: %s", core.ErrConfiguration, intakeCfg.Type)
	}
}
