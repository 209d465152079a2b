package config

import "time"

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// AssistantConfig holds the prompt persona and input limits
type AssistantConfig struct {
	Persona     string
	Principal   string
	MaxBodySize int
}

// CacheConfig represents the completion cache settings
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	PostgresDSN      string
	RedisAddr        string
	RedisPrefix      string
}

// SMTPIntakeConfig configures the SMTP content filter
type SMTPIntakeConfig struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int
	BlockSpam       bool
	SpamHeader      string
	CategoryHeader  string
	ReasonHeader    string
	RelayEnabled    bool
	RelayAddress    string
	TrustedDomains  []string
}

// IMAPIntakeConfig configures the mailbox poller
type IMAPIntakeConfig struct {
	Address      string
	Username     string
	Password     string
	TLS          bool
	Mailbox      string
	SpamMailbox  string
	PollInterval time.Duration
	MaxAttempts  int
}

// IntakeConfig selects and configures the email intake
type IntakeConfig struct {
	Type string
	SMTP SMTPIntakeConfig
	IMAP IMAPIntakeConfig
}

// MetricsConfig configures the Prometheus exporter
type MetricsConfig struct {
	Enabled       bool
	ListenAddress string
}

// TelemetryConfig configures OTLP tracing
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Insecure    bool
}

// CredentialsConfig controls the keyring fallback for API keys
type CredentialsConfig struct {
	Keyring bool
	Service string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetAssistant returns the persona and body limit settings
func (c *Config) GetAssistant() AssistantConfig {
	return AssistantConfig{
		Persona:     c.GetString("assistant.persona"),
		Principal:   c.GetString("assistant.principal"),
		MaxBodySize: c.GetInt("assistant.max_body_size"),
	}
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		PostgresDSN:      c.GetString("cache.postgres_dsn"),
		RedisAddr:        c.GetString("cache.redis_addr"),
		RedisPrefix:      c.GetString("cache.redis_prefix"),
	}, nil
}

// GetIntake returns the intake configuration
func (c *Config) GetIntake() (IntakeConfig, error) {
	poll, err := c.GetDuration("intake.imap.poll_interval")
	if err != nil {
		return IntakeConfig{}, err
	}
	return IntakeConfig{
		Type: c.GetString("intake.type"),
		SMTP: SMTPIntakeConfig{
			ListenAddress:   c.GetString("intake.smtp.listen_address"),
			Domain:          c.GetString("intake.smtp.domain"),
			MaxMessageBytes: c.GetInt("intake.smtp.max_message_bytes"),
			BlockSpam:       c.GetBool("intake.smtp.block_spam"),
			SpamHeader:      c.GetString("intake.smtp.headers.spam"),
			CategoryHeader:  c.GetString("intake.smtp.headers.category"),
			ReasonHeader:    c.GetString("intake.smtp.headers.reason"),
			RelayEnabled:    c.GetBool("intake.smtp.relay.enabled"),
			RelayAddress:    c.GetString("intake.smtp.relay.address"),
			TrustedDomains:  c.GetStringSlice("intake.smtp.trusted_domains"),
		},
		IMAP: IMAPIntakeConfig{
			Address:      c.GetString("intake.imap.address"),
			Username:     c.GetString("intake.imap.username"),
			Password:     c.GetString("intake.imap.password"),
			TLS:          c.GetBool("intake.imap.tls"),
			Mailbox:      c.GetString("intake.imap.mailbox"),
			SpamMailbox:  c.GetString("intake.imap.spam_mailbox"),
			PollInterval: poll,
			MaxAttempts:  c.GetInt("intake.imap.max_attempts"),
		},
	}, nil
}

// GetMetrics returns the metrics exporter configuration
func (c *Config) GetMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:       c.GetBool("metrics.enabled"),
		ListenAddress: c.GetString("metrics.listen_address"),
	}
}

// GetTelemetry returns the tracing configuration
func (c *Config) GetTelemetry() TelemetryConfig {
	return TelemetryConfig{
		Enabled:     c.GetBool("telemetry.enabled"),
		ServiceName: c.GetString("telemetry.service_name"),
		Endpoint:    c.GetString("telemetry.endpoint"),
		Insecure:    c.GetBool("telemetry.insecure"),
	}
}

// GetCredentials returns the keyring settings
func (c *Config) GetCredentials() CredentialsConfig {
	return CredentialsConfig{
		Keyring: c.GetBool("credentials.keyring"),
		Service: c.GetString("credentials.service"),
	}
}
