package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// MaxProviderTimeout bounds the per-call timeout of remote translation providers.
	MaxProviderTimeout = 10 * time.Second

	InferenceBackendPipeline = "pipeline"
	InferenceBackendOpenAI   = "openai"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	TranslationProviders []string      `envconfig:"TRANSLATION_PROVIDERS" default:"local,placeholder"`
	ProviderTimeout      time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"5s"`

	RapidAPIKey       string `envconfig:"RAPIDAPI_KEY" default:""`
	RapidAPIHost      string `envconfig:"RAPIDAPI_HOST" default:"microsoft-translator-text.p.rapidapi.com"`
	RapidAPIEndpoints string `envconfig:"RAPIDAPI_ENDPOINTS" default:""`

	AzureTranslatorKey      string `envconfig:"AZURE_TRANSLATOR_KEY" default:""`
	AzureTranslatorRegion   string `envconfig:"AZURE_TRANSLATOR_REGION" default:""`
	AzureTranslatorEndpoint string `envconfig:"AZURE_TRANSLATOR_ENDPOINT" default:"https://api.cognitive.microsofttranslator.com"`

	LibreTranslateURL    string `envconfig:"LIBRETRANSLATE_URL" default:""`
	LibreTranslateAPIKey string `envconfig:"LIBRETRANSLATE_API_KEY" default:""`

	InferenceBackend  string        `envconfig:"INFERENCE_BACKEND" default:"pipeline"`
	InferenceEndpoint string        `envconfig:"INFERENCE_ENDPOINT" default:"http://127.0.0.1:8845"`
	InferenceAPIKey   string        `envconfig:"INFERENCE_API_KEY" default:""`
	InferenceTimeout  time.Duration `envconfig:"INFERENCE_TIMEOUT" default:"120s"`

	TranslationModel   string   `envconfig:"AI_TRANSLATION_MODEL" default:""`
	SummarizationModel string   `envconfig:"AI_SUMMARIZATION_MODEL" default:""`
	DefaultSourceLang  string   `envconfig:"AI_TRANSLATION_SOURCE_LANG" default:"en"`
	PivotLanguage      string   `envconfig:"AI_PIVOT_LANGUAGE" default:"en"`
	WarmupPairs        []string `envconfig:"AI_WARMUP_PAIRS" default:"en-fr"`
	WarmupDisabled     bool     `envconfig:"AI_WARMUP_DISABLED" default:"false"`

	SummaryCharsPerToken int `envconfig:"SUMMARY_CHARS_PER_TOKEN" default:"3"`
	SummaryMaxTokens     int `envconfig:"SUMMARY_MAX_TOKENS" default:"80"`
	SummaryMinTokens     int `envconfig:"SUMMARY_MIN_TOKENS" default:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ProviderTimeout <= 0 || c.ProviderTimeout > MaxProviderTimeout {
		return fmt.Errorf("PROVIDER_TIMEOUT must be in (0, %s]", MaxProviderTimeout)
	}
	if c.InferenceTimeout <= 0 {
		return fmt.Errorf("INFERENCE_TIMEOUT must be > 0")
	}
	switch strings.ToLower(strings.TrimSpace(c.InferenceBackend)) {
	case InferenceBackendPipeline, InferenceBackendOpenAI:
	default:
		return fmt.Errorf("INFERENCE_BACKEND must be %q or %q", InferenceBackendPipeline, InferenceBackendOpenAI)
	}
	if strings.TrimSpace(c.PivotLanguage) == "" {
		return fmt.Errorf("AI_PIVOT_LANGUAGE is required")
	}
	if c.SummaryCharsPerToken < 1 {
		return fmt.Errorf("SUMMARY_CHARS_PER_TOKEN must be >= 1")
	}
	if c.SummaryMinTokens < 1 {
		return fmt.Errorf("SUMMARY_MIN_TOKENS must be >= 1")
	}
	if c.SummaryMaxTokens < c.SummaryMinTokens {
		return fmt.Errorf("SUMMARY_MAX_TOKENS (%d) cannot be below SUMMARY_MIN_TOKENS (%d)", c.SummaryMaxTokens, c.SummaryMinTokens)
	}
	return nil
}

// ValidateCourseService checks the settings only the course service needs.
func (c *Config) ValidateCourseService() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

// RapidAPIEndpointList returns the configured RapidAPI base URLs, tried in order.
func (c *Config) RapidAPIEndpointList() []string {
	if c == nil {
		return nil
	}
	endpoints := splitList(c.RapidAPIEndpoints)
	if len(endpoints) == 0 && strings.TrimSpace(c.RapidAPIHost) != "" {
		endpoints = []string{"https://" + strings.TrimSpace(c.RapidAPIHost)}
	}
	return endpoints
}

// ProviderOrder returns the normalized provider names in priority order.
func (c *Config) ProviderOrder() []string {
	if c == nil {
		return nil
	}
	return splitList(strings.ToLower(strings.Join(c.TranslationProviders, ",")))
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, exists := seen[item]; exists {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	return items
}
