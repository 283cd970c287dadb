package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/AycMouna/scholara/internal/cli"
	"github.com/AycMouna/scholara/internal/config"
	"github.com/AycMouna/scholara/internal/inference"
	"github.com/AycMouna/scholara/internal/logging"
	"github.com/AycMouna/scholara/internal/summarization"
	"github.com/AycMouna/scholara/internal/translation"
)

// loadRuntime loads the env file, config and logger shared by every command.
func loadRuntime(envLoader *cli.EnvLoader, service string) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel, service)
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

type aiStack struct {
	registry     *inference.Registry
	orchestrator *translation.Orchestrator
	summarizer   *summarization.Summarizer
}

func buildAIStack(cfg *config.Config, logger zerolog.Logger) (*aiStack, error) {
	loader, err := inference.NewLoader(cfg.InferenceBackend, cfg.InferenceEndpoint, cfg.InferenceAPIKey, cfg.InferenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("build inference loader: %w", err)
	}

	registry := inference.NewRegistry(loader, inference.Catalog{
		TranslationOverride:   cfg.TranslationModel,
		SummarizationOverride: cfg.SummarizationModel,
	}, logger.With().Str("component", "inference").Logger())

	providers, err := translation.ProvidersFromConfig(cfg, registry)
	if err != nil {
		return nil, fmt.Errorf("build translation providers: %w", err)
	}

	return &aiStack{
		registry:     registry,
		orchestrator: translation.NewOrchestrator(providers, logger.With().Str("component", "translation").Logger()),
		summarizer: summarization.New(registry, summarization.Budget{
			CharsPerToken: cfg.SummaryCharsPerToken,
			HardMax:       cfg.SummaryMaxTokens,
			Floor:         cfg.SummaryMinTokens,
		}, logger.With().Str("component", "summarization").Logger()),
	}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
