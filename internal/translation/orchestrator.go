package translation

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/AycMouna/scholara/internal/language"
)

// Orchestrator tries the configured providers in priority order and returns the first
// success. Auth, quota and upstream-outage failures stop the chain; anything else moves
// on to the next provider.
type Orchestrator struct {
	providers []Provider
	logger    zerolog.Logger
}

func NewOrchestrator(providers []Provider, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		logger:    logger,
	}
}

// ProviderNames returns the provider chain in the order it is tried.
func (o *Orchestrator) ProviderNames() []string {
	names := make([]string, 0, len(o.providers))
	for _, provider := range o.providers {
		names = append(names, provider.Name())
	}
	return names
}

// Translate returns either a result or an *Error, never both.
func (o *Orchestrator) Translate(ctx context.Context, req Request) (*Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, &Error{Kind: KindValidation, Message: "Text is required"}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		text = truncateRunes(text, MaxTextLength)
		o.logger.Warn().Int("limit", MaxTextLength).Msg("Text truncated for translation")
	}

	normalized := Request{
		Text:       text,
		SourceLang: language.NormalizeSource(req.SourceLang),
		TargetLang: language.NormalizeTarget(req.TargetLang, "en"),
	}
	if normalized.SourceLang == normalized.TargetLang {
		return &Result{
			TranslatedText: text,
			SourceLang:     normalized.SourceLang,
			TargetLang:     normalized.TargetLang,
			OriginalText:   text,
			Method:         MethodPassthrough,
		}, nil
	}

	failures := make([]*Error, 0, len(o.providers))
	for _, provider := range o.providers {
		started := time.Now()
		result, err := provider.Translate(ctx, normalized)
		if err == nil && result != nil {
			o.logger.Debug().
				Str("provider", provider.Name()).
				Str("method", result.Method).
				Dur("latency", time.Since(started)).
				Msg("Translation succeeded")
			if result.Provider == "" {
				result.Provider = provider.Name()
			}
			return result, nil
		}

		failure := AsError(provider.Name(), err)
		if failure == nil {
			failure = &Error{Kind: KindMalformed, Provider: provider.Name(), Message: "provider returned no result"}
		}
		failures = append(failures, failure)

		if failure.Kind == KindNotConfigured {
			o.logger.Debug().Str("provider", provider.Name()).Msg("Skipping unconfigured translation provider")
			continue
		}
		o.logger.Warn().
			Err(failure).
			Str("provider", provider.Name()).
			Str("kind", string(failure.Kind)).
			Int("status", failure.Status).
			Msg("Translation provider failed")

		if failure.Kind.Terminal() {
			return nil, failure
		}
		if ctx.Err() != nil {
			return nil, AsError(provider.Name(), ctx.Err())
		}
	}

	if allNotConfigured(failures) {
		return placeholderResult(normalized), nil
	}
	return nil, aggregate(failures)
}

func allNotConfigured(failures []*Error) bool {
	for _, failure := range failures {
		if failure.Kind != KindNotConfigured {
			return false
		}
	}
	return true
}

// aggregate reports the last real failure, listing every provider failure in order.
func aggregate(failures []*Error) *Error {
	var last *Error
	parts := make([]string, 0, len(failures))
	for _, failure := range failures {
		parts = append(parts, failure.Error())
		if failure.Kind != KindNotConfigured {
			last = failure
		}
	}

	suggestion := last.Suggestion
	if suggestion == "" {
		suggestion = "Check the provider configuration or try again later."
	}
	return &Error{
		Kind:       last.Kind,
		Status:     last.Status,
		Message:    "all translation providers failed: " + strings.Join(parts, "; "),
		Suggestion: suggestion,
	}
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
