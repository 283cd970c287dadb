package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AycMouna/scholara/internal/inference"
	"github.com/AycMouna/scholara/internal/language"
)

const localProviderName = "local"

// PipelineSource hands out loaded inference pipelines. *inference.Registry implements it.
type PipelineSource interface {
	Pipeline(ctx context.Context, task inference.Task, source, target string) (inference.Pipeline, error)
}

// LocalProvider translates with locally served sequence-to-sequence models. Pairs without a
// direct model are composed through the pivot language; runtime failures are returned as is.
type LocalProvider struct {
	pipelines     PipelineSource
	defaultSource string
	pivot         string
	detect        func(string) string
}

func NewLocalProvider(pipelines PipelineSource, defaultSource, pivot string) *LocalProvider {
	defaultSource = language.NormalizeCode(defaultSource)
	if defaultSource == "" {
		defaultSource = "en"
	}
	pivot = language.NormalizeCode(pivot)
	if pivot == "" {
		pivot = "en"
	}
	return &LocalProvider{
		pipelines:     pipelines,
		defaultSource: defaultSource,
		pivot:         pivot,
		detect:        language.Detect,
	}
}

func (p *LocalProvider) Name() string {
	return localProviderName
}

func (p *LocalProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	if p == nil || p.pipelines == nil {
		return nil, notConfigured(localProviderName, "inference runtime")
	}

	source := language.NormalizeSource(req.SourceLang)
	detected := ""
	if source == language.Auto {
		if p.detect != nil {
			detected = p.detect(req.Text)
		}
		source = detected
		if source == "" {
			source = p.defaultSource
		}
	}
	target := req.TargetLang

	result := &Result{
		SourceLang:       source,
		TargetLang:       target,
		OriginalText:     req.Text,
		Method:           MethodLocalModel,
		Provider:         localProviderName,
		Strategy:         StrategyDirect,
		DetectedLanguage: detected,
	}
	if source == target {
		result.TranslatedText = req.Text
		result.Method = MethodPassthrough
		return result, nil
	}

	translated, err := p.run(ctx, source, target, req.Text)
	if err != nil {
		// Pivot only when the direct model is missing.
		if !errors.Is(err, inference.ErrModelUnavailable) || source == p.pivot || target == p.pivot {
			return nil, localFailure(err, fmt.Sprintf("model %s→%s failed", source, target),
				"Ensure the inference runtime is running and serves this language pair.")
		}

		intermediate, pivotErr := p.run(ctx, source, p.pivot, req.Text)
		if pivotErr == nil {
			translated, pivotErr = p.run(ctx, p.pivot, target, intermediate)
		}
		if pivotErr != nil {
			return nil, localFailure(errors.Join(err, pivotErr),
				fmt.Sprintf("direct model %s→%s not available and two-step translation failed", source, target),
				fmt.Sprintf("Try specifying source_language explicitly, or use a supported language pair. Check that Helsinki-NLP/opus-mt-%s-%s exists.", source, target))
		}
		result.Strategy = StrategyTwoStep
		result.Note = fmt.Sprintf("Used two-step translation (%s→%s→%s) because the direct model is not available", source, p.pivot, target)
	}

	if source == "fr" && target == "en" {
		translated = fixPronounReferences(translated, req.Text)
	}
	result.TranslatedText = translated
	return result, nil
}

func (p *LocalProvider) run(ctx context.Context, source, target, text string) (string, error) {
	pipeline, err := p.pipelines.Pipeline(ctx, inference.TaskTranslation, source, target)
	if err != nil {
		return "", err
	}

	maxTokens := 128
	if utf8.RuneCountInString(text) > 200 {
		maxTokens = 256
	}
	out, err := pipeline.Run(ctx, text, inference.Params{
		SourceLang: source,
		TargetLang: target,
		MaxTokens:  maxTokens,
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("model %s→%s returned empty output", source, target)
	}
	return out, nil
}

func localFailure(err error, message, suggestion string) *Error {
	if isTimeout(err) {
		return &Error{
			Kind:       KindTimeout,
			Provider:   localProviderName,
			Message:    "local model timed out",
			Suggestion: "Retry the request in a moment.",
			Err:        err,
		}
	}
	return &Error{
		Kind:       KindRejected,
		Provider:   localProviderName,
		Message:    message,
		Suggestion: suggestion,
		Err:        err,
	}
}
