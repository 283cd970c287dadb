package summarization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/AycMouna/scholara/internal/inference"
)

const (
	// MaxInputLength is the rune limit applied to input before summarizing.
	MaxInputLength = 1024
	// DefaultMaxLength is the summary character budget when the caller gives none.
	DefaultMaxLength = 150

	MethodModel      = "model"
	MethodExtractive = "extractive_fallback"
	MethodTruncation = "truncation_fallback"
)

var (
	ErrTextRequired = errors.New("text is required")
	ErrNoSummary    = errors.New("no summary could be produced")
)

// PipelineSource hands out loaded inference pipelines. *inference.Registry implements it.
type PipelineSource interface {
	Pipeline(ctx context.Context, task inference.Task, source, target string) (inference.Pipeline, error)
}

// Result is one summary tagged with the tier that produced it.
type Result struct {
	Summary        string `json:"summary"`
	OriginalLength int    `json:"original_length"`
	SummaryLength  int    `json:"summary_length"`
	Method         string `json:"method"`
	Note           string `json:"note,omitempty"`
}

// Summarizer runs the model, then extractive, then truncation tiers until one yields text.
type Summarizer struct {
	pipelines PipelineSource
	budget    Budget
	logger    zerolog.Logger
}

// New builds a Summarizer. pipelines may be nil, which skips the model tier.
func New(pipelines PipelineSource, budget Budget, logger zerolog.Logger) *Summarizer {
	return &Summarizer{
		pipelines: pipelines,
		budget:    budget.withDefaults(),
		logger:    logger,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength int) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrTextRequired
	}
	if utf8.RuneCountInString(text) > MaxInputLength {
		text = string([]rune(text)[:MaxInputLength])
		s.logger.Warn().Int("limit", MaxInputLength).Msg("Text truncated for summarization")
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	result := &Result{OriginalLength: utf8.RuneCountInString(text)}

	summary, err := s.modelSummary(ctx, text, maxLength)
	switch {
	case err == nil && summary != "":
		result.Method = MethodModel
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		if err != nil {
			s.logger.Warn().Err(err).Msg("Summarization model failed, using extractive fallback")
			result.Note = fmt.Sprintf("Summarization model unavailable: %v", err)
		}
		summary = Extract(text, maxLength)
		result.Method = MethodExtractive
		if summary == "" {
			summary = Truncate(text, maxLength)
			result.Method = MethodTruncation
		}
	}

	if summary == "" {
		return nil, ErrNoSummary
	}
	result.Summary = summary
	result.SummaryLength = utf8.RuneCountInString(summary)
	return result, nil
}

func (s *Summarizer) modelSummary(ctx context.Context, text string, maxLength int) (string, error) {
	if s.pipelines == nil {
		return "", errors.New("no inference runtime is configured")
	}
	pipeline, err := s.pipelines.Pipeline(ctx, inference.TaskSummarization, "", "")
	if err != nil {
		return "", err
	}

	maxTokens, minTokens := s.budget.Tokens(maxLength)
	summary, err := pipeline.Run(ctx, text, inference.Params{MaxTokens: maxTokens, MinTokens: minTokens})
	if err != nil {
		return "", fmt.Errorf("run summarization model: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
