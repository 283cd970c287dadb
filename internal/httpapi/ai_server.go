package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/AycMouna/scholara/internal/language"
	"github.com/AycMouna/scholara/internal/summarization"
	"github.com/AycMouna/scholara/internal/translation"
)

const (
	defaultAIPort    = 5001
	maxSummaryLength = 5000

	invalidJSONTip = "Ensure your JSON uses double quotes, no trailing commas, and valid syntax."
)

// Translator is the translation entry point the AI service exposes.
type Translator interface {
	Translate(ctx context.Context, req translation.Request) (*translation.Result, error)
}

// Summarizer is the summarization entry point the AI service exposes.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength int) (*summarization.Result, error)
}

// AIServer serves translation, summarization and language listing over HTTP.
type AIServer struct {
	translator Translator
	summarizer Summarizer
	logger     zerolog.Logger
	opts       Options
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language"`
}

// translateResponse carries either the translation fields or the error fields. The
// other side is always null.
type translateResponse struct {
	TranslatedText   *string `json:"translated_text"`
	SourceLanguage   *string `json:"source_language"`
	TargetLanguage   *string `json:"target_language"`
	OriginalText     *string `json:"original_text"`
	Method           *string `json:"method"`
	Provider         string  `json:"provider,omitempty"`
	Strategy         string  `json:"strategy,omitempty"`
	Note             string  `json:"note,omitempty"`
	DetectedLanguage string  `json:"detected_language,omitempty"`
	Error            *string `json:"error"`
	Suggestion       string  `json:"suggestion,omitempty"`
	Details          string  `json:"details,omitempty"`
}

type summarizeRequest struct {
	Text      string          `json:"text"`
	MaxLength json.RawMessage `json:"max_length"`
}

type summarizeResponse struct {
	Summary        *string `json:"summary"`
	OriginalLength int     `json:"original_length"`
	SummaryLength  int     `json:"summary_length"`
	Method         *string `json:"method"`
	Note           string  `json:"note,omitempty"`
	Error          *string `json:"error"`
}

type languagesResponse struct {
	Languages     map[string]string `json:"languages"`
	LanguageCodes []string          `json:"language_codes"`
	Note          string            `json:"note"`
}

func NewAIServer(translator Translator, summarizer Summarizer, logger zerolog.Logger, opts Options) *AIServer {
	return &AIServer{
		translator: translator,
		summarizer: summarizer,
		logger:     logger,
		opts:       opts.withDefaults(defaultAIPort),
	}
}

func (s *AIServer) Start(ctx context.Context) error {
	if s == nil || s.translator == nil || s.summarizer == nil {
		return fmt.Errorf("ai server is not initialized")
	}

	e := newEcho(s.logger, s.opts, s.httpErrorHandler, http.MethodGet, http.MethodPost)
	s.routes(e)
	return serve(ctx, e, s.opts, s.logger, "ai service")
}

func (s *AIServer) routes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)
	e.GET("/languages", s.handleLanguages)
	e.GET("/translate", s.handleTranslateDocs)
	e.POST("/translate", s.handleTranslate)
	e.GET("/summarize", s.handleSummarizeDocs)
	e.POST("/summarize", s.handleSummarize)
}

func (s *AIServer) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, message := errorStatus(err)
	_ = c.JSON(status, map[string]string{"error": message})
}

func (s *AIServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ai-service",
	})
}

func (s *AIServer) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, languagesResponse{
		Languages:     language.Names(),
		LanguageCodes: language.SupportedCodes(),
		Note:          "Language support depends on the configured providers and available model pairs.",
	})
}

func (s *AIServer) handleTranslate(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return invalidJSON(c, err, map[string]any{"text": "Hello world", "target_language": "fr"},
			`Example: {"text":"Hello","target_language":"fr"}`)
	}

	var req translateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return invalidJSON(c, err, map[string]any{"text": "Hello world", "target_language": "fr"},
			`Example: {"text":"Hello","target_language":"fr"}`)
	}

	result, err := s.translator.Translate(c.Request().Context(), translation.Request{
		Text:       req.Text,
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
	})
	if err != nil {
		return s.translateFailure(c, err)
	}

	s.logger.Info().
		Str("source", result.SourceLang).
		Str("target", result.TargetLang).
		Str("method", result.Method).
		Msg("translation succeeded")

	return c.JSON(http.StatusOK, translateResponse{
		TranslatedText:   &result.TranslatedText,
		SourceLanguage:   &result.SourceLang,
		TargetLanguage:   &result.TargetLang,
		OriginalText:     &result.OriginalText,
		Method:           &result.Method,
		Provider:         result.Provider,
		Strategy:         result.Strategy,
		Note:             result.Note,
		DetectedLanguage: result.DetectedLanguage,
	})
}

func (s *AIServer) translateFailure(c echo.Context, err error) error {
	var terr *translation.Error
	if !errors.As(err, &terr) {
		s.logger.Error().Err(err).Msg("translation failed unexpectedly")
		message := "Internal server error"
		return c.JSON(http.StatusInternalServerError, translateResponse{Error: &message})
	}

	status := translationStatus(terr.Kind)
	message := terr.Message
	suggestion := terr.Suggestion
	switch terr.Kind {
	case translation.KindUnavailable:
		message = "Translation service is currently unavailable. The API provider is down."
		if suggestion == "" {
			suggestion = "Configure an alternate translation provider or retry later."
		}
	case translation.KindTimeout:
		message = "Translation service is currently slow. Please try again in a moment."
		if suggestion == "" {
			suggestion = "The provider took longer than expected. Please retry."
		}
	}

	details := terr.Details()
	if terr.Kind == translation.KindUnavailable || terr.Kind == translation.KindTimeout {
		details = terr.Error()
	}

	s.logger.Warn().
		Err(err).
		Str("kind", string(terr.Kind)).
		Str("provider", terr.Provider).
		Int("status", status).
		Msg("translation failed")

	return c.JSON(status, translateResponse{
		Error:      &message,
		Suggestion: suggestion,
		Details:    details,
	})
}

// translationStatus maps a failure kind to the HTTP status the client sees.
func translationStatus(kind translation.Kind) int {
	switch kind {
	case translation.KindQuota, translation.KindUnavailable:
		return http.StatusServiceUnavailable
	case translation.KindTimeout:
		return http.StatusRequestTimeout
	case translation.KindValidation, translation.KindAuth, translation.KindMalformed,
		translation.KindRejected, translation.KindNotConfigured:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *AIServer) handleSummarize(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return invalidJSON(c, err, map[string]any{"text": "Long text to summarize here...", "max_length": summarization.DefaultMaxLength},
			`Example: {"text":"Your text here","max_length":150}`)
	}

	var req summarizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return invalidJSON(c, err, map[string]any{"text": "Long text to summarize here...", "max_length": summarization.DefaultMaxLength},
			`Example: {"text":"Your text here","max_length":150}`)
	}

	result, err := s.summarizer.Summarize(c.Request().Context(), req.Text, parseMaxLength(req.MaxLength))
	switch {
	case err == nil:
	case errors.Is(err, summarization.ErrTextRequired):
		message := "Text is required"
		return c.JSON(http.StatusBadRequest, summarizeResponse{Error: &message})
	case errors.Is(err, summarization.ErrNoSummary):
		message := "No summary could be produced"
		return c.JSON(http.StatusBadRequest, summarizeResponse{Error: &message})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		message := "Summarization timed out. Please try again in a moment."
		return c.JSON(http.StatusRequestTimeout, summarizeResponse{Error: &message})
	default:
		s.logger.Error().Err(err).Msg("summarization failed unexpectedly")
		message := "Internal server error"
		return c.JSON(http.StatusInternalServerError, summarizeResponse{Error: &message})
	}

	s.logger.Info().
		Int("original_length", result.OriginalLength).
		Int("summary_length", result.SummaryLength).
		Str("method", result.Method).
		Msg("summarization succeeded")

	return c.JSON(http.StatusOK, summarizeResponse{
		Summary:        &result.Summary,
		OriginalLength: result.OriginalLength,
		SummaryLength:  result.SummaryLength,
		Method:         &result.Method,
		Note:           result.Note,
	})
}

// parseMaxLength accepts a JSON integer or a numeric string. Anything else uses the default.
func parseMaxLength(raw json.RawMessage) int {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return summarization.DefaultMaxLength
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		trimmed = text
	}
	value, err := parsePositiveInt(trimmed, summarization.DefaultMaxLength, 1, maxSummaryLength)
	if err != nil {
		return summarization.DefaultMaxLength
	}
	return value
}

func invalidJSON(c echo.Context, err error, example map[string]any, sample string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"error":   "Invalid JSON format in request body",
		"details": err.Error(),
		"example": example,
		"tip":     invalidJSONTip + " " + sample,
	})
}

func (s *AIServer) handleTranslateDocs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"endpoint":    "/translate",
		"method":      http.MethodPost,
		"description": "Translate text to a target language",
		"parameters": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"required":    true,
				"description": fmt.Sprintf("Text to translate (truncated to %d characters)", translation.MaxTextLength),
			},
			"target_language": map[string]any{
				"type":        "string",
				"required":    false,
				"default":     "en",
				"description": "Target language code (" + strings.Join(language.SupportedCodes(), ", ") + ")",
			},
			"source_language": map[string]any{
				"type":        "string",
				"required":    false,
				"default":     "auto",
				"description": `Source language code or "auto" for detection`,
			},
		},
		"example": map[string]any{
			"request": map[string]any{
				"text":            "Hello",
				"target_language": "fr",
			},
			"response": map[string]any{
				"translated_text": "Bonjour",
				"source_language": "en",
				"target_language": "fr",
				"original_text":   "Hello",
				"method":          translation.MethodLocalModel,
			},
		},
		"note": "Providers are tried in the configured order; the first success wins.",
	})
}

func (s *AIServer) handleSummarizeDocs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"endpoint":    "/summarize",
		"method":      http.MethodPost,
		"description": "Summarize text to a shorter version",
		"parameters": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"required":    true,
				"description": fmt.Sprintf("Text to summarize (truncated to %d characters)", summarization.MaxInputLength),
			},
			"max_length": map[string]any{
				"type":        "integer",
				"required":    false,
				"default":     summarization.DefaultMaxLength,
				"description": "Maximum length of summary in characters",
			},
		},
		"example": map[string]any{
			"request": map[string]any{
				"text":       "This is a very long text that needs to be summarized into a shorter version.",
				"max_length": 50,
			},
			"response": map[string]any{
				"summary":         "This is a very long...",
				"original_length": 76,
				"summary_length":  22,
				"method":          summarization.MethodTruncation,
			},
		},
		"note": "Falls back to extractive summarization, then truncation, when the model is unavailable.",
	})
}
