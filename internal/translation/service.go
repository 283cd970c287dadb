package translation

import "context"

// MaxTextLength is the rune limit applied to input before any provider sees it.
const MaxTextLength = 1000

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// Request describes one translation request. SourceLang may be language.Auto.
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Result contains translated text and provider metadata.
type Result struct {
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_language"`
	TargetLang     string `json:"target_language"`
	OriginalText   string `json:"original_text"`
	Method         string `json:"method"`
	Provider       string `json:"provider,omitempty"`

	// Strategy is "direct" or "two_step" for local-model translations.
	Strategy         string `json:"strategy,omitempty"`
	Note             string `json:"note,omitempty"`
	DetectedLanguage string `json:"detected_language,omitempty"`
}

const (
	StrategyDirect  = "direct"
	StrategyTwoStep = "two_step"

	MethodPassthrough = "passthrough"
	MethodPlaceholder = "placeholder"
	MethodLocalModel  = "local_model"
)
