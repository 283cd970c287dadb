package translation

import (
	"context"
	"fmt"
	"strings"
)

const placeholderNote = "No translation provider is configured; the text is returned labeled with the target language, untranslated."

// PlaceholderProvider keeps the endpoint usable without credentials by returning the input
// labeled with the target language.
type PlaceholderProvider struct{}

func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{}
}

func (p *PlaceholderProvider) Name() string {
	return MethodPlaceholder
}

func (p *PlaceholderProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	_ = ctx
	return placeholderResult(req), nil
}

func placeholderResult(req Request) *Result {
	return &Result{
		TranslatedText: fmt.Sprintf("[%s] %s", strings.ToUpper(req.TargetLang), req.Text),
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		OriginalText:   req.Text,
		Method:         MethodPlaceholder,
		Provider:       MethodPlaceholder,
		Note:           placeholderNote,
	}
}
