package inference

import (
	"fmt"
	"strings"
)

const (
	DefaultSummarizationModel  = "sshleifer/distilbart-cnn-12-6"
	FallbackSummarizationModel = "facebook/bart-large-cnn"

	translationModelPattern = "Helsinki-NLP/opus-mt-%s-%s"
)

// Catalog resolves which model names back a pipeline key.
type Catalog struct {
	TranslationOverride   string
	SummarizationOverride string
}

// Candidates returns the primary model for key followed by its fallback, if any.
func (c Catalog) Candidates(key Key) []string {
	switch key.Task {
	case TaskSummarization:
		primary := strings.TrimSpace(c.SummarizationOverride)
		if primary == "" {
			primary = DefaultSummarizationModel
		}
		return dedupe(primary, FallbackSummarizationModel)
	case TaskTranslation:
		primary := strings.TrimSpace(c.TranslationOverride)
		if primary == "" {
			primary = fmt.Sprintf(translationModelPattern, key.Source, key.Target)
		}
		switch {
		case key.Target == "en":
			return dedupe(primary, fmt.Sprintf(translationModelPattern, "mul", "en"))
		case key.Source == "en":
			return dedupe(primary, fmt.Sprintf(translationModelPattern, "en", "mul"))
		default:
			return dedupe(primary)
		}
	default:
		return nil
	}
}

func dedupe(models ...string) []string {
	out := make([]string, 0, len(models))
	for _, model := range models {
		if model == "" {
			continue
		}
		duplicate := false
		for _, existing := range out {
			if existing == model {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, model)
		}
	}
	return out
}
