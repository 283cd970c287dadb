package translation

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNormalization reports a provider body that carries no usable translation.
var ErrNormalization = errors.New("response contains no translated text")

var (
	textKeys     = []string{"text", "translatedText", "translation", "translated", "translation_text", "summary_text"}
	languageKeys = []string{"detectedLanguage", "detectedSourceLanguage", "from", "sourceLanguage"}
)

// Normalized is the provider-independent part of a translation response.
type Normalized struct {
	Text             string
	DetectedLanguage string
}

// Normalize extracts the translated text and detected source language from the response
// shapes providers use: a list of objects with translations[0].text, flat objects with one
// of several text keys, and a {"data": ...} wrapper around either.
func Normalize(raw []byte) (Normalized, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Normalized{}, ErrNormalization
	}
	result := normalizeValue(decoded, 0)
	if strings.TrimSpace(result.Text) == "" {
		return Normalized{}, ErrNormalization
	}
	result.Text = strings.TrimSpace(result.Text)
	return result, nil
}

// maxNormalizeDepth bounds recursion into nested lists and objects. The deepest supported
// shape, {"data":[{"translations":[{"text":...}]}]}, needs four levels.
const maxNormalizeDepth = 6

func normalizeValue(value any, depth int) Normalized {
	if depth > maxNormalizeDepth {
		return Normalized{}
	}
	switch typed := value.(type) {
	case []any:
		if len(typed) == 0 {
			return Normalized{}
		}
		return normalizeValue(typed[0], depth+1)
	case map[string]any:
		return normalizeObject(typed, depth)
	default:
		return Normalized{}
	}
}

func normalizeObject(object map[string]any, depth int) Normalized {
	detected := languageOf(object)

	if translations, ok := object["translations"]; ok {
		nested := normalizeValue(translations, depth+1)
		if nested.DetectedLanguage == "" {
			nested.DetectedLanguage = detected
		}
		if nested.Text != "" {
			return nested
		}
	}

	for _, key := range textKeys {
		if text, ok := object[key].(string); ok && strings.TrimSpace(text) != "" {
			return Normalized{Text: text, DetectedLanguage: detected}
		}
	}

	if data, ok := object["data"]; ok {
		return normalizeValue(data, depth+1)
	}
	return Normalized{DetectedLanguage: detected}
}

func languageOf(object map[string]any) string {
	for _, key := range languageKeys {
		switch value := object[key].(type) {
		case string:
			if code := strings.TrimSpace(value); code != "" {
				return strings.ToLower(code)
			}
		case map[string]any:
			if code, ok := value["language"].(string); ok && strings.TrimSpace(code) != "" {
				return strings.ToLower(strings.TrimSpace(code))
			}
		}
	}
	return ""
}
