package language

import "strings"

// Auto asks the service to detect the source language.
const Auto = "auto"

// NormalizeTag normalizes a language tag to lowercase and "-" separators.
// Returns an empty string when the value is blank or contains invalid characters.
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '-' || r == '_' })
	for _, part := range parts {
		if !isAlphaLower(part) {
			return ""
		}
	}
	return strings.Join(parts, "-")
}

// NormalizeCode returns the primary language subtag (for example, "en" from "en-US").
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if dash := strings.IndexByte(tag, '-'); dash >= 0 {
		return tag[:dash]
	}
	return tag
}

// NormalizeSource normalizes a requested source language. Blank and "auto" both yield Auto.
func NormalizeSource(raw string) string {
	code := NormalizeCode(raw)
	if code == "" || code == Auto {
		return Auto
	}
	return code
}

// NormalizeTarget normalizes a requested target language, using fallback when blank or invalid.
func NormalizeTarget(raw, fallback string) string {
	if code := NormalizeCode(raw); code != "" && code != Auto {
		return code
	}
	return NormalizeCode(fallback)
}

func isAlphaLower(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
