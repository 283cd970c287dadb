package summarization

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceTerminators = regexp.MustCompile(`[.!?]+`)

// Extract greedily keeps leading sentences while the summary stays within maxChars, so
// the result is always an unbroken run from the start of the text. Short one-word
// fragments (initials, list markers) are joined to the sentence that follows them.
// Returns "" when not even the first sentence fits.
func Extract(text string, maxChars int) string {
	var summary strings.Builder
	var markers []string
	length := 0
	for _, fragment := range sentenceTerminators.Split(text, -1) {
		sentence := strings.TrimSpace(fragment)
		if sentence == "" {
			continue
		}
		if isMarker(sentence) {
			markers = append(markers, sentence)
			continue
		}
		if len(markers) > 0 {
			sentence = strings.Join(markers, ". ") + ". " + sentence
			markers = nil
		}

		needed := utf8.RuneCountInString(sentence) + 1
		if length > 0 {
			needed++
		}
		if length+needed > maxChars {
			break
		}
		if length > 0 {
			summary.WriteByte(' ')
		}
		summary.WriteString(sentence)
		summary.WriteByte('.')
		length += needed
	}
	return summary.String()
}

func isMarker(fragment string) bool {
	return !strings.ContainsAny(fragment, " \t\n") && utf8.RuneCountInString(fragment) <= 2
}

// Truncate keeps the first max(1, maxChars/10) words, appending "..." when words were dropped.
func Truncate(text string, maxChars int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	limit := maxChars / 10
	if limit < 1 {
		limit = 1
	}
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "..."
}
