package language

import "sort"

// Option is one entry of the supported-language listing.
type Option struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type label struct {
	english string
	native  string
}

var supportedLabels = map[string]label{
	"ar": {english: "Arabic", native: "العربية"},
	"de": {english: "German", native: "Deutsch"},
	"en": {english: "English", native: "English"},
	"es": {english: "Spanish", native: "Español"},
	"fr": {english: "French", native: "Français"},
	"it": {english: "Italian", native: "Italiano"},
	"pt": {english: "Portuguese", native: "Português"},
}

// SupportedCodes returns the supported language codes in sorted order.
func SupportedCodes() []string {
	codes := make([]string, 0, len(supportedLabels))
	for code := range supportedLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupported reports whether code is one of the supported languages.
func IsSupported(code string) bool {
	_, ok := supportedLabels[NormalizeCode(code)]
	return ok
}

// Name returns the English name of a language, or the code itself when unknown.
func Name(code string) string {
	normalized := NormalizeCode(code)
	if l, ok := supportedLabels[normalized]; ok {
		return l.english
	}
	return code
}

// Names maps every supported code to its English name.
func Names() map[string]string {
	out := make(map[string]string, len(supportedLabels))
	for code, l := range supportedLabels {
		out[code] = l.english
	}
	return out
}

func Options() []Option {
	codes := SupportedCodes()
	options := make([]Option, 0, len(codes))
	for _, code := range codes {
		l := supportedLabels[code]
		options = append(options, Option{Code: code, Label: l.english, Native: l.native})
	}
	return options
}
