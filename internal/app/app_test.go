package app

import (
	"strings"
	"testing"
)

func TestRunRejectsUnknownCommand(t *testing.T) {
	if code := Run([]string{"ingest"}); code != 2 {
		t.Fatalf("unexpected exit code: %d", code)
	}
	if code := Run(nil); code != 2 {
		t.Fatalf("unexpected exit code without args: %d", code)
	}
	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("unexpected exit code for help: %d", code)
	}
}

func TestTranslateValidatesFlagsBeforeLoadingConfig(t *testing.T) {
	if code := runTranslate([]string{"--to", "f1", "Hello"}); code != 2 {
		t.Fatalf("expected invalid target to exit 2, got %d", code)
	}
	if code := runTranslate([]string{"--to", "fr"}); code != 2 {
		t.Fatalf("expected missing text to exit 2, got %d", code)
	}
	if code := runSummarize([]string{"--max-length", "0", "Text."}); code != 2 {
		t.Fatalf("expected invalid max length to exit 2, got %d", code)
	}
}

func TestServeRejectsBadPort(t *testing.T) {
	if code := runServeAI([]string{"--port", "70000"}); code != 2 {
		t.Fatalf("unexpected exit code: %d", code)
	}
}

func TestRunLanguages(t *testing.T) {
	if code := runLanguages(nil); code != 0 {
		t.Fatalf("unexpected exit code: %d", code)
	}
}

func TestTextArgument(t *testing.T) {
	t.Parallel()

	got, err := textArgument([]string{" Hello", "world "}, strings.NewReader(""))
	if err != nil || got != "Hello world" {
		t.Fatalf("unexpected text: %q err=%v", got, err)
	}

	got, err = textArgument([]string{"-"}, strings.NewReader("  from stdin\n"))
	if err != nil || got != "from stdin" {
		t.Fatalf("unexpected stdin text: %q err=%v", got, err)
	}

	if _, err := textArgument(nil, strings.NewReader("")); err == nil {
		t.Fatalf("expected empty text to fail")
	}
}

func TestNormalizeLanguageFlag(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		" FR ":  "fr",
		"pt_BR": "pt-br",
		"auto":  "auto",
		"e2":    "",
		"":      "",
	}
	for raw, want := range cases {
		if got := normalizeLanguageFlag(raw); got != want {
			t.Fatalf("normalizeLanguageFlag(%q): got %q want %q", raw, got, want)
		}
	}
}
