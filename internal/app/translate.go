package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/AycMouna/scholara/internal/cli"
	"github.com/AycMouna/scholara/internal/language"
	"github.com/AycMouna/scholara/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	to := fs.String("to", "en", "Target language (ISO 639-1, for example: en, fr)")
	from := fs.String("from", "auto", `Source language, or "auto" to detect it`)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	targetLang := normalizeLanguageFlag(*to)
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--to must be a valid language code")
		return 2
	}
	sourceLang := normalizeLanguageFlag(*from)
	if sourceLang == "" {
		fmt.Fprintln(os.Stderr, `--from must be a valid language code or "auto"`)
		return 2
	}

	text, err := textArgument(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printTranslateUsage()
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader, "scholara-cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	stack, err := buildAIStack(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize translation: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := stack.orchestrator.Translate(ctx, translation.Request{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		var terr *translation.Error
		if errors.As(err, &terr) && terr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "Translate failed (%s): %v\nSuggestion: %s\n", terr.Kind, err, terr.Suggestion)
			return 1
		}
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return 1
	}

	return printJSON(result)
}

func runSummarize(args []string) int {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	maxLength := fs.Int("max-length", 150, "Maximum summary length in characters")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *maxLength < 1 {
		fmt.Fprintln(os.Stderr, "--max-length must be >= 1")
		return 2
	}

	text, err := textArgument(fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Usage: scholara summarize [--max-length 150] [--env .env] <text | ->")
		return 2
	}

	cfg, logger, err := loadRuntime(envLoader, "scholara-cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	stack, err := buildAIStack(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize summarization: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := stack.summarizer.Summarize(ctx, text, *maxLength)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Summarize failed: %v\n", err)
		return 1
	}
	return printJSON(result)
}

func runLanguages(args []string) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the language list as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *asJSON {
		return printJSON(language.Options())
	}
	for _, option := range language.Options() {
		fmt.Printf("%s\t%s\t%s\n", option.Code, option.Label, option.Native)
	}
	return 0
}

// textArgument joins the positional arguments, or reads stdin when the only argument is "-".
func textArgument(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		args = []string{string(raw)}
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return "", fmt.Errorf("text is required")
	}
	return text, nil
}

func printJSON(value any) int {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encode output failed: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}

func normalizeLanguageFlag(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if lang == "" {
		return ""
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	for _, r := range lang {
		if unicode.IsLetter(r) || r == '-' {
			continue
		}
		return ""
	}
	return lang
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  scholara translate [--to en] [--from auto] [--env .env] [--timeout 2m] <text | ->")
}
