package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:          "local",
		LogLevel:             "info",
		DBMinConns:           1,
		DBMaxConns:           8,
		TranslationProviders: []string{"local", "placeholder"},
		ProviderTimeout:      5 * time.Second,
		InferenceBackend:     InferenceBackendPipeline,
		InferenceTimeout:     time.Minute,
		PivotLanguage:        "en",
		SummaryCharsPerToken: 3,
		SummaryMaxTokens:     80,
		SummaryMinTokens:     20,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsLongProviderTimeout(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.ProviderTimeout = 30 * time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected provider timeout above %s to be rejected", MaxProviderTimeout)
	}
}

func TestValidateRejectsUnknownInferenceBackend(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.InferenceBackend = "onnx"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown inference backend to be rejected")
	}
}

func TestValidateRejectsInvertedTokenBudget(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.SummaryMaxTokens = 10
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected max tokens below min tokens to be rejected")
	}
}

func TestValidateCourseServiceRequiresDatabaseURL(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.ValidateCourseService(); err == nil {
		t.Fatalf("expected missing DATABASE_URL to be rejected")
	}
	cfg.DatabaseURL = "postgres://localhost/scholara"
	if err := cfg.ValidateCourseService(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProviderOrderNormalizesAndDeduplicates(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.TranslationProviders = []string{" RapidAPI", "local", "rapidapi", "", "placeholder"}

	got := cfg.ProviderOrder()
	want := []string{"rapidapi", "local", "placeholder"}
	if len(got) != len(want) {
		t.Fatalf("unexpected provider order: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected provider at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestRapidAPIEndpointListFallsBackToHost(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.RapidAPIHost = "translator.p.rapidapi.com"
	got := cfg.RapidAPIEndpointList()
	if len(got) != 1 || got[0] != "https://translator.p.rapidapi.com" {
		t.Fatalf("unexpected endpoints: %v", got)
	}

	cfg.RapidAPIEndpoints = "https://a.example, https://b.example"
	got = cfg.RapidAPIEndpointList()
	if len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("unexpected explicit endpoints: %v", got)
	}
}
