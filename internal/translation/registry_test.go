package translation

import (
	"testing"
	"time"

	"github.com/AycMouna/scholara/internal/config"
)

func TestProvidersFromConfigKeepsOrder(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		TranslationProviders: []string{"azure", "RapidAPI", "local", "libretranslate", "placeholder"},
		ProviderTimeout:      3 * time.Second,
		RapidAPIHost:         "microsoft-translator-text.p.rapidapi.com",
	}

	providers, err := ProvidersFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	want := []string{"azure", "rapidapi", "local", "libretranslate", "placeholder"}
	if len(providers) != len(want) {
		t.Fatalf("unexpected provider count: %d", len(providers))
	}
	for i, provider := range providers {
		if provider.Name() != want[i] {
			t.Fatalf("provider %d: got %q want %q", i, provider.Name(), want[i])
		}
	}
}

func TestProvidersFromConfigRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{TranslationProviders: []string{"google"}}
	if _, err := ProvidersFromConfig(cfg, nil); err == nil {
		t.Fatalf("expected unknown provider to be rejected")
	}
}
