package translation

import (
	"fmt"
	"strings"

	"github.com/AycMouna/scholara/internal/config"
)

const (
	ProviderRapidAPI       = "rapidapi"
	ProviderAzure          = "azure"
	ProviderLibreTranslate = "libretranslate"
	ProviderLocal          = localProviderName
	ProviderPlaceholder    = MethodPlaceholder
)

// ProvidersFromConfig builds the provider chain in TRANSLATION_PROVIDERS order.
// pipelines may be nil, in which case the local provider reports itself unconfigured.
func ProvidersFromConfig(cfg *config.Config, pipelines PipelineSource) ([]Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	order := cfg.ProviderOrder()
	providers := make([]Provider, 0, len(order))
	for _, name := range order {
		switch name {
		case ProviderRapidAPI:
			providers = append(providers, NewHTTPProvider(Descriptor{
				Name:      ProviderRapidAPI,
				Method:    "rapidapi_microsoft",
				Shape:     ShapeMicrosoft,
				Endpoints: cfg.RapidAPIEndpointList(),
				Headers: map[string]string{
					"X-RapidAPI-Key":  cfg.RapidAPIKey,
					"X-RapidAPI-Host": strings.TrimSpace(cfg.RapidAPIHost),
				},
				Credential: cfg.RapidAPIKey,
				Timeout:    cfg.ProviderTimeout,
			}))
		case ProviderAzure:
			providers = append(providers, NewHTTPProvider(Descriptor{
				Name:      ProviderAzure,
				Method:    "azure_translator",
				Shape:     ShapeMicrosoft,
				Endpoints: nonEmpty(cfg.AzureTranslatorEndpoint),
				Headers: map[string]string{
					"Ocp-Apim-Subscription-Key":    cfg.AzureTranslatorKey,
					"Ocp-Apim-Subscription-Region": strings.TrimSpace(cfg.AzureTranslatorRegion),
				},
				Credential: cfg.AzureTranslatorKey,
				Timeout:    cfg.ProviderTimeout,
			}))
		case ProviderLibreTranslate:
			providers = append(providers, NewHTTPProvider(Descriptor{
				Name:       ProviderLibreTranslate,
				Method:     ProviderLibreTranslate,
				Shape:      ShapeLibre,
				Endpoints:  nonEmpty(cfg.LibreTranslateURL),
				Credential: cfg.LibreTranslateURL,
				APIKey:     cfg.LibreTranslateAPIKey,
				Timeout:    cfg.ProviderTimeout,
			}))
		case ProviderLocal:
			providers = append(providers, NewLocalProvider(pipelines, cfg.DefaultSourceLang, cfg.PivotLanguage))
		case ProviderPlaceholder:
			providers = append(providers, NewPlaceholderProvider())
		default:
			return nil, fmt.Errorf("unknown translation provider %q (available: %s)", name, strings.Join(KnownProviders(), ", "))
		}
	}
	return providers, nil
}

// KnownProviders lists the provider names accepted in TRANSLATION_PROVIDERS.
func KnownProviders() []string {
	return []string{ProviderAzure, ProviderLibreTranslate, ProviderLocal, ProviderPlaceholder, ProviderRapidAPI}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
