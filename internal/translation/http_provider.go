package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AycMouna/scholara/internal/language"
)

// Shape selects how a remote provider's request is built.
type Shape string

const (
	// ShapeMicrosoft is the Microsoft Translator v3 API, served directly by Azure or through RapidAPI.
	ShapeMicrosoft Shape = "microsoft"
	// ShapeLibre is the LibreTranslate API.
	ShapeLibre Shape = "libretranslate"
)

const defaultProviderTimeout = 5 * time.Second

// Descriptor describes one remote translation provider. Providers differ only in data,
// so adding one needs no new control flow.
type Descriptor struct {
	Name      string
	Method    string
	Shape     Shape
	Endpoints []string
	Headers   map[string]string
	// Credential must be non-empty for the provider to be considered configured.
	Credential string
	// APIKey is sent in the request body by ShapeLibre.
	APIKey  string
	Timeout time.Duration
}

// HTTPProvider calls a remote translation API described by a Descriptor.
type HTTPProvider struct {
	desc   Descriptor
	client *http.Client
}

func NewHTTPProvider(desc Descriptor) *HTTPProvider {
	if desc.Timeout <= 0 {
		desc.Timeout = defaultProviderTimeout
	}
	if desc.Method == "" {
		desc.Method = desc.Name
	}
	return &HTTPProvider{
		desc:   desc,
		client: &http.Client{Timeout: desc.Timeout},
	}
}

func (p *HTTPProvider) Name() string {
	return p.desc.Name
}

// Translate tries each endpoint in order. A terminal failure stops the remaining endpoints.
func (p *HTTPProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(p.desc.Credential) == "" {
		return nil, notConfigured(p.desc.Name, "credential")
	}
	if len(p.desc.Endpoints) == 0 {
		return nil, notConfigured(p.desc.Name, "endpoint")
	}

	var lastErr *Error
	for _, endpoint := range p.desc.Endpoints {
		result, err := p.call(ctx, endpoint, req)
		if err == nil {
			return result, nil
		}
		lastErr = AsError(p.desc.Name, err)
		if lastErr.Kind.Terminal() || ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (p *HTTPProvider) call(ctx context.Context, endpoint string, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.desc.Timeout)
	defer cancel()

	httpReq, err := p.buildRequest(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(p.desc.Name, resp.StatusCode, string(respBody))
	}

	normalized, err := Normalize(respBody)
	if err != nil {
		return nil, &Error{
			Kind:     KindMalformed,
			Provider: p.desc.Name,
			Status:   resp.StatusCode,
			Message:  "unparseable translation response",
			Err:      err,
		}
	}

	source := req.SourceLang
	if source == language.Auto && normalized.DetectedLanguage != "" {
		source = language.NormalizeCode(normalized.DetectedLanguage)
	}
	return &Result{
		TranslatedText:   normalized.Text,
		SourceLang:       source,
		TargetLang:       req.TargetLang,
		OriginalText:     req.Text,
		Method:           p.desc.Method,
		Provider:         p.desc.Name,
		DetectedLanguage: normalized.DetectedLanguage,
	}, nil
}

func (p *HTTPProvider) buildRequest(ctx context.Context, endpoint string, req Request) (*http.Request, error) {
	var (
		target string
		body   []byte
		err    error
	)

	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	switch p.desc.Shape {
	case ShapeLibre:
		source := req.SourceLang
		if source == "" {
			source = language.Auto
		}
		target = base + "/translate"
		body, err = json.Marshal(libreRequest{
			Q:      req.Text,
			Source: source,
			Target: req.TargetLang,
			Format: "text",
			APIKey: p.desc.APIKey,
		})
	default:
		query := url.Values{}
		query.Set("api-version", "3.0")
		query.Set("to", req.TargetLang)
		if req.SourceLang != "" && req.SourceLang != language.Auto {
			query.Set("from", req.SourceLang)
		}
		target = base + "/translate?" + query.Encode()
		body, err = json.Marshal([]microsoftRequestItem{{Text: req.Text}})
	}
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for name, value := range p.desc.Headers {
		if value != "" {
			httpReq.Header.Set(name, value)
		}
	}
	return httpReq, nil
}

type microsoftRequestItem struct {
	Text string `json:"Text"`
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}
