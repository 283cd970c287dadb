package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is where the pipeline runtime listens by default.
const DefaultEndpoint = "http://127.0.0.1:8845"

// HTTPLoader loads pipelines from a model-serving runtime over HTTP.
//
//	POST {endpoint}/v1/pipelines           {"task","model","source_lang","target_lang"} -> {"id"}
//	POST {endpoint}/v1/pipelines/{id}/run  {"inputs","parameters"}                      -> runtime output
type HTTPLoader struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPLoader(endpoint, apiKey string, timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPLoader{
		baseURL: normalizeEndpoint(endpoint),
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: timeout},
	}
}

func (l *HTTPLoader) Load(ctx context.Context, spec Spec) (Pipeline, error) {
	var created struct {
		ID string `json:"id"`
	}
	err := l.post(ctx, "/v1/pipelines", loadRequest{
		Task:       string(spec.Task),
		Model:      spec.Model,
		SourceLang: spec.SourceLang,
		TargetLang: spec.TargetLang,
	}, &created)
	if err != nil {
		var statusErr *runtimeStatusError
		if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		return nil, err
	}
	if strings.TrimSpace(created.ID) == "" {
		return nil, fmt.Errorf("pipeline runtime returned no id for %s", spec.Model)
	}
	return &httpPipeline{loader: l, id: created.ID, task: spec.Task}, nil
}

type loadRequest struct {
	Task       string `json:"task"`
	Model      string `json:"model"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang,omitempty"`
}

type runRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters runParameters `json:"parameters"`
}

type runParameters struct {
	MaxLength int  `json:"max_length,omitempty"`
	MinLength int  `json:"min_length,omitempty"`
	DoSample  bool `json:"do_sample"`
}

type httpPipeline struct {
	loader *HTTPLoader
	id     string
	task   Task
}

func (p *httpPipeline) Run(ctx context.Context, text string, params Params) (string, error) {
	var raw json.RawMessage
	err := p.loader.post(ctx, "/v1/pipelines/"+url.PathEscape(p.id)+"/run", runRequest{
		Inputs: text,
		Parameters: runParameters{
			MaxLength: params.MaxTokens,
			MinLength: params.MinTokens,
		},
	}, &raw)
	if err != nil {
		return "", err
	}
	return DecodeOutput(raw, p.task)
}

func (l *HTTPLoader) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal pipeline request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build pipeline request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if l.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("send pipeline request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read pipeline response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errPayload struct {
			Error string `json:"error"`
		}
		if unmarshalErr := json.Unmarshal(respBody, &errPayload); unmarshalErr == nil {
			if msg := strings.TrimSpace(errPayload.Error); msg != "" {
				return &runtimeStatusError{status: resp.StatusCode, message: msg}
			}
		}
		return &runtimeStatusError{status: resp.StatusCode, message: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode pipeline response: %w", err)
	}
	return nil
}

type runtimeStatusError struct {
	status  int
	message string
}

func (e *runtimeStatusError) Error() string {
	return fmt.Sprintf("pipeline runtime status %d: %s", e.status, e.message)
}

// DecodeOutput extracts generated text from the runtime's output shapes:
// [{"translation_text"}], {"translation_text"}, [{"summary_text"}] and {"summary_text"}.
func DecodeOutput(raw []byte, task Task) (string, error) {
	field := "translation_text"
	if task == TaskSummarization {
		field = "summary_text"
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", fmt.Errorf("pipeline output is empty")
		}
		return outputField(list[0], field)
	}

	var object map[string]any
	if err := json.Unmarshal(raw, &object); err != nil {
		return "", fmt.Errorf("decode pipeline output: %w", err)
	}
	return outputField(object, field)
}

func outputField(item map[string]any, field string) (string, error) {
	for _, key := range []string{field, "generated_text"} {
		if value, ok := item[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}
	return "", fmt.Errorf("pipeline output missing %s", field)
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultEndpoint
	}
	parsed.Path = strings.TrimSuffix(strings.TrimRight(parsed.Path, "/"), "/v1")
	return parsed.String()
}
