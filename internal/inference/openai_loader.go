package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AycMouna/scholara/internal/language"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const translationTemperature = 0.2

// OpenAILoader serves pipelines from an OpenAI-compatible chat completions endpoint
// (vLLM, llama.cpp server). A load checks that the model is served.
type OpenAILoader struct {
	client openai.Client
}

func NewOpenAILoader(endpoint, apiKey string, timeout time.Duration) *OpenAILoader {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = "local"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAILoader{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(normalizeEndpoint(endpoint)+"/v1/"),
			option.WithRequestTimeout(timeout),
			option.WithMaxRetries(0),
		),
	}
}

func (l *OpenAILoader) Load(ctx context.Context, spec Spec) (Pipeline, error) {
	if _, err := l.client.Models.Get(ctx, spec.Model); err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: model %s is not served: %w", ErrModelUnavailable, spec.Model, err)
		}
		return nil, fmt.Errorf("query model %s: %w", spec.Model, err)
	}
	return &chatPipeline{client: l.client, model: spec.Model, task: spec.Task}, nil
}

type chatPipeline struct {
	client openai.Client
	model  string
	task   Task
}

func (p *chatPipeline) Run(ctx context.Context, text string, params Params) (string, error) {
	request := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(translationTemperature),
	}
	if p.task == TaskSummarization {
		request.Messages = []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildSummaryPrompt(text, params)),
		}
		if params.MaxTokens > 0 {
			request.MaxCompletionTokens = openai.Int(int64(params.MaxTokens))
		}
	} else {
		request.Messages = []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildTranslationPrompt(text, params.TargetLang)),
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion choices are missing")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", fmt.Errorf("chat completion choice message content is missing")
	}
	return output, nil
}

func buildTranslationPrompt(text, targetLang string) string {
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", language.Name(targetLang), text)
}

func buildSummaryPrompt(text string, params Params) string {
	return fmt.Sprintf(
		"Summarize the following text in one short paragraph of at least %d and at most %d tokens. Output only the summary.\n\n%s",
		params.MinTokens, params.MaxTokens, text,
	)
}
