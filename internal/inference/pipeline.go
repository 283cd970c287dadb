package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BackendPipeline = "pipeline"
	BackendOpenAI   = "openai"
)

// ErrModelUnavailable reports that no model exists for a pipeline, as opposed to the
// runtime being unreachable or failing.
var ErrModelUnavailable = errors.New("model unavailable")

// Task names the kind of model a pipeline wraps.
type Task string

const (
	TaskTranslation   Task = "translation"
	TaskSummarization Task = "summarization"
)

// Params carries per-call generation settings. Translation uses the language pair,
// summarization uses the token bounds.
type Params struct {
	SourceLang string
	TargetLang string
	MaxTokens  int
	MinTokens  int
}

// Pipeline is a loaded model ready to run inference.
type Pipeline interface {
	Run(ctx context.Context, text string, params Params) (string, error)
}

// Spec identifies the model a Loader should instantiate.
type Spec struct {
	Task       Task
	Model      string
	SourceLang string
	TargetLang string
}

// Loader instantiates pipelines. Loads are expensive and may download weights.
type Loader interface {
	Load(ctx context.Context, spec Spec) (Pipeline, error)
}

// Key is the cache identity of a pipeline.
type Key struct {
	Task   Task
	Source string
	Target string
}

func (k Key) String() string {
	if k.Source == "" && k.Target == "" {
		return string(k.Task)
	}
	return fmt.Sprintf("%s:%s-%s", k.Task, k.Source, k.Target)
}

func newKey(task Task, source, target string) Key {
	return Key{
		Task:   Task(strings.ToLower(strings.TrimSpace(string(task)))),
		Source: strings.ToLower(strings.TrimSpace(source)),
		Target: strings.ToLower(strings.TrimSpace(target)),
	}
}

// NewLoader builds the Loader for the named backend.
func NewLoader(backend, endpoint, apiKey string, timeout time.Duration) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendPipeline, "":
		return NewHTTPLoader(endpoint, apiKey, timeout), nil
	case BackendOpenAI:
		return NewOpenAILoader(endpoint, apiKey, timeout), nil
	default:
		return nil, fmt.Errorf("unknown inference backend %q", backend)
	}
}
