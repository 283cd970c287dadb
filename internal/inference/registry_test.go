package inference

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubPipeline struct {
	model string
}

func (p *stubPipeline) Run(ctx context.Context, text string, params Params) (string, error) {
	return p.model + ":" + text, nil
}

type fakeLoader struct {
	mu      sync.Mutex
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	failing map[string]int
	missing map[string]bool
	models  []string
}

func (l *fakeLoader) Load(ctx context.Context, spec Spec) (Pipeline, error) {
	l.calls.Add(1)
	l.mu.Lock()
	l.models = append(l.models, spec.Model)
	remaining := l.failing[spec.Model]
	if remaining > 0 {
		l.failing[spec.Model] = remaining - 1
	}
	l.mu.Unlock()

	if l.started != nil {
		select {
		case l.started <- struct{}{}:
		default:
		}
	}
	if l.release != nil {
		<-l.release
	}
	if l.missing[spec.Model] {
		return nil, fmt.Errorf("%w: %s", ErrModelUnavailable, spec.Model)
	}
	if remaining > 0 {
		return nil, errors.New("download interrupted")
	}
	return &stubPipeline{model: spec.Model}, nil
}

func (l *fakeLoader) loadedModels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.models...)
}

func TestRegistryInstantiatesOncePerKeyUnderConcurrency(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	registry := NewRegistry(loader, Catalog{}, zerolog.Nop())

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.Pipeline(context.Background(), TaskTranslation, "en", "fr"); err != nil {
				errs <- err
			}
		}()
	}

	<-loader.started
	time.Sleep(20 * time.Millisecond)
	close(loader.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected pipeline error: %v", err)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one instantiation, got %d", got)
	}
	if registry.Loaded() != 1 {
		t.Fatalf("expected one cached pipeline, got %d", registry.Loaded())
	}
}

func TestRegistryKeysAreIndependent(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	registry := NewRegistry(loader, Catalog{}, zerolog.Nop())

	for _, target := range []string{"fr", "de", "fr"} {
		if _, err := registry.Pipeline(context.Background(), TaskTranslation, "en", target); err != nil {
			t.Fatalf("pipeline en-%s: %v", target, err)
		}
	}
	if got := loader.calls.Load(); got != 2 {
		t.Fatalf("expected two instantiations, got %d", got)
	}
}

func TestRegistryUsesFallbackModel(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{failing: map[string]int{"Helsinki-NLP/opus-mt-en-ar": 1}}
	registry := NewRegistry(loader, Catalog{}, zerolog.Nop())

	pipeline, err := registry.Pipeline(context.Background(), TaskTranslation, "en", "ar")
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	out, _ := pipeline.Run(context.Background(), "hi", Params{})
	if out != "Helsinki-NLP/opus-mt-en-mul:hi" {
		t.Fatalf("expected fallback model output, got %q", out)
	}
}

func TestRegistryReportsUnavailableOnlyWhenEveryCandidateIsMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		loader      *fakeLoader
		unavailable bool
	}{
		{
			name: "every candidate missing",
			loader: &fakeLoader{missing: map[string]bool{
				"Helsinki-NLP/opus-mt-en-ar":  true,
				"Helsinki-NLP/opus-mt-en-mul": true,
			}},
			unavailable: true,
		},
		{
			name: "runtime failure on one candidate",
			loader: &fakeLoader{
				missing: map[string]bool{"Helsinki-NLP/opus-mt-en-ar": true},
				failing: map[string]int{"Helsinki-NLP/opus-mt-en-mul": 1},
			},
		},
		{
			name: "runtime failure on every candidate",
			loader: &fakeLoader{failing: map[string]int{
				"Helsinki-NLP/opus-mt-en-ar":  1,
				"Helsinki-NLP/opus-mt-en-mul": 1,
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := NewRegistry(tt.loader, Catalog{}, zerolog.Nop())
			_, err := registry.Pipeline(context.Background(), TaskTranslation, "en", "ar")
			if err == nil {
				t.Fatalf("expected load to fail")
			}
			if got := errors.Is(err, ErrModelUnavailable); got != tt.unavailable {
				t.Fatalf("errors.Is(err, ErrModelUnavailable) = %v, want %v (err: %v)", got, tt.unavailable, err)
			}
		})
	}
}

func TestRegistryDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{failing: map[string]int{
		DefaultSummarizationModel:  1,
		FallbackSummarizationModel: 1,
	}}
	registry := NewRegistry(loader, Catalog{}, zerolog.Nop())

	if _, err := registry.Pipeline(context.Background(), TaskSummarization, "", ""); err == nil {
		t.Fatalf("expected first load to fail")
	}
	if registry.Loaded() != 0 {
		t.Fatalf("failed load must not be cached")
	}

	if _, err := registry.Pipeline(context.Background(), TaskSummarization, "", ""); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	models := loader.loadedModels()
	if len(models) != 3 || models[2] != DefaultSummarizationModel {
		t.Fatalf("expected retry to start from the primary model, got %v", models)
	}
}

func TestRegistryCallerCancellationDoesNotAbortLoad(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	registry := NewRegistry(loader, Catalog{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := registry.Pipeline(ctx, TaskTranslation, "fr", "en")
		done <- err
	}()

	<-loader.started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}

	close(loader.release)
	if _, err := registry.Pipeline(context.Background(), TaskTranslation, "fr", "en"); err != nil {
		t.Fatalf("pipeline after release: %v", err)
	}
	if got := loader.calls.Load(); got != 1 {
		t.Fatalf("expected the detached load to be reused, got %d loads", got)
	}
}

func TestWarmupLogsFailuresAndContinues(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{failing: map[string]int{
		DefaultSummarizationModel:  1,
		FallbackSummarizationModel: 1,
	}}
	registry := NewRegistry(loader, Catalog{}, zerolog.Nop())

	<-registry.Warmup(context.Background(), []string{"en-fr", "bogus"})

	if registry.Loaded() != 1 {
		t.Fatalf("expected only the translation pair to load, got %d", registry.Loaded())
	}
}
