package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Registry caches loaded pipelines for the process lifetime. Each key is
// instantiated at most once; concurrent first callers share one load.
type Registry struct {
	loader  Loader
	catalog Catalog
	logger  zerolog.Logger

	mu        sync.RWMutex
	pipelines map[Key]Pipeline
	loads     singleflight.Group
}

func NewRegistry(loader Loader, catalog Catalog, logger zerolog.Logger) *Registry {
	return &Registry{
		loader:    loader,
		catalog:   catalog,
		logger:    logger,
		pipelines: make(map[Key]Pipeline),
	}
}

// Pipeline returns the cached pipeline for (task, source, target), loading it on first use.
// A failed load is not cached; the next call retries from scratch.
func (r *Registry) Pipeline(ctx context.Context, task Task, source, target string) (Pipeline, error) {
	if r == nil || r.loader == nil {
		return nil, fmt.Errorf("inference registry is not configured")
	}

	key := newKey(task, source, target)
	if pipeline, ok := r.cached(key); ok {
		return pipeline, nil
	}

	// Loads ignore caller cancellation; each caller still stops waiting on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	results := r.loads.DoChan(key.String(), func() (any, error) {
		if pipeline, ok := r.cached(key); ok {
			return pipeline, nil
		}
		pipeline, err := r.load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.pipelines[key] = pipeline
		r.mu.Unlock()
		return pipeline, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(Pipeline), nil
	}
}

// Loaded returns the number of cached pipelines.
func (r *Registry) Loaded() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pipelines)
}

// Warmup loads the summarization pipeline and the given translation pairs in the
// background. Failures are logged and never stop the caller.
func (r *Registry) Warmup(ctx context.Context, pairs []string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		keys := []Key{newKey(TaskSummarization, "", "")}
		for _, pair := range pairs {
			source, target, ok := strings.Cut(strings.TrimSpace(pair), "-")
			if !ok || source == "" || target == "" {
				r.logger.Warn().Str("pair", pair).Msg("Skipping malformed warm-up pair")
				continue
			}
			keys = append(keys, newKey(TaskTranslation, source, target))
		}

		for _, key := range keys {
			if ctx.Err() != nil {
				return
			}
			if _, err := r.Pipeline(ctx, key.Task, key.Source, key.Target); err != nil {
				r.logger.Warn().Err(err).Str("pipeline", key.String()).Msg("Pipeline warm-up failed")
				continue
			}
			r.logger.Info().Str("pipeline", key.String()).Msg("Pipeline warmed up")
		}
	}()
	return done
}

func (r *Registry) cached(key Key) (Pipeline, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pipeline, ok := r.pipelines[key]
	return pipeline, ok
}

func (r *Registry) load(ctx context.Context, key Key) (Pipeline, error) {
	candidates := r.catalog.Candidates(key)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no model is known for %s", ErrModelUnavailable, key)
	}

	var errs, runtimeErrs []error
	for _, model := range candidates {
		pipeline, err := r.loader.Load(ctx, Spec{
			Task:       key.Task,
			Model:      model,
			SourceLang: key.Source,
			TargetLang: key.Target,
		})
		if err == nil {
			r.logger.Debug().Str("pipeline", key.String()).Str("model", model).Msg("Pipeline loaded")
			return pipeline, nil
		}
		r.logger.Warn().Err(err).Str("pipeline", key.String()).Str("model", model).Msg("Pipeline load failed")
		wrapped := fmt.Errorf("load %s: %w", model, err)
		errs = append(errs, wrapped)
		if !errors.Is(err, ErrModelUnavailable) {
			runtimeErrs = append(runtimeErrs, wrapped)
		}
	}

	// Only a pair where every candidate is missing counts as unavailable.
	if len(runtimeErrs) > 0 {
		return nil, fmt.Errorf("load %s pipeline: %w", key, errors.Join(runtimeErrs...))
	}
	return nil, fmt.Errorf("load %s pipeline: %w", key, errors.Join(errs...))
}
