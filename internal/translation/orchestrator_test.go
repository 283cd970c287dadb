package translation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

type recordingProvider struct {
	name   string
	calls  atomic.Int32
	result *Result
	err    error
	seen   []Request
}

func (p *recordingProvider) Name() string { return p.name }

func (p *recordingProvider) Translate(ctx context.Context, req Request) (*Result, error) {
	p.calls.Add(1)
	p.seen = append(p.seen, req)
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		copied := *p.result
		return &copied, nil
	}
	return &Result{TranslatedText: "ok", Method: p.name, SourceLang: req.SourceLang, TargetLang: req.TargetLang, OriginalText: req.Text}, nil
}

func statusServer(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func remote(name string, endpoints ...string) *HTTPProvider {
	return NewHTTPProvider(Descriptor{
		Name:       name,
		Method:     name + "_method",
		Shape:      ShapeMicrosoft,
		Endpoints:  endpoints,
		Credential: "key",
		Timeout:    time.Second,
	})
}

func TestTranslateRejectsBlankTextBeforeProviders(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{name: "first"}
	orchestrator := NewOrchestrator([]Provider{provider}, zerolog.Nop())

	result, err := orchestrator.Translate(context.Background(), Request{Text: "   \n", TargetLang: "fr"})
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindValidation || translationErr.Message != "Text is required" {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls.Load() != 0 {
		t.Fatalf("provider must not be contacted for blank text")
	}
}

func TestTranslateStopsOnUnauthorized(t *testing.T) {
	t.Parallel()

	server := statusServer(t, http.StatusUnauthorized, `{"message":"Invalid API key"}`, nil)
	next := &recordingProvider{name: "next"}
	orchestrator := NewOrchestrator([]Provider{remote("rapidapi", server.URL), next}, zerolog.Nop())

	result, err := orchestrator.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
	if translationErr.Message != "bad credentials" || translationErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected auth error: %+v", translationErr)
	}
	if next.calls.Load() != 0 {
		t.Fatalf("no provider may be tried after an auth failure")
	}
}

func TestTranslateDistinguishesNotSubscribed(t *testing.T) {
	t.Parallel()

	server := statusServer(t, http.StatusForbidden, `{"message":"You are not subscribed to this API."}`, nil)
	orchestrator := NewOrchestrator([]Provider{remote("rapidapi", server.URL)}, zerolog.Nop())

	_, err := orchestrator.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindAuth || !strings.Contains(translationErr.Message, "not subscribed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranslateFallsThroughBadRequest(t *testing.T) {
	t.Parallel()

	first := statusServer(t, http.StatusBadRequest, `{"error":"bad"}`, nil)
	second := statusServer(t, http.StatusOK, `{"translations":[{"text":"Bonjour"}]}`, nil)
	orchestrator := NewOrchestrator([]Provider{remote("first", first.URL), remote("second", second.URL)}, zerolog.Nop())

	result, err := orchestrator.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.TranslatedText != "Bonjour" || result.Method != "second_method" || result.Provider != "second" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTranslateStopsOnUpstreamOutage(t *testing.T) {
	t.Parallel()

	var spareHits atomic.Int32
	down := statusServer(t, http.StatusBadGateway, `bad gateway`, nil)
	spare := statusServer(t, http.StatusOK, `{"translations":[{"text":"Bonjour"}]}`, &spareHits)
	next := &recordingProvider{name: "next"}
	orchestrator := NewOrchestrator([]Provider{remote("rapidapi", down.URL, spare.URL), next}, zerolog.Nop())

	_, err := orchestrator.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindUnavailable {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	if spareHits.Load() != 0 || next.calls.Load() != 0 {
		t.Fatalf("outage must stop the remaining endpoints and providers")
	}
}

func TestTranslateTruncatesLongText(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{name: "first"}
	orchestrator := NewOrchestrator([]Provider{provider}, zerolog.Nop())

	long := strings.Repeat("é", MaxTextLength+500)
	if _, err := orchestrator.Translate(context.Background(), Request{Text: long, TargetLang: "fr"}); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if len(provider.seen) != 1 {
		t.Fatalf("expected one provider call, got %d", len(provider.seen))
	}
	if got := utf8.RuneCountInString(provider.seen[0].Text); got != MaxTextLength {
		t.Fatalf("expected %d characters sent, got %d", MaxTextLength, got)
	}
}

func TestTranslateMethodIsStable(t *testing.T) {
	t.Parallel()

	failing := &recordingProvider{name: "first", err: &Error{Kind: KindMalformed, Message: "unparseable translation response"}}
	working := &recordingProvider{name: "second"}
	orchestrator := NewOrchestrator([]Provider{failing, working}, zerolog.Nop())

	req := Request{Text: "Hello", TargetLang: "fr", SourceLang: "en"}
	first, err := orchestrator.Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("first translate: %v", err)
	}
	second, err := orchestrator.Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("second translate: %v", err)
	}
	if first.Method != second.Method || first.Method != "second" {
		t.Fatalf("method changed between identical calls: %q vs %q", first.Method, second.Method)
	}
}

func TestTranslateReturnsPlaceholderWhenNothingConfigured(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator([]Provider{
		NewHTTPProvider(Descriptor{Name: "rapidapi", Endpoints: []string{"https://example.invalid"}}),
		NewLocalProvider(nil, "en", "en"),
	}, zerolog.Nop())

	result, err := orchestrator.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.Method != MethodPlaceholder || result.TranslatedText != "[FR] Hello" {
		t.Fatalf("unexpected placeholder result: %+v", result)
	}
}

func TestTranslateAggregatesTransientFailures(t *testing.T) {
	t.Parallel()

	orchestrator := NewOrchestrator([]Provider{
		&recordingProvider{name: "unset", err: notConfigured("unset", "credential")},
		&recordingProvider{name: "slow", err: context.DeadlineExceeded},
		&recordingProvider{name: "broken", err: &Error{Kind: KindMalformed, Message: "unparseable translation response"}},
	}, zerolog.Nop())

	result, err := orchestrator.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindMalformed {
		t.Fatalf("expected the last real failure kind, got %v", err)
	}
	for _, name := range []string{"unset", "slow", "broken"} {
		if !strings.Contains(translationErr.Message, name) {
			t.Fatalf("aggregated message %q is missing %s", translationErr.Message, name)
		}
	}
}

func TestTranslatePassesThroughSameLanguage(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{name: "first"}
	orchestrator := NewOrchestrator([]Provider{provider}, zerolog.Nop())

	result, err := orchestrator.Translate(context.Background(), Request{Text: "Bonjour", SourceLang: "FR", TargetLang: "fr-CA"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.Method != MethodPassthrough || result.TranslatedText != "Bonjour" || provider.calls.Load() != 0 {
		t.Fatalf("unexpected passthrough: %+v", result)
	}
}
