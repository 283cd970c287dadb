package translation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProviderBuildsMicrosoftRequest(t *testing.T) {
	t.Parallel()

	var (
		gotPath  string
		gotQuery map[string]string
		gotKey   string
		gotHost  string
		gotBody  []microsoftRequestItem
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"api-version": r.URL.Query().Get("api-version"),
			"to":          r.URL.Query().Get("to"),
			"from":        r.URL.Query().Get("from"),
		}
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[{"detectedLanguage":{"language":"en","score":1},"translations":[{"text":"Bonjour","to":"fr"}]}]`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Descriptor{
		Name:       "rapidapi",
		Method:     "rapidapi_microsoft",
		Shape:      ShapeMicrosoft,
		Endpoints:  []string{server.URL + "/"},
		Headers:    map[string]string{"X-RapidAPI-Key": "secret", "X-RapidAPI-Host": "translator.example"},
		Credential: "secret",
	})

	result, err := provider.Translate(context.Background(), Request{Text: "Hello", SourceLang: "auto", TargetLang: "fr"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if gotPath != "/translate" || gotQuery["api-version"] != "3.0" || gotQuery["to"] != "fr" || gotQuery["from"] != "" {
		t.Fatalf("unexpected request: path=%s query=%v", gotPath, gotQuery)
	}
	if gotKey != "secret" || gotHost != "translator.example" {
		t.Fatalf("unexpected auth headers: key=%q host=%q", gotKey, gotHost)
	}
	if len(gotBody) != 1 || gotBody[0].Text != "Hello" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
	if result.TranslatedText != "Bonjour" || result.SourceLang != "en" || result.Method != "rapidapi_microsoft" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPProviderBuildsLibreRequest(t *testing.T) {
	t.Parallel()

	var got libreRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"translatedText":"Hola"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(Descriptor{
		Name:       "libretranslate",
		Shape:      ShapeLibre,
		Endpoints:  []string{server.URL},
		Credential: server.URL,
		APIKey:     "lt-key",
	})

	result, err := provider.Translate(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "es"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got.Q != "Hello" || got.Source != "en" || got.Target != "es" || got.APIKey != "lt-key" || got.Format != "text" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if result.TranslatedText != "Hola" || result.Method != "libretranslate" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPProviderTriesNextEndpointOnTransientFailure(t *testing.T) {
	t.Parallel()

	broken := statusServer(t, http.StatusOK, `{"unexpected":true}`, nil)
	working := statusServer(t, http.StatusOK, `[{"translations":[{"text":"Bonjour"}]}]`, nil)
	provider := remote("rapidapi", broken.URL, working.URL)

	result, err := provider.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if result.TranslatedText != "Bonjour" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPProviderClassifiesMalformedBody(t *testing.T) {
	t.Parallel()

	server := statusServer(t, http.StatusOK, `<html>oops</html>`, nil)
	_, err := remote("azure", server.URL).Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})

	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindMalformed {
		t.Fatalf("expected malformed response, got %v", err)
	}
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("expected wrapped ErrNormalization, got %v", err)
	}
}

func TestHTTPProviderClassifiesTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	provider := NewHTTPProvider(Descriptor{
		Name:       "azure",
		Shape:      ShapeMicrosoft,
		Endpoints:  []string{server.URL},
		Credential: "key",
		Timeout:    50 * time.Millisecond,
	})

	_, err := provider.Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})
	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestHTTPProviderQuotaIsTerminal(t *testing.T) {
	t.Parallel()

	server := statusServer(t, http.StatusTooManyRequests, `{"message":"quota"}`, nil)
	_, err := remote("rapidapi", server.URL).Translate(context.Background(), Request{Text: "Hello", TargetLang: "fr"})

	var translationErr *Error
	if !errors.As(err, &translationErr) || translationErr.Kind != KindQuota || !translationErr.Kind.Terminal() {
		t.Fatalf("expected terminal quota error, got %v", err)
	}
}
