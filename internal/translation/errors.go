package translation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a translation failure.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindQuota         Kind = "quota"
	KindUnavailable   Kind = "upstream_unavailable"
	KindTimeout       Kind = "timeout"
	KindMalformed     Kind = "malformed_response"
	KindNotConfigured Kind = "not_configured"
	KindRejected      Kind = "provider_rejected"
)

// Terminal reports whether a failure of this kind stops the provider chain.
func (k Kind) Terminal() bool {
	switch k {
	case KindAuth, KindQuota, KindUnavailable:
		return true
	default:
		return false
	}
}

// Error is the structured failure returned by providers and the orchestrator.
type Error struct {
	Kind       Kind
	Provider   string
	Status     int
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Details returns the wrapped cause, if any.
func (e *Error) Details() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// AsError extracts an *Error from err, classifying unknown errors on behalf of provider.
func AsError(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var translationErr *Error
	if errors.As(err, &translationErr) {
		if translationErr.Provider == "" {
			translationErr.Provider = provider
		}
		return translationErr
	}
	if isTimeout(err) {
		return &Error{
			Kind:       KindTimeout,
			Provider:   provider,
			Message:    "request timed out",
			Suggestion: "Retry the request in a moment.",
			Err:        err,
		}
	}
	return &Error{Kind: KindRejected, Provider: provider, Message: "request failed", Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyStatus maps a non-200 provider response to an Error.
func classifyStatus(provider string, status int, body string) *Error {
	err := &Error{Provider: provider, Status: status}
	if body = strings.TrimSpace(body); body != "" {
		err.Err = errors.New(truncateRunes(body, 300))
	}

	switch status {
	case http.StatusUnauthorized:
		err.Kind = KindAuth
		err.Message = "bad credentials"
		err.Suggestion = "Check the provider API key."
	case http.StatusForbidden:
		err.Kind = KindAuth
		err.Message = "not subscribed to the translation API"
		err.Suggestion = "Subscribe to the API plan for this key or configure another provider."
	case http.StatusTooManyRequests:
		err.Kind = KindQuota
		err.Message = "quota exceeded"
		err.Suggestion = "Wait for the quota to reset or configure another provider."
	case http.StatusBadGateway:
		err.Kind = KindUnavailable
		err.Message = "upstream translation service is unavailable"
		err.Suggestion = "Try again later or use an alternate provider."
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		err.Kind = KindTimeout
		err.Message = "upstream translation service timed out"
		err.Suggestion = "Retry the request in a moment."
	default:
		err.Kind = KindRejected
		err.Message = fmt.Sprintf("unexpected status %d", status)
	}
	return err
}

func notConfigured(provider, what string) *Error {
	return &Error{
		Kind:     KindNotConfigured,
		Provider: provider,
		Message:  what + " is not configured",
	}
}
