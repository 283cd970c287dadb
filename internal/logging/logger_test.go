package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewParsesLevel(t *testing.T) {
	t.Parallel()

	logger, err := New("production", " WARN ", "ai-service")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("unexpected level: got %s want warn", logger.GetLevel())
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("local", "loud", "ai-service"); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}
