package language

import "testing"

func TestSupportedCodesAreSorted(t *testing.T) {
	t.Parallel()

	codes := SupportedCodes()
	want := []string{"ar", "de", "en", "es", "fr", "it", "pt"}
	if len(codes) != len(want) {
		t.Fatalf("unexpected codes: %v", codes)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("unexpected code at %d: got %q want %q", i, codes[i], want[i])
		}
	}
}

func TestNameFallsBackToCode(t *testing.T) {
	t.Parallel()

	if got := Name("FR"); got != "French" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := Name("sw"); got != "sw" {
		t.Fatalf("expected unknown code to echo back, got %q", got)
	}
}

func TestDetectIgnoresShortSamples(t *testing.T) {
	t.Parallel()

	if got := Detect("  ok "); got != "" {
		t.Fatalf("expected no detection for short sample, got %q", got)
	}
}

func TestDetectFrench(t *testing.T) {
	t.Parallel()

	if got := Detect("Le téléphone sonne et la mère se réveille, inquiète pour sa fille disparue."); got != "fr" {
		t.Fatalf("unexpected detected language: %q", got)
	}
}
