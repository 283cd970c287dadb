package inference

import "testing"

func TestCatalogCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		catalog Catalog
		key     Key
		want    []string
	}{
		{
			name: "to english",
			key:  Key{Task: TaskTranslation, Source: "ar", Target: "en"},
			want: []string{"Helsinki-NLP/opus-mt-ar-en", "Helsinki-NLP/opus-mt-mul-en"},
		},
		{
			name: "from english",
			key:  Key{Task: TaskTranslation, Source: "en", Target: "fr"},
			want: []string{"Helsinki-NLP/opus-mt-en-fr", "Helsinki-NLP/opus-mt-en-mul"},
		},
		{
			name: "no english side",
			key:  Key{Task: TaskTranslation, Source: "fr", Target: "de"},
			want: []string{"Helsinki-NLP/opus-mt-fr-de"},
		},
		{
			name:    "override",
			catalog: Catalog{TranslationOverride: "facebook/m2m100_418M"},
			key:     Key{Task: TaskTranslation, Source: "fr", Target: "de"},
			want:    []string{"facebook/m2m100_418M"},
		},
		{
			name: "summarization",
			key:  Key{Task: TaskSummarization},
			want: []string{DefaultSummarizationModel, FallbackSummarizationModel},
		},
		{
			name:    "summarization override equal to fallback",
			catalog: Catalog{SummarizationOverride: FallbackSummarizationModel},
			key:     Key{Task: TaskSummarization},
			want:    []string{FallbackSummarizationModel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.catalog.Candidates(tt.key)
			if len(got) != len(tt.want) {
				t.Fatalf("unexpected candidates: %v", got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("candidate %d: got %q want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
