package translation

import "testing"

func TestFixPronounReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		original   string
		translated string
		want       string
	}{
		{
			name:       "mother and her daughter",
			original:   "La mère appelle sa fille.",
			translated: "The mother calls his daughter.",
			want:       "The mother calls her daughter.",
		},
		{
			name:       "news of daughter",
			original:   "Elle attend des nouvelles.",
			translated: "The mother waits for news of his daughter.",
			want:       "The mother waits for news of her daughter.",
		},
		{
			name:       "she fears",
			original:   "Il pleut.",
			translated: "She fears it had happened to him.",
			want:       "She fears it had happened to her.",
		},
		{
			name:       "no feminine context",
			original:   "Le père a appelé son fils.",
			translated: "The man fears something happened to him.",
			want:       "The man fears something happened to him.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fixPronounReferences(tt.translated, tt.original); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}
