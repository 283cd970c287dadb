package summarization

import "testing"

func TestBudgetTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		budget   Budget
		maxChars int
		wantMax  int
		wantMin  int
	}{
		{name: "default request", budget: DefaultBudget, maxChars: 150, wantMax: 50, wantMin: 20},
		{name: "clamped to hard max", budget: DefaultBudget, maxChars: 1000, wantMax: 80, wantMin: 26},
		{name: "raised to floor", budget: DefaultBudget, maxChars: 5, wantMax: 20, wantMin: 20},
		{name: "tuned ratio", budget: Budget{CharsPerToken: 4, HardMax: 142, Floor: 30}, maxChars: 400, wantMax: 100, wantMin: 33},
		{name: "zero value uses defaults", budget: Budget{}, maxChars: 90, wantMax: 30, wantMin: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotMax, gotMin := tt.budget.Tokens(tt.maxChars)
			if gotMax != tt.wantMax || gotMin != tt.wantMin {
				t.Fatalf("Tokens(%d) = (%d, %d), want (%d, %d)", tt.maxChars, gotMax, gotMin, tt.wantMax, tt.wantMin)
			}
			if gotMin > gotMax {
				t.Fatalf("min tokens %d exceeds max tokens %d", gotMin, gotMax)
			}
		})
	}
}
