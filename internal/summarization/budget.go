package summarization

// Budget converts a character budget into generation token bounds. The chars-per-token
// ratio is an approximation that depends on the model's tokenizer.
type Budget struct {
	CharsPerToken int
	HardMax       int
	Floor         int
}

// DefaultBudget matches distilbart-cnn with roughly three characters per token.
var DefaultBudget = Budget{CharsPerToken: 3, HardMax: 80, Floor: 20}

// Tokens returns the max and min token counts for a summary of at most maxChars characters.
// Both are at least Floor, max never exceeds HardMax, and min never exceeds max.
func (b Budget) Tokens(maxChars int) (maxTokens, minTokens int) {
	b = b.withDefaults()

	maxTokens = maxChars / b.CharsPerToken
	if maxTokens > b.HardMax {
		maxTokens = b.HardMax
	}
	if maxTokens < b.Floor {
		maxTokens = b.Floor
	}

	minTokens = maxTokens / 3
	if minTokens < b.Floor {
		minTokens = b.Floor
	}
	if minTokens > maxTokens {
		minTokens = maxTokens
	}
	return maxTokens, minTokens
}

func (b Budget) withDefaults() Budget {
	if b.CharsPerToken < 1 {
		b.CharsPerToken = DefaultBudget.CharsPerToken
	}
	if b.Floor < 1 {
		b.Floor = DefaultBudget.Floor
	}
	if b.HardMax < 1 {
		b.HardMax = DefaultBudget.HardMax
	}
	if b.HardMax < b.Floor {
		b.HardMax = b.Floor
	}
	return b
}
