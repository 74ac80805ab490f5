package service

import (
	"strings"

	"github.com/deckwise/analyzer-be/types"
)

// TypeClassifier picks a document type when the caller does not provide one.
// It sits in front of the pipeline, not inside it, so the detection strategy
// is swappable.
type TypeClassifier interface {
	Classify(pages []types.PageText) string
}

// KeywordClassifier scores each known document type by counting occurrences
// of its signature vocabulary in the extracted text. Ties and empty scores
// fall back to the generic business analysis type.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var typeKeywords = map[string][]string{
	DocTypePitchDeck: {
		"pitch", "traction", "investment ask", "use of funds", "founders",
		"tam", "sam", "som", "seed round", "series a",
	},
	DocTypeBusinessPlan: {
		"business plan", "operations plan", "milestones", "marketing strategy",
		"organizational structure", "executive summary",
	},
	DocTypeMarketResearch: {
		"market research", "survey", "respondents", "cagr", "market size",
		"market share", "segment analysis",
	},
	DocTypeFinancialModel: {
		"cash flow", "burn rate", "runway", "ebitda", "unit economics",
		"revenue projection", "break-even", "p&l",
	},
}

func (c *KeywordClassifier) Classify(pages []types.PageText) string {
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page.Text)
		b.WriteByte('\n')
	}
	text := strings.ToLower(b.String())

	best := DocTypeBusinessAnalysis
	bestScore := 0
	for _, docType := range DocumentTypes() {
		keywords, ok := typeKeywords[docType]
		if !ok {
			continue
		}
		score := 0
		for _, kw := range keywords {
			score += strings.Count(text, kw)
		}
		if score > bestScore {
			bestScore = score
			best = docType
		}
	}
	return best
}
