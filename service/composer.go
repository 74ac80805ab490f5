package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deckwise/analyzer-be/types"
)

// charsPerToken is the character-per-token estimate used for budgeting.
// The composer only needs a conservative bound; the provider enforces the
// real limit server-side.
const charsPerToken = 4

// RankedSection pairs a section objective with the chunks retrieved for it,
// in ranked order.
type RankedSection struct {
	Query  types.RetrievalQuery
	Chunks []types.Chunk
}

// PromptComposer assembles the final prompt from the persona preamble, the
// per-section retrieved context and the document-type template. The token
// budget is a hard cap: chunks are appended whole, in ranked order, and a
// section is emitted only when its header still fits; nothing is ever
// truncated mid-chunk.
type PromptComposer struct {
	tokenBudget int
}

func NewPromptComposer(tokenBudget int) (*PromptComposer, error) {
	if tokenBudget <= 0 {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			fmt.Errorf("prompt token budget must be positive, got %d", tokenBudget))
	}
	return &PromptComposer{tokenBudget: tokenBudget}, nil
}

// Compose builds the prompt, spending the budget on section context. The
// preamble and template are reserved up front; a budget too small to hold
// even those is a configuration fault, not a truncation case.
func (c *PromptComposer) Compose(documentType string, sections []RankedSection) (string, error) {
	template := TemplateFor(documentType)
	head := PersonaPreamble + "\n\nContext (retrieved chunks per section):\n"
	tail := "\n\nTask:\n" + template

	used := estimateTokens(head) + estimateTokens(tail)
	if used > c.tokenBudget {
		return "", types.NewPipelineError(types.ErrInvalidConfiguration,
			errors.New("prompt token budget is smaller than the preamble and template alone"))
	}

	var b strings.Builder
	b.WriteString(head)

	const placeholder = "No relevant content found.\n"
	for _, section := range sections {
		header := fmt.Sprintf("\n### %s\n", section.Query.Section)
		// A section costs at least its header plus, when no chunk fits,
		// the placeholder line. Stop before the cap is breached.
		if used+estimateTokens(header)+estimateTokens(placeholder) > c.tokenBudget {
			break
		}
		b.WriteString(header)
		used += estimateTokens(header)

		wrote := false
		for _, chunk := range section.Chunks {
			block := fmt.Sprintf("[Chunk %d | pages %d-%d]\n%s\n",
				chunk.Index+1, chunk.PageStart, chunk.PageEnd, chunk.Text)
			cost := estimateTokens(block)
			if used+cost > c.tokenBudget {
				break
			}
			b.WriteString(block)
			used += cost
			wrote = true
		}
		if !wrote {
			b.WriteString(placeholder)
			used += estimateTokens(placeholder)
		}
	}

	b.WriteString(tail)
	return b.String(), nil
}

func estimateTokens(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}
