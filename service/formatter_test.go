package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwise/analyzer-be/types"
)

func TestResultFormatterFormat(t *testing.T) {
	formatter := NewResultFormatter()

	t.Run("Splits markdown headings into sections", func(t *testing.T) {
		raw := "## Executive Summary\nStrong traction.\n\n## Market Opportunity\nTAM of $5B."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 2)
		assert.Equal(t, "Executive Summary", sections[0].Name)
		assert.Equal(t, "Strong traction.", sections[0].Content)
		assert.Equal(t, "Market Opportunity", sections[1].Name)
		assert.Equal(t, "TAM of $5B.", sections[1].Content)
	})

	t.Run("Recognizes bold-line headings", func(t *testing.T) {
		raw := "**Risk Assessment:**\nKey risk is churn.\n**Team**\nTwo technical founders."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 2)
		assert.Equal(t, "Risk Assessment", sections[0].Name)
		assert.Equal(t, "Key risk is churn.", sections[0].Content)
		assert.Equal(t, "Team", sections[1].Name)
	})

	t.Run("Recognizes numbered headings", func(t *testing.T) {
		raw := "1. Executive Summary\nGood summary.\n2. Value Proposition\nClear value."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 2)
		assert.Equal(t, "Executive Summary", sections[0].Name)
		assert.Equal(t, "Value Proposition", sections[1].Name)
	})

	t.Run("Collects leading text into an implicit summary section", func(t *testing.T) {
		raw := "The company looks promising overall.\n\n## Details\nMore here."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 2)
		assert.Equal(t, ImplicitSectionName, sections[0].Name)
		assert.Equal(t, "The company looks promising overall.", sections[0].Content)
	})

	t.Run("Drops the implicit section when the response starts with a heading", func(t *testing.T) {
		raw := "## Only Section\nContent."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 1)
		assert.Equal(t, "Only Section", sections[0].Name)
	})

	t.Run("Long numbered lines stay inside their section", func(t *testing.T) {
		raw := "## Risks\n1. The founding team has never operated a company at this scale before and that is a meaningful gap in experience for the journey ahead."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 1)
		assert.Equal(t, "Risks", sections[0].Name)
		assert.Contains(t, sections[0].Content, "founding team")
	})

	t.Run("Response without headings becomes a single summary section", func(t *testing.T) {
		raw := "Plain prose answer with no structure at all, spanning a line."

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 1)
		assert.Equal(t, ImplicitSectionName, sections[0].Name)
		assert.Equal(t, raw, sections[0].Content)
	})

	t.Run("Blank response fails as unparseable", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\n\n\t"} {
			_, err := formatter.Format(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrUnparseableResponse)
		}
	})

	t.Run("Preserves section order", func(t *testing.T) {
		raw := "## C\nc\n## A\na\n## B\nb"

		sections, err := formatter.Format(raw)
		require.NoError(t, err)

		require.Len(t, sections, 3)
		assert.Equal(t, "C", sections[0].Name)
		assert.Equal(t, "A", sections[1].Name)
		assert.Equal(t, "B", sections[2].Name)
	})
}
