package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwise/analyzer-be/types"
)

func TestNewChunkService(t *testing.T) {
	t.Run("Rejects non-positive max chunk size", func(t *testing.T) {
		_, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 0, OverlapSize: 0})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
	})

	t.Run("Rejects negative overlap", func(t *testing.T) {
		_, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 100, OverlapSize: -1})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
	})

	t.Run("Rejects overlap equal to max chunk size", func(t *testing.T) {
		_, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 100, OverlapSize: 100})
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidConfiguration)
	})

	t.Run("Accepts zero overlap", func(t *testing.T) {
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 100, OverlapSize: 0})
		require.NoError(t, err)
		assert.NotNil(t, chunker)
	})
}

func TestChunkServiceSplit(t *testing.T) {
	t.Run("Splits 1000 chars with window 400 and overlap 50 into three chunks", func(t *testing.T) {
		// No sentence or word boundaries, so every cut is a hard cut at the
		// window edge and positions are exact.
		text := strings.Repeat("abcdefghij", 100)
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 400, OverlapSize: 50})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: text}})

		require.Len(t, chunks, 3)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, 1, chunks[1].Index)
		assert.Equal(t, 2, chunks[2].Index)
		assert.Equal(t, text[0:400], chunks[0].Text)
		assert.Equal(t, text[350:750], chunks[1].Text)
		assert.Equal(t, text[700:1000], chunks[2].Text)
	})

	t.Run("Each chunk starts with the trailing overlap of its predecessor", func(t *testing.T) {
		text := strings.Repeat("The startup grew revenue fast. Investors took notice of it. ", 40)
		overlap := 30
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 200, OverlapSize: overlap})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: text}})

		require.Greater(t, len(chunks), 1)
		for i := 1; i < len(chunks); i++ {
			prev := chunks[i-1].Text
			tail := prev[len(prev)-overlap:]
			assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
				"chunk %d should start with the last %d chars of chunk %d", i, overlap, i-1)
		}
	})

	t.Run("No chunk exceeds the max chunk size", func(t *testing.T) {
		text := strings.Repeat("Quarterly numbers improved across every region we track. ", 80)
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 150, OverlapSize: 20})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: text}})

		require.NotEmpty(t, chunks)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk.Text), 150)
		}
	})

	t.Run("Text shorter than the window yields a single chunk", func(t *testing.T) {
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 400, OverlapSize: 50})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: "short document"}})

		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].Index)
		assert.Equal(t, "short document", chunks[0].Text)
		assert.Equal(t, 1, chunks[0].PageStart)
		assert.Equal(t, 1, chunks[0].PageEnd)
	})

	t.Run("Empty pages yield no chunks", func(t *testing.T) {
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 400, OverlapSize: 50})
		require.NoError(t, err)

		assert.Empty(t, chunker.Split(nil))
		assert.Empty(t, chunker.Split([]types.PageText{}))
	})

	t.Run("Chunks carry the page range they span", func(t *testing.T) {
		pages := []types.PageText{
			{Page: 1, Text: strings.Repeat("a", 120)},
			{Page: 2, Text: strings.Repeat("b", 120)},
			{Page: 3, Text: strings.Repeat("c", 120)},
		}
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 200, OverlapSize: 10})
		require.NoError(t, err)

		chunks := chunker.Split(pages)

		require.NotEmpty(t, chunks)
		assert.Equal(t, 1, chunks[0].PageStart)
		assert.GreaterOrEqual(t, chunks[0].PageEnd, chunks[0].PageStart)
		last := chunks[len(chunks)-1]
		assert.Equal(t, 3, last.PageEnd)
	})

	t.Run("Never splits a multi-byte rune", func(t *testing.T) {
		// Two bytes per rune: byte-based windows would cut mid-rune on
		// every hard cut and overlap start.
		text := strings.Repeat("é", 500)
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 400, OverlapSize: 50})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: text}})

		require.Len(t, chunks, 2)
		for i, chunk := range chunks {
			assert.True(t, utf8.ValidString(chunk.Text), "chunk %d must be valid UTF-8", i)
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Text), 400)
		}
		prev := []rune(chunks[0].Text)
		tail := string(prev[len(prev)-50:])
		assert.True(t, strings.HasPrefix(chunks[1].Text, tail),
			"overlap is measured in characters, not bytes")
	})

	t.Run("Window and overlap sizes count characters", func(t *testing.T) {
		// Mixed-width text: "日本語" pages interleaved with ASCII.
		text := strings.Repeat("市場は急成長しています。 The market grows fast. ", 30)
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 120, OverlapSize: 15})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: text}})

		require.Greater(t, len(chunks), 1)
		for i, chunk := range chunks {
			assert.True(t, utf8.ValidString(chunk.Text), "chunk %d must be valid UTF-8", i)
			assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Text), 120)
		}
		for i := 1; i < len(chunks); i++ {
			prev := []rune(chunks[i-1].Text)
			tail := string(prev[len(prev)-15:])
			assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
				"chunk %d should start with the last 15 characters of chunk %d", i, i-1)
		}
	})

	t.Run("Prefers cutting at a sentence end", func(t *testing.T) {
		text := "First sentence here. Second sentence is a bit longer than the first one and keeps going for a while."
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 40, OverlapSize: 5})
		require.NoError(t, err)

		chunks := chunker.Split([]types.PageText{{Page: 1, Text: text}})

		require.Greater(t, len(chunks), 1)
		assert.Equal(t, "First sentence here.", strings.TrimSpace(chunks[0].Text))
	})
}
