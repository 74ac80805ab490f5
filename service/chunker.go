package service

import (
	"fmt"

	"github.com/deckwise/analyzer-be/types"
)

// ChunkService splits extracted text into bounded, overlapping chunks.
//
// The split is a greedy fixed window measured in characters, never bytes, so
// a cut can never land inside a multi-byte rune. Each cut prefers the last
// sentence terminator inside the window, then the last word boundary, then a
// hard cut at the window edge. Every chunk after the first begins with the
// trailing OverlapSize characters of its predecessor, so retrieval never
// loses context at a chunk boundary.
type ChunkService struct {
	maxChunkSize int
	overlapSize  int
}

// NewChunkService validates the window configuration up front. An overlap
// equal to or larger than the window would never advance the cursor.
func NewChunkService(config types.ChunkingConfig) (*ChunkService, error) {
	if config.MaxChunkSize <= 0 {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			fmt.Errorf("max chunk size must be positive, got %d", config.MaxChunkSize))
	}
	if config.OverlapSize < 0 {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			fmt.Errorf("overlap size must not be negative, got %d", config.OverlapSize))
	}
	if config.OverlapSize >= config.MaxChunkSize {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			fmt.Errorf("overlap size %d must be smaller than max chunk size %d",
				config.OverlapSize, config.MaxChunkSize))
	}
	return &ChunkService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}, nil
}

// Split chunks the extracted pages into an ordered sequence. Page ranges are
// derived from cumulative page offsets, so a chunk spanning a page break
// carries both pages.
func (s *ChunkService) Split(pages []types.PageText) []types.Chunk {
	text, offsets := joinPages(pages)
	if len(text) == 0 {
		return nil
	}

	var chunks []types.Chunk
	start := 0
	index := 0
	for start < len(text) {
		end := start + s.maxChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = s.cutPoint(text, start, end)
		}

		chunks = append(chunks, types.Chunk{
			Index:     index,
			Text:      string(text[start:end]),
			PageStart: pageAt(offsets, pages, start),
			PageEnd:   pageAt(offsets, pages, end-1),
		})

		if end == len(text) {
			break
		}
		// The next chunk repeats the trailing overlap of this one.
		start = end - s.overlapSize
		index++
	}
	return chunks
}

// cutPoint picks the cut position inside (start, limit]. A candidate must lie
// past start+overlap, otherwise the next window could not advance.
func (s *ChunkService) cutPoint(text []rune, start, limit int) int {
	minEnd := start + s.overlapSize + 1

	// Prefer a sentence end.
	for i := limit - 1; i >= minEnd; i-- {
		switch text[i-1] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	// Fall back to a word boundary.
	for i := limit - 1; i >= minEnd; i-- {
		if text[i-1] == ' ' {
			return i
		}
	}
	// Hard cut.
	return limit
}

// joinPages concatenates page texts with newline separators and records the
// start offset of each page in the joined rune sequence.
func joinPages(pages []types.PageText) ([]rune, []int) {
	var text []rune
	offsets := make([]int, len(pages))
	for i, page := range pages {
		if i > 0 {
			text = append(text, '\n')
		}
		offsets[i] = len(text)
		text = append(text, []rune(page.Text)...)
	}
	return text, offsets
}

// pageAt maps an offset in the joined text back to its source page number.
func pageAt(offsets []int, pages []types.PageText, offset int) int {
	if len(pages) == 0 {
		return 0
	}
	page := pages[0].Page
	for i, start := range offsets {
		if offset >= start {
			page = pages[i].Page
		}
	}
	return page
}
