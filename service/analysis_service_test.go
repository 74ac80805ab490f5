package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckwise/analyzer-be/database"
	"github.com/deckwise/analyzer-be/types"
)

// fakeExtractor returns fixed pages regardless of input.
type fakeExtractor struct {
	pages []types.PageText
	err   error
}

func (f *fakeExtractor) ExtractPages(data []byte) ([]types.PageText, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// countingGenerator counts calls atomically and returns a fixed response.
type countingGenerator struct {
	calls    int64
	response string
	errs     []error
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	n := atomic.AddInt64(&g.calls, 1)
	if int(n) <= len(g.errs) && g.errs[n-1] != nil {
		return "", g.errs[n-1]
	}
	return g.response, nil
}

// cancelAwareGenerator fails when its context is already cancelled.
type cancelAwareGenerator struct {
	calls    int64
	response string
}

func (g *cancelAwareGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt64(&g.calls, 1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return g.response, nil
}

// memoryHistory captures records in memory.
type memoryHistory struct {
	mu      sync.Mutex
	records []database.AnalysisRecord
}

func (m *memoryHistory) RecordAnalysis(ctx context.Context, rec *database.AnalysisRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *rec)
	return int64(len(m.records)), nil
}

func (m *memoryHistory) RecentAnalyses(ctx context.Context, limit int) ([]database.AnalysisRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]database.AnalysisRecord(nil), m.records...), nil
}

func (m *memoryHistory) Analytics(ctx context.Context) (*database.UsageAnalytics, error) {
	return &database.UsageAnalytics{}, nil
}

func (m *memoryHistory) Ping(ctx context.Context) error { return nil }
func (m *memoryHistory) Close() error                   { return nil }

func newTestAnalysisService(t *testing.T, generator Generator, history database.HistoryStore) *AnalysisService {
	t.Helper()
	chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 200, OverlapSize: 20})
	require.NoError(t, err)
	retriever, err := NewRetriever(&fakeEmbedder{}, 3)
	require.NoError(t, err)
	composer, err := NewPromptComposer(100000)
	require.NoError(t, err)

	extractor := &fakeExtractor{pages: []types.PageText{
		{Page: 1, Text: "Our startup raised a seed round. The pitch highlights strong traction and a large market."},
	}}
	return NewAnalysisService(
		extractor, chunker, retriever, composer, generator,
		NewKeywordClassifier(), time.Minute, history, nil,
	)
}

func TestAnalysisServiceAnalyze(t *testing.T) {
	response := "## Executive Summary\nStrong traction.\n## Risks\nChurn."

	t.Run("Runs the pipeline end to end", func(t *testing.T) {
		generator := &countingGenerator{response: response}
		history := &memoryHistory{}
		svc := newTestAnalysisService(t, generator, history)

		outcome, err := svc.Analyze(context.Background(), []byte("doc-1"), "deck.pdf", DocTypePitchDeck, nil)
		require.NoError(t, err)

		result := outcome.Result
		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, DocTypePitchDeck, result.DocumentType)
		assert.NotEmpty(t, result.DocumentHash)
		require.Len(t, result.Sections, 2)
		assert.Equal(t, "Executive Summary", result.Sections[0].Name)
		assert.Equal(t, "Risks", result.Sections[1].Name)
		assert.EqualValues(t, 1, atomic.LoadInt64(&generator.calls))

		require.Len(t, history.records, 1)
		assert.Equal(t, "deck.pdf", history.records[0].Filename)
		assert.Equal(t, result.DocumentHash, history.records[0].DocumentHash)
		assert.EqualValues(t, 1, outcome.AnalysisID)
	})

	t.Run("Classifies the document when no type is given", func(t *testing.T) {
		generator := &countingGenerator{response: response}
		svc := newTestAnalysisService(t, generator, nil)

		outcome, err := svc.Analyze(context.Background(), []byte("doc-2"), "doc.pdf", "", nil)
		require.NoError(t, err)
		// The fixed pages mention pitch, traction and seed round.
		assert.Equal(t, DocTypePitchDeck, outcome.Result.DocumentType)
	})

	t.Run("Identical concurrent requests trigger a single model call", func(t *testing.T) {
		generator := &countingGenerator{response: response}
		svc := newTestAnalysisService(t, generator, nil)
		data := []byte("same document bytes")

		const workers = 8
		var wg sync.WaitGroup
		results := make([]*AnalysisOutcome, workers)
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = svc.Analyze(context.Background(), data, "doc.pdf", DocTypePitchDeck, nil)
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			require.NotNil(t, results[i])
			assert.Equal(t, results[0].Result.RunID, results[i].Result.RunID)
		}
		assert.EqualValues(t, 1, atomic.LoadInt64(&generator.calls))
	})

	t.Run("Repeated request is served from the cache", func(t *testing.T) {
		generator := &countingGenerator{response: response}
		svc := newTestAnalysisService(t, generator, nil)
		data := []byte("cached document")

		first, err := svc.Analyze(context.Background(), data, "doc.pdf", DocTypePitchDeck, nil)
		require.NoError(t, err)
		second, err := svc.Analyze(context.Background(), data, "doc.pdf", DocTypePitchDeck, nil)
		require.NoError(t, err)

		assert.Equal(t, first.Result.RunID, second.Result.RunID)
		assert.EqualValues(t, 1, atomic.LoadInt64(&generator.calls))
	})

	t.Run("Same document with a different type is analyzed again", func(t *testing.T) {
		generator := &countingGenerator{response: response}
		svc := newTestAnalysisService(t, generator, nil)
		data := []byte("retyped document")

		_, err := svc.Analyze(context.Background(), data, "doc.pdf", DocTypePitchDeck, nil)
		require.NoError(t, err)
		_, err = svc.Analyze(context.Background(), data, "doc.pdf", DocTypeFinancialModel, nil)
		require.NoError(t, err)

		assert.EqualValues(t, 2, atomic.LoadInt64(&generator.calls))
	})

	t.Run("Failed runs are not cached", func(t *testing.T) {
		generator := &countingGenerator{
			response: response,
			errs:     []error{types.NewPipelineError(types.ErrModelUnavailable, errors.New("down"))},
		}
		svc := newTestAnalysisService(t, generator, nil)
		data := []byte("flaky document")

		_, err := svc.Analyze(context.Background(), data, "doc.pdf", DocTypePitchDeck, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrModelUnavailable)

		outcome, err := svc.Analyze(context.Background(), data, "doc.pdf", DocTypePitchDeck, nil)
		require.NoError(t, err)
		assert.NotNil(t, outcome.Result)
		assert.EqualValues(t, 2, atomic.LoadInt64(&generator.calls))
	})

	t.Run("Run outlives the initiating caller's cancellation", func(t *testing.T) {
		// The run may be shared with other uploaders of the same document,
		// so the initiator disconnecting must not fail it.
		generator := &cancelAwareGenerator{response: response}
		svc := newTestAnalysisService(t, generator, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcome, err := svc.Analyze(ctx, []byte("detached doc"), "doc.pdf", DocTypePitchDeck, nil)
		require.NoError(t, err)
		require.NotNil(t, outcome.Result)
		assert.EqualValues(t, 1, atomic.LoadInt64(&generator.calls))
	})

	t.Run("Extraction failure surfaces unchanged", func(t *testing.T) {
		chunker, err := NewChunkService(types.ChunkingConfig{MaxChunkSize: 200, OverlapSize: 20})
		require.NoError(t, err)
		retriever, err := NewRetriever(&fakeEmbedder{}, 3)
		require.NoError(t, err)
		composer, err := NewPromptComposer(100000)
		require.NoError(t, err)
		extractor := &fakeExtractor{err: types.NewPipelineError(types.ErrUnreadableDocument, errors.New("bad pdf"))}
		svc := NewAnalysisService(extractor, chunker, retriever, composer,
			&countingGenerator{response: response}, NewKeywordClassifier(), time.Minute, nil, nil)

		_, err = svc.Analyze(context.Background(), []byte("x"), "doc.pdf", "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnreadableDocument)
	})

	t.Run("Progress events end with completion and the channel closes", func(t *testing.T) {
		generator := &countingGenerator{response: response}
		svc := newTestAnalysisService(t, generator, nil)
		progress := make(chan types.AnalysisProgress, 32)

		done := make(chan struct{})
		var stages []string
		go func() {
			defer close(done)
			for event := range progress {
				stages = append(stages, event.Stage)
			}
		}()

		_, err := svc.Analyze(context.Background(), []byte("progress doc"), "doc.pdf", DocTypePitchDeck, progress)
		require.NoError(t, err)
		<-done

		require.NotEmpty(t, stages)
		assert.Equal(t, types.StageExtracting, stages[0])
		assert.Equal(t, types.StageCompleted, stages[len(stages)-1])
	})
}
