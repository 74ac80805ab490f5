package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/deckwise/analyzer-be/database"
	"github.com/deckwise/analyzer-be/types"
	"github.com/deckwise/analyzer-be/utils"
)

// AnalysisService runs the document-to-insight pipeline: extract, chunk,
// embed, retrieve per section, compose, generate, format. A read-through
// cache keyed by content hash collapses identical concurrent uploads into a
// single model call.
type AnalysisService struct {
	extractor  Extractor
	chunker    *ChunkService
	retriever  *Retriever
	composer   *PromptComposer
	formatter  *ResultFormatter
	generator  Generator
	classifier TypeClassifier

	requestTimeout time.Duration

	history database.HistoryStore // optional
	index   database.ChunkIndex   // optional

	mu    sync.RWMutex
	cache map[string]*types.AnalysisResult
	group singleflight.Group
}

// AnalysisOutcome pairs the pipeline result with its history row id.
type AnalysisOutcome struct {
	Result     *types.AnalysisResult
	AnalysisID int64
}

func NewAnalysisService(
	extractor Extractor,
	chunker *ChunkService,
	retriever *Retriever,
	composer *PromptComposer,
	generator Generator,
	classifier TypeClassifier,
	requestTimeout time.Duration,
	history database.HistoryStore,
	index database.ChunkIndex,
) *AnalysisService {
	return &AnalysisService{
		extractor:      extractor,
		chunker:        chunker,
		retriever:      retriever,
		composer:       composer,
		formatter:      NewResultFormatter(),
		generator:      generator,
		classifier:     classifier,
		requestTimeout: requestTimeout,
		history:        history,
		index:          index,
		cache:          make(map[string]*types.AnalysisResult),
	}
}

// Analyze runs the full pipeline for one uploaded document. The filename is
// only used for history records; documentType may be empty, in which case
// the classifier picks one. Progress events, when a channel is supplied,
// are emitted by the run that actually executes; duplicate concurrent
// requests share its outcome.
func (s *AnalysisService) Analyze(ctx context.Context, data []byte, filename, documentType string, progress chan<- types.AnalysisProgress) (*AnalysisOutcome, error) {
	if progress != nil {
		defer close(progress)
	}

	hash := utils.HashBytes(data)

	if cached := s.lookup(hash, documentType); cached != nil {
		s.emit(progress, types.AnalysisProgress{
			Stage:        types.StageCacheHit,
			Message:      "Analysis served from cache",
			DocumentHash: hash,
			Progress:     1,
		})
		return &AnalysisOutcome{Result: cached}, nil
	}

	key := hash + "|" + documentType
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have populated
		// the cache between lookup and Do.
		if cached := s.lookup(hash, documentType); cached != nil {
			return &AnalysisOutcome{Result: cached}, nil
		}
		// The flight may be shared by several callers; detach it from the
		// initiator's cancellation so one disconnect does not fail the rest.
		return s.run(context.WithoutCancel(ctx), data, hash, filename, documentType, progress)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AnalysisOutcome), nil
}

func (s *AnalysisService) run(ctx context.Context, data []byte, hash, filename, documentType string, progress chan<- types.AnalysisProgress) (*AnalysisOutcome, error) {
	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageExtracting, Message: "Extracting text", DocumentHash: hash, Progress: 0.1,
	})
	pages, err := s.extractor.ExtractPages(data)
	if err != nil {
		return nil, err
	}

	if documentType == "" {
		documentType = s.classifier.Classify(pages)
	}

	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageChunking, Message: "Chunking document", DocumentHash: hash, Progress: 0.2,
	})
	chunks := s.chunker.Split(pages)

	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageEmbedding, Message: "Embedding chunks", DocumentHash: hash, Progress: 0.35,
	})
	if err := s.retriever.EmbedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageRetrieving, Message: "Retrieving section context", DocumentHash: hash, Progress: 0.5,
	})
	template := TemplateFor(documentType)
	var sections []RankedSection
	for _, section := range SectionQueries(template) {
		query := types.RetrievalQuery{Section: section}
		ranked, err := s.retriever.Retrieve(ctx, chunks, query)
		if err != nil {
			return nil, err
		}
		sections = append(sections, RankedSection{Query: query, Chunks: ranked})
	}

	prompt, err := s.composer.Compose(documentType, sections)
	if err != nil {
		return nil, err
	}

	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageGenerating, Message: "Generating analysis", DocumentHash: hash, Progress: 0.7,
	})
	genCtx := ctx
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	raw, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		return nil, err
	}

	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageFormatting, Message: "Formatting result", DocumentHash: hash, Progress: 0.9,
	})
	parsed, err := s.formatter.Format(raw)
	if err != nil {
		return nil, err
	}

	result := &types.AnalysisResult{
		RunID:        uuid.NewString(),
		DocumentHash: hash,
		DocumentType: documentType,
		Sections:     parsed,
		CreatedAt:    time.Now().Unix(),
	}
	s.store(hash, documentType, result)

	outcome := &AnalysisOutcome{Result: result}
	outcome.AnalysisID = s.record(ctx, result, filename, chunks)

	s.emit(progress, types.AnalysisProgress{
		Stage: types.StageCompleted, Message: "Analysis complete", DocumentHash: hash, Progress: 1,
	})
	return outcome, nil
}

// record appends the run to history and the chunk index. Both are
// best-effort: a persistence failure does not fail a completed analysis.
func (s *AnalysisService) record(ctx context.Context, result *types.AnalysisResult, filename string, chunks []types.Chunk) int64 {
	if s.history == nil {
		return 0
	}
	encoded, err := json.Marshal(result.Sections)
	if err != nil {
		log.Printf("Failed to encode analysis for history: %v", err)
		return 0
	}
	rec := &database.AnalysisRecord{
		RunID:        result.RunID,
		Filename:     filename,
		DocumentType: result.DocumentType,
		DocumentHash: result.DocumentHash,
		Analysis:     string(encoded),
	}
	id, err := s.history.RecordAnalysis(ctx, rec)
	if err != nil {
		log.Printf("Failed to record analysis history: %v", err)
		return 0
	}
	rec.ID = id

	if s.index != nil {
		if err := s.index.IndexChunks(ctx, rec, chunks); err != nil {
			log.Printf("Failed to index chunks: %v", err)
		}
	}
	return id
}

func (s *AnalysisService) lookup(hash, documentType string) *types.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cache[hash+"|"+documentType]
}

func (s *AnalysisService) store(hash, documentType string, result *types.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[hash+"|"+documentType] = result
}

func (s *AnalysisService) emit(progress chan<- types.AnalysisProgress, event types.AnalysisProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- event:
	default:
		// Slow consumers must not stall the pipeline.
	}
}
