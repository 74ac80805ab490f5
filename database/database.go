package database

import (
	"context"
	"time"

	"github.com/deckwise/analyzer-be/types"
)

// AnalysisRecord is one completed pipeline run, as persisted for history.
type AnalysisRecord struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"run_id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type"`
	DocumentHash string    `json:"document_hash"`
	Analysis     string    `json:"analysis,omitempty"` // JSON-encoded section list
	CreatedAt    time.Time `json:"created_at"`
}

// TypeMetric counts how often a document type has been analyzed.
type TypeMetric struct {
	DocumentType string    `json:"type"`
	Count        int64     `json:"count"`
	LastAnalyzed time.Time `json:"last_analyzed"`
}

// UsageAnalytics aggregates run history for the analytics endpoint.
type UsageAnalytics struct {
	TotalAnalyses    int64        `json:"total_analyses"`
	RecentAnalyses7d int64        `json:"recent_analyses_7_days"`
	TypeDistribution []TypeMetric `json:"document_type_distribution"`
}

// HistoryStore is the append-only persistence consumed by the pipeline.
// The pipeline only writes; reads serve the history and analytics endpoints.
type HistoryStore interface {
	RecordAnalysis(ctx context.Context, rec *AnalysisRecord) (int64, error)
	RecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error)
	Analytics(ctx context.Context) (*UsageAnalytics, error)
	Ping(ctx context.Context) error
	Close() error
}

// IndexedChunk is a chunk returned from the cross-document search index.
type IndexedChunk struct {
	Content      string  `json:"content"`
	Filename     string  `json:"filename"`
	DocumentType string  `json:"document_type"`
	DocumentHash string  `json:"document_hash"`
	RunID        string  `json:"run_id"`
	PageStart    int     `json:"page_start"`
	PageEnd      int     `json:"page_end"`
	ChunkIndex   int     `json:"chunk_index"`
	Distance     float32 `json:"distance,omitempty"`
}

// ChunkIndex is the optional vector index over analyzed chunks, powering
// search across previously analyzed documents. Not part of the pipeline's
// retrieval path, which is strictly per-run.
type ChunkIndex interface {
	IndexChunks(ctx context.Context, rec *AnalysisRecord, chunks []types.Chunk) error
	Search(ctx context.Context, queries []string, documentType string, limit int) ([]IndexedChunk, error)
}
