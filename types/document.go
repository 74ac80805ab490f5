package types

// PageText is one page of extracted PDF text, in page order.
type PageText struct {
	Page int    // 1-based page number
	Text string
}

// Chunk is an ordered text segment of a single document. Adjacent chunks may
// share up to the configured overlap of text; the sequence index is the only
// canonical, non-overlapping ordering.
type Chunk struct {
	Index     int       `json:"index"`
	PageStart int       `json:"page_start"`
	PageEnd   int       `json:"page_end"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	// Score is filled by retrieval, cosine similarity against the query.
	Score float64 `json:"score,omitempty"`
}

// RetrievalQuery describes the analysis objective of one output section,
// e.g. "Market Opportunity" or "Financial Highlights".
type RetrievalQuery struct {
	Section string `json:"section"`
}

// Section is one named block of generated analysis text.
type Section struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// AnalysisResult is the canonical output of a pipeline run. Section order is
// display order. Immutable after creation.
type AnalysisResult struct {
	RunID        string    `json:"run_id"`
	DocumentHash string    `json:"document_hash"`
	DocumentType string    `json:"document_type"`
	Sections     []Section `json:"sections"`
	CreatedAt    int64     `json:"created_at"`
}

// ChunkingConfig bounds the chunker window.
type ChunkingConfig struct {
	MaxChunkSize int // maximum chunk length in characters
	OverlapSize  int // trailing characters repeated at the start of the next chunk
}
