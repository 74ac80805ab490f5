package types

// Pipeline stages reported while an analysis is running.
const (
	StageExtracting = "extracting"
	StageChunking   = "chunking"
	StageEmbedding  = "embedding"
	StageRetrieving = "retrieving"
	StageGenerating = "generating"
	StageFormatting = "formatting"
	StageCompleted  = "completed"
	StageCacheHit   = "cache_hit"
)

// AnalysisProgress is one status event of a running pipeline, streamed to
// the uploader over SSE and to observers over the websocket feed.
type AnalysisProgress struct {
	Stage        string  `json:"stage"`
	Message      string  `json:"message"`
	DocumentHash string  `json:"document_hash,omitempty"`
	Progress     float64 `json:"progress"`
}
