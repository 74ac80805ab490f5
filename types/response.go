package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AnalyzeResponse is the payload returned for a completed upload analysis.
type AnalyzeResponse struct {
	Filename     string          `json:"filename"`
	DocumentType string          `json:"document_type"`
	Analysis     *AnalysisResult `json:"analysis"`
	AnalysisID   int64           `json:"analysis_id"`
}
