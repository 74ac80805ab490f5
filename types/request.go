package types

// SearchRequest queries the analyzed-chunk index.
type SearchRequest struct {
	Queries      []string `json:"queries"`
	DocumentType string   `json:"document_type,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}
