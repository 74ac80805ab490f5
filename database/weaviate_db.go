package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/deckwise/analyzer-be/config"
	"github.com/deckwise/analyzer-be/types"
)

const chunkBatchSize = 100

var (
	chunkClass       = "AnalyzedChunk"
	chunkClassObject = &models.Class{
		Class: chunkClass,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "filename", DataType: []string{"text"}},
			{Name: "documentType", DataType: []string{"text"}},
			{Name: "documentHash", DataType: []string{"text"}},
			{Name: "runId", DataType: []string{"text"}},
			{Name: "pageStart", DataType: []string{"int"}},
			{Name: "pageEnd", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
		Vectorizer:      "text2vec-transformers",
		VectorIndexType: "hnsw",
	}
)

// WeaviateIndex stores chunks of analyzed documents for cross-document
// search. It is deliberately outside the pipeline's retrieval path.
type WeaviateIndex struct {
	client *weaviate.Client
}

func NewWeaviateIndex(cfg config.WeaviateConfig) (*WeaviateIndex, error) {
	var scheme string
	if strings.HasPrefix(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")

	clientCfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		clientCfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}

	client, err := weaviate.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}
	hasClass := false
	for _, class := range schema.Classes {
		if class.Class == chunkClass {
			hasClass = true
			break
		}
	}
	if !hasClass {
		if err := client.Schema().ClassCreator().WithClass(chunkClassObject).Do(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create %s class: %w", chunkClass, err)
		}
	}
	return &WeaviateIndex{client: client}, nil
}

// IndexChunks batch-inserts the chunks of a completed run, carrying the
// per-run embeddings so weaviate does not re-vectorize.
func (s *WeaviateIndex) IndexChunks(ctx context.Context, rec *AnalysisRecord, chunks []types.Chunk) error {
	for i := 0; i < len(chunks); i += chunkBatchSize {
		end := i + chunkBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for _, chunk := range chunks[i:end] {
			obj := &models.Object{
				Class: chunkClass,
				Properties: map[string]interface{}{
					"content":      chunk.Text,
					"filename":     rec.Filename,
					"documentType": rec.DocumentType,
					"documentHash": rec.DocumentHash,
					"runId":        rec.RunID,
					"pageStart":    chunk.PageStart,
					"pageEnd":      chunk.PageEnd,
					"chunkIndex":   chunk.Index,
				},
			}
			if chunk.Embedding != nil {
				obj.Vector = chunk.Embedding
			}
			batcher = batcher.WithObjects(obj)
		}
		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert chunk batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// Search runs a near-text query over indexed chunks, optionally filtered to
// a single document type.
func (s *WeaviateIndex) Search(ctx context.Context, queries []string, documentType string, limit int) ([]IndexedChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "filename"},
		{Name: "documentType"},
		{Name: "documentHash"},
		{Name: "runId"},
		{Name: "pageStart"},
		{Name: "pageEnd"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	builder := s.client.GraphQL().Get().
		WithClassName(chunkClass).
		WithFields(fields...).
		WithNearText((&graphql.NearTextArgumentBuilder{}).WithConcepts(queries)).
		WithLimit(limit)

	if documentType != "" {
		builder = builder.WithWhere(filters.Where().
			WithPath([]string{"documentType"}).
			WithOperator(filters.Equal).
			WithValueString(documentType))
	}

	response, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if response.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", response.Errors)
	}

	var results []IndexedChunk
	data, ok := response.Data["Get"].(map[string]interface{})[chunkClass].([]interface{})
	if !ok {
		return results, nil
	}
	for _, item := range data {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		chunk := IndexedChunk{
			Content:      asString(obj["content"]),
			Filename:     asString(obj["filename"]),
			DocumentType: asString(obj["documentType"]),
			DocumentHash: asString(obj["documentHash"]),
			RunID:        asString(obj["runId"]),
			PageStart:    asInt(obj["pageStart"]),
			PageEnd:      asInt(obj["pageEnd"]),
			ChunkIndex:   asInt(obj["chunkIndex"]),
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				chunk.Distance = float32(d)
			}
		}
		results = append(results, chunk)
	}
	return results, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}
