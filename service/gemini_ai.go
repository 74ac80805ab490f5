package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deckwise/analyzer-be/types"
)

// GeminiService implements Generator and Embedder on top of the Google
// generative AI API.
type GeminiService struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	embedModel *genai.EmbeddingModel
}

func NewGeminiService(ctx context.Context, apiKey, modelName, embedModelName string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, errors.New("no API key provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.9)

	return &GeminiService{
		client:     client,
		model:      model,
		embedModel: client.EmbeddingModel(embedModelName),
	}, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	return content, nil
}

func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedModel.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, types.NewPipelineError(types.ErrModelUnavailable,
			errors.New("empty embedding returned"))
	}
	return resp.Embedding.Values, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}
