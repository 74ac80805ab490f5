package service

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIService implements Generator and Embedder against any OpenAI
// compatible endpoint, including local inference servers.
type OpenAIService struct {
	client     *openai.Client
	model      string
	embedModel openai.EmbeddingModel
}

func NewOpenAIService(baseURL, apiKey, model, embedModel string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if embedModel == "" {
		embedModel = string(openai.SmallEmbedding3)
	}
	return &OpenAIService{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		embedModel: openai.EmbeddingModel(embedModel),
	}
}

func (s *OpenAIService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.9,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: s.embedModel,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding returned")
	}
	return resp.Data[0].Embedding, nil
}
