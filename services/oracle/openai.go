package oracle

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIChatModel      = "gpt-4o-mini"
	openAIEmbeddingModel = openai.SmallEmbedding3
)

// OpenAIOracle implements TextOracle on the OpenAI API.
type OpenAIOracle struct {
	client *openai.Client
}

// NewOpenAIOracle creates an OpenAI-backed oracle.
func NewOpenAIOracle(apiKey string) (*OpenAIOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &OpenAIOracle{client: openai.NewClient(apiKey)}, nil
}

func (o *OpenAIOracle) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openAIChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIOracle) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openAIEmbeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding returned no data")
	}
	return resp.Data[0].Embedding, nil
}
