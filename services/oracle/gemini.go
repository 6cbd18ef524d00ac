package oracle

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiChatModel      = "models/gemini-1.5-flash"
	geminiEmbeddingModel = "models/text-embedding-004"
)

// GeminiOracle implements TextOracle on the Gemini API.
type GeminiOracle struct {
	client *genai.Client
}

// NewGeminiOracle creates a Gemini-backed oracle.
func NewGeminiOracle(ctx context.Context, apiKey string) (*GeminiOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiOracle{client: client}, nil
}

func (g *GeminiOracle) Complete(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(geminiChatModel)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func (g *GeminiOracle) Embed(ctx context.Context, text string) ([]float32, error) {
	model := g.client.EmbeddingModel(geminiEmbeddingModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding error: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("gemini embedding returned no vector")
	}
	return resp.Embedding.Values, nil
}
