package embedding

import (
	"context"
	"fmt"
	"math"
)

// Embedder generates text embeddings. Queries and documents may use different task hints.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder picks a provider by name.
func NewEmbedder(provider, model, openAIKey, openAIBaseURL, ollamaBaseURL string) (Embedder, error) {
	switch provider {
	case "openai", "":
		return NewOpenAIProvider(openAIKey, openAIBaseURL, model), nil
	case "ollama":
		return NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
// so L2 ranking agrees with cosine ranking.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
