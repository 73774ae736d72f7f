package factory

import (
	"fmt"

	"github.com/PinsaraPerera/intellihack-backend/pkg/llm"
	"github.com/PinsaraPerera/intellihack-backend/pkg/llm/ollama"
	"github.com/PinsaraPerera/intellihack-backend/pkg/llm/openai"
)

// NewLLMProvider builds a provider. baseURL is the Ollama host for "ollama" and an optional
// OpenAI-compatible endpoint for "openai".
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "":
		return openai.NewOpenAIProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
