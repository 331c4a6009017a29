package analyzer

import (
	"fmt"
	"net/http"

	"mission-desk/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewModel builds the langchaingo model selected by cfg.Provider.
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.ServerURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
			ollama.WithFormat("json"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return llm, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key cannot be empty")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
