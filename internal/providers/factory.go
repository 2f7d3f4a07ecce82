package providers

import (
	"fmt"
	"os"

	"github.com/evry-ai/evry/internal/chat"
	"github.com/evry-ai/evry/internal/config"
)

// placeholderAPIKey is sent to OpenAI-compatible endpoints that need no
// authentication; the SDK refuses to send an empty key.
const placeholderAPIKey = "no-key"

// NewClient creates a chat.LLMClient from the user's configuration.
// Credentials resolve config-first, then the provider's conventional
// environment variable. Unknown provider names with a base_url are treated
// as OpenAI-compatible endpoints.
func NewClient(cfg *config.Config) (chat.LLMClient, error) {
	switch cfg.Provider {
	case "", "openai":
		apiKey := firstNonEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		model := firstNonEmpty(cfg.Model, os.Getenv("OPENAI_MODEL"), "gpt-4o-mini")
		baseURL := firstNonEmpty(cfg.BaseURL, os.Getenv("OPENAI_BASE_URL"))
		return NewOpenAIClient(apiKey, model, baseURL), nil

	case "anthropic":
		apiKey := firstNonEmpty(cfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		model := firstNonEmpty(cfg.Model, os.Getenv("ANTHROPIC_MODEL"), "claude-3-5-sonnet-20241022")
		return NewAnthropicClient(apiKey, model), nil

	default:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("unknown provider %q (set base_url for OpenAI-compatible endpoints)", cfg.Provider)
		}
		apiKey := firstNonEmpty(cfg.APIKey, os.Getenv("OPENAI_API_KEY"), placeholderAPIKey)
		if cfg.Model == "" {
			return nil, fmt.Errorf("provider %q requires a model name", cfg.Provider)
		}
		return NewOpenAIClient(apiKey, cfg.Model, cfg.BaseURL), nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
