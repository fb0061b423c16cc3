package llm

import (
	"context"
	"errors"
	"fmt"
)

// NewProvider creates a Provider from configuration, wrapped with
// retry and request-logging middleware.
func NewProvider(ctx context.Context, cfg Config, log RequestLog) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	if log != nil {
		base = WithLogging(base, log, cfg.Provider)
	}
	return WithRetry(base, cfg.Retry), nil
}

// NewProviderFromEnv resolves configuration from the environment and
// creates a Provider. See ResolveConfig for the variable precedence.
func NewProviderFromEnv(ctx context.Context, log RequestLog) (Provider, error) {
	cfg, ok := ResolveConfig()
	if !ok {
		return nil, errors.New("no LLM provider configured: set BONK_LLM_PROVIDER and its BONK_*_API_KEY, or export ANTHROPIC_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY")
	}
	return NewProvider(ctx, cfg, log)
}
