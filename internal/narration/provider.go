package narration

import "fmt"

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

// NewProvider selects a provider by name. Without an API key it returns
// Unconfigured so every narration fails with ErrNotConfigured.
func NewProvider(name, apiKey, model, baseURL string) (Provider, error) {
	switch name {
	case ProviderNone:
		return Unconfigured{}, nil
	case ProviderAnthropic:
		if apiKey == "" {
			return Unconfigured{}, nil
		}
		return NewAnthropicProvider(apiKey, model, baseURL), nil
	case ProviderOpenAI:
		if apiKey == "" {
			return Unconfigured{}, nil
		}
		return NewOpenAIProvider(apiKey, model, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown narration provider %q", name)
	}
}
