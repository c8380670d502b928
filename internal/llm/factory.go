package llm

import "fmt"

// NewProvider constructs a Provider for the given provider name and
// model, reading its API key from apiKey. Only "openai" is wired to a
// concrete backend; other provider names are accepted by config for
// their embedding support but have no text-completion backend here.
func NewProvider(providerType string, model string, apiKey string) (Provider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found.\nSet OPENAI_API_KEY or llm_api_key in the config file")
		}
		return NewOpenAIProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", providerType)
	}
}
