package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/codeprism/codeprism/internal/config"
	"github.com/codeprism/codeprism/internal/embeddings"
	"github.com/codeprism/codeprism/internal/llm"
	"github.com/codeprism/codeprism/internal/store"
)

// createEmbedderFromConfig builds the configured embeddings.Embedder.
// Shared by the index, query, and sync commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.LLMProvider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		preset := config.GetPreset(provider, cfg.Quality)
		model = preset.EmbeddingModel
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found.\nSet OPENAI_API_KEY")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	case config.ProviderGoogle:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderGoogle))
		if apiKey == "" {
			return nil, fmt.Errorf("Google API key not found.\nSet GOOGLE_API_KEY")
		}
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(model)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig builds the configured llm.Provider, or nil
// when the quality tier is lite (structural-only cards, no LLM calls).
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	if cfg.Quality == config.QualityLite {
		return nil, nil
	}
	apiKey := cfg.LLMAPIKey
	if apiKey == "" {
		apiKey = os.Getenv(config.APIKeyEnvVar(cfg.LLMProvider))
	}
	return llm.NewProvider(string(cfg.LLMProvider), cfg.LLMModel, apiKey)
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `codeprism init` to create a config file", err)
	}
	return cfg, nil
}

// storePath returns the SQLite database path under the configured data dir.
func storePath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "codeprism.db")
}

// stampInstanceID assigns a random instance_id in instance_profile on
// first run; later runs leave it untouched.
func stampInstanceID(ctx context.Context, st *store.Store) error {
	if _, ok, err := st.GetInstanceProfile(ctx, "instance_id"); err != nil {
		return err
	} else if ok {
		return nil
	}
	return st.SetInstanceProfile(ctx, "instance_id", uuid.NewString())
}

// warnOnEmbeddingDrift prints (never fails) a warning when the
// embedding_model a store's cards were built with differs from the one
// the current config resolves to, since the vector index becomes
// meaningless across mismatched embedding spaces.
func warnOnEmbeddingDrift(ctx context.Context, st *store.Store, currentModel string) {
	recorded, ok, err := st.GetSearchConfig(ctx, "embedding_model")
	if err != nil || !ok || recorded == currentModel {
		return
	}
	fmt.Fprintf(os.Stderr,
		"Warning: index was built with embedding model %q, but %q is configured now.\nRe-run `codeprism index` to rebuild, or fix your embedding config.\n",
		recorded, currentModel)
}
