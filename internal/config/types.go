package config

// QualityTier controls the model selection trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGoogle ProviderType = "google"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level codeprism configuration, corresponding to .codeprism.yml.
type Config struct {
	LLMProvider ProviderType `yaml:"llm_provider" koanf:"llm_provider"`
	LLMModel    string       `yaml:"llm_model" koanf:"llm_model"`
	LLMAPIKey   string       `yaml:"llm_api_key" koanf:"llm_api_key"`
	LLMDelayMS  int          `yaml:"llm_delay_ms" koanf:"llm_delay_ms"`

	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	Quality QualityTier `yaml:"quality" koanf:"quality"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	Port    int    `yaml:"port" koanf:"port"`

	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`

	MaxConcurrency int     `yaml:"max_concurrency" koanf:"max_concurrency"`
	MaxCostUSD     float64 `yaml:"max_cost_usd" koanf:"max_cost_usd"`

	Search SearchConfig `yaml:"search" koanf:"search"`
}

// SearchConfig holds hybrid-search tuning knobs, overridable per instance
// (mirrors the search_config store table's default row).
type SearchConfig struct {
	SemanticWeight    float64 `yaml:"semantic_weight" koanf:"semantic_weight"`
	KeywordWeight     float64 `yaml:"keyword_weight" koanf:"keyword_weight"`
	DualPresenceBoost float64 `yaml:"dual_presence_boost" koanf:"dual_presence_boost"`
	MMRLambda         float64 `yaml:"mmr_lambda" koanf:"mmr_lambda"`
	CacheThreshold    float64 `yaml:"cache_threshold" koanf:"cache_threshold"`
	RerankEnabled     bool    `yaml:"rerank_enabled" koanf:"rerank_enabled"`
}
