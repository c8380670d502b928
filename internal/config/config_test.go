package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("expected default llm_provider %q, got %q", ProviderOpenAI, cfg.LLMProvider)
	}
	if cfg.Quality != QualityNormal {
		t.Errorf("expected default quality %q, got %q", QualityNormal, cfg.Quality)
	}
	if cfg.DataDir != ".codeprism" {
		t.Errorf("expected default data_dir %q, got %q", ".codeprism", cfg.DataDir)
	}
	if cfg.MaxConcurrency != 5 {
		t.Errorf("expected default max_concurrency 5, got %d", cfg.MaxConcurrency)
	}
	if cfg.Search.SemanticWeight != 0.7 || cfg.Search.KeywordWeight != 0.3 {
		t.Errorf("unexpected default search weights: %+v", cfg.Search)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.codeprism.yml")

	original := DefaultConfig()
	original.LLMProvider = ProviderOpenAI
	original.LLMModel = "gpt-4o"
	original.Quality = QualityMax
	original.Include = []string{"**/*.go", "**/*.py"}
	original.DataDir = "output"
	original.MaxCostUSD = 25.5

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.LLMProvider != original.LLMProvider {
		t.Errorf("llm_provider: got %q, want %q", loaded.LLMProvider, original.LLMProvider)
	}
	if loaded.LLMModel != original.LLMModel {
		t.Errorf("llm_model: got %q, want %q", loaded.LLMModel, original.LLMModel)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.MaxCostUSD != original.MaxCostUSD {
		t.Errorf("max_cost_usd: got %v, want %v", loaded.MaxCostUSD, original.MaxCostUSD)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of missing file should fall back to defaults, got error: %v", err)
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("expected default llm_provider when file missing, got %q", cfg.LLMProvider)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}

	bad := DefaultConfig()
	bad.LLMProvider = "not-a-provider"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid llm_provider")
	}

	bad2 := DefaultConfig()
	bad2.MaxConcurrency = -1
	if err := bad2.Validate(); err == nil {
		t.Error("expected error for negative max_concurrency")
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("got %q, want OPENAI_API_KEY", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("ollama should have no API key env var, got %q", got)
	}
}

func TestGetPreset(t *testing.T) {
	preset := GetPreset(ProviderOpenAI, QualityLite)
	if preset.Model == "" {
		t.Error("expected non-empty model for openai/lite preset")
	}

	fallback := GetPreset("unknown-provider", "unknown-tier")
	if fallback != qualityPresets[ProviderOpenAI][QualityNormal] {
		t.Error("expected fallback to openai/normal preset for unknown combination")
	}
}
