package config

import (
	"os"

	"github.com/zen-systems/intentgate/pkg/classify"
	"gopkg.in/yaml.v3"
)

// EngineConfig holds the tunable knobs of the routing engine. The
// confidence constants are hand-tuned defaults carried over from field
// use; they are configuration, not load-bearing precise values.
type EngineConfig struct {
	// GenerativeModels is the ordered model chain for the primary
	// generative extraction stage.
	GenerativeModels []classify.ModelRef `yaml:"generative_models,omitempty"`

	// FallbackProviders is the last-resort provider chain, consulted
	// only when both primary stages produce nothing.
	FallbackProviders []classify.ModelRef `yaml:"fallback_providers,omitempty"`

	// ShortCircuitThreshold is the pattern confidence at or above which
	// the generative stage is skipped.
	ShortCircuitThreshold float64 `yaml:"short_circuit_threshold,omitempty"`

	// FallbackConfidenceCap bounds any fallback-chain result.
	FallbackConfidenceCap float64 `yaml:"fallback_confidence_cap,omitempty"`

	// DefaultConfidence is assigned to the built-in chat fallback.
	DefaultConfidence float64 `yaml:"default_confidence,omitempty"`

	// AttemptTimeoutMs bounds each individual provider attempt.
	AttemptTimeoutMs int `yaml:"attempt_timeout_ms,omitempty"`
}

// LoadEngineConfig reads engine configuration from a YAML file.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEngineDefaults(&cfg)
	return &cfg, nil
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	cfg := &EngineConfig{
		GenerativeModels: []classify.ModelRef{
			{Adapter: "openai", Model: "gpt-5.2-instant"},
			{Adapter: "anthropic", Model: "claude-sonnet-4-20250514"},
			{Adapter: "google", Model: "gemini-2.0-flash"},
		},
		FallbackProviders: []classify.ModelRef{
			{Adapter: "enterprise", Model: "enterprise-chat"},
			{Adapter: "openai", Model: "gpt-5.2-thinking"},
		},
	}

	applyEngineDefaults(cfg)
	return cfg
}

func applyEngineDefaults(cfg *EngineConfig) {
	if cfg == nil {
		return
	}
	if cfg.ShortCircuitThreshold == 0 {
		cfg.ShortCircuitThreshold = 0.8
	}
	if cfg.FallbackConfidenceCap == 0 {
		cfg.FallbackConfidenceCap = 0.5
	}
	if cfg.DefaultConfidence == 0 {
		cfg.DefaultConfidence = 0.5
	}
	if cfg.AttemptTimeoutMs == 0 {
		cfg.AttemptTimeoutMs = 30000
	}
}
