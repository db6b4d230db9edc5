// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"fmt"
	"strings"
)

// Config holds configuration for the embedding provider.
type Config struct {
	// Provider selects the embedding backend: "fastembed", "openai" or "none".
	// "none" disables the semantic signal; every section then degrades.
	// Default: "fastembed"
	Provider string `koanf:"provider"`

	// EmbeddingHost is the base URL of an OpenAI-compatible embedding API.
	// Only used by the "openai" provider.
	// Example: "http://localhost:11434/v1" for a local Ollama server
	EmbeddingHost string `koanf:"embedding_host"`

	// EmbeddingModel is the model identifier.
	// Example: "BAAI/bge-small-en-v1.5" (fastembed), "nomic-embed-text" (openai)
	EmbeddingModel string `koanf:"embedding_model"`

	// ModelCacheDir is where fastembed stores downloaded ONNX models.
	// Default: "" (fastembed's local_cache directory)
	ModelCacheDir string `koanf:"model_cache_dir"`

	// MaxLength is the token limit per text for fastembed models.
	// Default: 512
	MaxLength int `koanf:"max_length"`

	// EmbeddingCachePath is a badger directory for caching section embeddings
	// between runs. Empty disables the cache.
	// Default: ""
	EmbeddingCachePath string `koanf:"embedding_cache_path"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the embedding provider.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithModelCacheDir sets the fastembed model directory.
func WithModelCacheDir(dir string) ConfigOption {
	return func(c *Config) {
		c.ModelCacheDir = dir
	}
}

// WithEmbeddingCache enables the persistent embedding cache at path.
func WithEmbeddingCache(path string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingCachePath = path
	}
}

// DefaultConfig returns a Config for the in-process fastembed provider.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderFastEmbed,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: DefaultFastEmbedModel,
		MaxLength:      512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to the embedding host if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderFastEmbed:
		if c.MaxLength <= 0 {
			return fmt.Errorf("%w: MaxLength must be positive", ErrInvalidConfig)
		}
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return fmt.Errorf("%w: EmbeddingHost is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("%w: EmbeddingModel is required", ErrInvalidConfig)
	}
	return nil
}
