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


package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/core"
)

const (
	// EnvPrefix is the prefix of every environment variable read by Load.
	EnvPrefix = "SECTIONRANK_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrConfigTooLarge is returned for configuration files over 1MB.
var ErrConfigTooLarge = errors.New("config file too large")

// Config is the complete sectionrank configuration.
type Config struct {
	Ranking   core.Config `koanf:"ranking"`
	Embedding ai.Config   `koanf:"embedding"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ranking:   *core.DefaultConfig(),
		Embedding: *ai.DefaultConfig(),
	}
}

// Validate checks both sections of the configuration.
func (c *Config) Validate() error {
	if err := c.Ranking.Validate(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if err := c.Embedding.Validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, if path is not empty, then applies
// SECTIONRANK_* environment overrides on top of the defaults. The result is
// validated before it is returned.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, info.Size(), maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// envKey maps SECTIONRANK_SECTION_FIELD_NAME to section.field_name.
// The fusion weights are the one nested group below a section.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	if rest, nested := strings.CutPrefix(field, "weights_"); nested {
		field = "weights." + rest
	}
	return section + "." + field
}
