// Package config loads the weft configuration file.
//
// Configuration lives at <data dir>/config.yaml. A missing file means
// defaults; a malformed file is an error so typos don't silently fall
// back to different behavior. Zero-valued fields in a partial file are
// filled from the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full weft configuration.
type Config struct {
	// DataDir holds the SQLite database and the config file itself.
	DataDir string `yaml:"data_dir"`

	// MaxContentLength caps stored item content, in bytes.
	MaxContentLength int `yaml:"max_content_length"`

	// MaxSearchResults caps item search and history queries.
	MaxSearchResults int `yaml:"max_search_results"`

	Engine EngineConfig `yaml:"engine"`
}

// EngineConfig tunes the reference engine's thresholds and caps.
type EngineConfig struct {
	ReferenceThreshold float64 `yaml:"reference_threshold"`
	SuggestionFloor    float64 `yaml:"suggestion_floor"`
	SearchKeywords     int     `yaml:"search_keywords"`
	MaxCandidates      int     `yaml:"max_candidates"`
	MaxFocusDepth      int     `yaml:"max_focus_depth"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".weft"),
		MaxContentLength: 4000,
		MaxSearchResults: 20,
		Engine: EngineConfig{
			ReferenceThreshold: 0.7,
			SuggestionFloor:    0.6,
			SearchKeywords:     3,
			MaxCandidates:      20,
			MaxFocusDepth:      5,
		},
	}
}

// Load reads the config file from the default data dir, falling back
// to Default() when the file does not exist.
func Load() (Config, error) {
	def := Default()
	return LoadFile(filepath.Join(def.DataDir, "config.yaml"))
}

// LoadFile reads a specific config file. A missing file yields the
// defaults; a present but unparsable file is an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.merge(file)
	return cfg, nil
}

// merge copies non-zero fields from file over the defaults.
func (c *Config) merge(file Config) {
	if file.DataDir != "" {
		c.DataDir = file.DataDir
	}
	if file.MaxContentLength > 0 {
		c.MaxContentLength = file.MaxContentLength
	}
	if file.MaxSearchResults > 0 {
		c.MaxSearchResults = file.MaxSearchResults
	}
	if file.Engine.ReferenceThreshold > 0 {
		c.Engine.ReferenceThreshold = file.Engine.ReferenceThreshold
	}
	if file.Engine.SuggestionFloor > 0 {
		c.Engine.SuggestionFloor = file.Engine.SuggestionFloor
	}
	if file.Engine.SearchKeywords > 0 {
		c.Engine.SearchKeywords = file.Engine.SearchKeywords
	}
	if file.Engine.MaxCandidates > 0 {
		c.Engine.MaxCandidates = file.Engine.MaxCandidates
	}
	if file.Engine.MaxFocusDepth > 0 {
		c.Engine.MaxFocusDepth = file.Engine.MaxFocusDepth
	}
}
