// Package config provides configuration loading and structs for the imi server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Server ServerConfig `yaml:"server"`
	Corpus CorpusConfig `yaml:"corpus"`
	Space  SpaceConfig  `yaml:"space"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig holds settings for the initial corpus and tokenization.
type CorpusConfig struct {
	// Directories are scanned at startup; every matching file becomes one
	// document of the initial term-document matrix.
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	// MinDocFreq is the minimum number of distinct documents a term must
	// occur in to enter the vocabulary.
	MinDocFreq int `yaml:"min_doc_freq"`
	// ExtraStopWords are dropped by the tokenizer in addition to the built-in
	// English list.
	ExtraStopWords []string `yaml:"extra_stop_words"`
}

// SpaceConfig holds concept-space settings.
type SpaceConfig struct {
	// Rank is the truncation rank k of the concept space.
	Rank int `yaml:"rank"`
	// DefaultThreshold is applied when a query does not set one.
	DefaultThreshold float64 `yaml:"default_threshold"`
	// StrictFoldIn rejects fold-in documents referencing unknown terms
	// instead of silently dropping those counts.
	StrictFoldIn bool `yaml:"strict_fold_in"`
	// FoldNewTerms folds a document's unknown terms into the space after the
	// document itself (two-phase fold-in).
	FoldNewTerms bool `yaml:"fold_new_terms"`
	// RebuildAfter suggests a full re-decomposition once this many items
	// have been folded in since the last build. Zero disables the hint.
	RebuildAfter int `yaml:"rebuild_after"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true
// when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Corpus.Directories {
		cfg.Corpus.Directories[i] = expandPath(cfg.Corpus.Directories[i], configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
