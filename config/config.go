package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/masmgr/commitgraph-go/internal/changeset"
)

// FileName is the configuration file looked up when no path is given.
const FileName = ".commitgraph.json"

// Config is the root configuration structure.
type Config struct {
	Repository    RepositoryConfig    `json:"repository"`
	Build         BuildConfig         `json:"build"`
	Render        RenderConfig        `json:"render"`
	Filters       FilterConfig        `json:"filters"`
	Visualization VisualizationConfig `json:"visualization"`
	Output        OutputConfig        `json:"output"`
}

// RepositoryConfig selects the repository and starting reference.
type RepositoryConfig struct {
	Path string `json:"path"` // Default: "."
	Ref  string `json:"ref"`  // Default: "HEAD"
}

// BuildConfig holds graph construction options.
type BuildConfig struct {
	Workers      int `json:"workers"`      // Default: 1
	MaxTreeDepth int `json:"maxTreeDepth"` // Default: 1000
	MaxCommits   int `json:"maxCommits"`   // 0 = unlimited
}

// RenderConfig holds diagram rendering options.
type RenderConfig struct {
	Format          string `json:"format"`          // Default: "mermaid"
	Direction       string `json:"direction"`       // Default: "TD"
	MaxFilesPerNode int    `json:"maxFilesPerNode"` // 0 = list all
	TopPaths        int    `json:"topPaths"`        // Default: 10
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// Filter returns the path filter described by the section.
func (f FilterConfig) Filter() changeset.Filter {
	return changeset.Filter{Include: f.Include, Exclude: f.Exclude}
}

// VisualizationConfig points at the hosted diagram editor.
type VisualizationConfig struct {
	Endpoint string `json:"endpoint"` // Default: "https://mermaid.live/"
	LiveURL  bool   `json:"liveUrl"`
}

// OutputConfig holds where the rendered graph goes.
type OutputConfig struct {
	Path string `json:"path"` // Empty = stdout
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Path: ".",
			Ref:  "HEAD",
		},
		Build: BuildConfig{
			Workers:      1,
			MaxTreeDepth: 1000,
		},
		Render: RenderConfig{
			Format:    "mermaid",
			Direction: "TD",
			TopPaths:  10,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Visualization: VisualizationConfig{
			Endpoint: "https://mermaid.live/",
		},
	}
}

// Validate reports the first out-of-range or malformed setting.
func (c *Config) Validate() error {
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1, got %d", c.Build.Workers)
	}
	if c.Build.MaxTreeDepth < 1 {
		return fmt.Errorf("build.maxTreeDepth must be at least 1, got %d", c.Build.MaxTreeDepth)
	}
	if c.Build.MaxCommits < 0 {
		return fmt.Errorf("build.maxCommits must not be negative, got %d", c.Build.MaxCommits)
	}
	if c.Render.MaxFilesPerNode < 0 {
		return fmt.Errorf("render.maxFilesPerNode must not be negative, got %d", c.Render.MaxFilesPerNode)
	}
	if err := c.Filters.Filter().Validate(); err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
