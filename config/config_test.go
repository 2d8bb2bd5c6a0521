package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Repository.Path != "." {
		t.Errorf("Repository.Path = %q, expected %q", cfg.Repository.Path, ".")
	}
	if cfg.Repository.Ref != "HEAD" {
		t.Errorf("Repository.Ref = %q, expected %q", cfg.Repository.Ref, "HEAD")
	}
	if cfg.Build.Workers != 1 {
		t.Errorf("Build.Workers = %d, expected 1", cfg.Build.Workers)
	}
	if cfg.Build.MaxTreeDepth != 1000 {
		t.Errorf("Build.MaxTreeDepth = %d, expected 1000", cfg.Build.MaxTreeDepth)
	}
	if cfg.Build.MaxCommits != 0 {
		t.Errorf("Build.MaxCommits = %d, expected 0", cfg.Build.MaxCommits)
	}
	if cfg.Render.Format != "mermaid" {
		t.Errorf("Render.Format = %q, expected %q", cfg.Render.Format, "mermaid")
	}
	if cfg.Render.Direction != "TD" {
		t.Errorf("Render.Direction = %q, expected %q", cfg.Render.Direction, "TD")
	}
	if cfg.Visualization.Endpoint != "https://mermaid.live/" {
		t.Errorf("Visualization.Endpoint = %q, expected %q", cfg.Visualization.Endpoint, "https://mermaid.live/")
	}
	if cfg.Output.Path != "" {
		t.Errorf("Output.Path = %q, expected stdout", cfg.Output.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "Zero workers", mutate: func(c *Config) { c.Build.Workers = 0 }, wantErr: "build.workers"},
		{name: "Zero tree depth", mutate: func(c *Config) { c.Build.MaxTreeDepth = 0 }, wantErr: "build.maxTreeDepth"},
		{name: "Negative max commits", mutate: func(c *Config) { c.Build.MaxCommits = -1 }, wantErr: "build.maxCommits"},
		{name: "Negative max files", mutate: func(c *Config) { c.Render.MaxFilesPerNode = -2 }, wantErr: "render.maxFilesPerNode"},
		{name: "Bad include glob", mutate: func(c *Config) { c.Filters.Include = []string{"["} }, wantErr: "invalid glob"},
		{name: "Bad exclude glob", mutate: func(c *Config) { c.Filters.Exclude = []string{"a/[b"} }, wantErr: "filters: invalid glob pattern \"a/[b\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	content := `{
  "repository": {"path": "/srv/repo", "ref": "main"},
  "build": {"workers": 4},
  "filters": {"exclude": ["vendor/**"]}
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := DefaultConfig()
	want.Repository = RepositoryConfig{Path: "/srv/repo", Ref: "main"}
	want.Build.Workers = 4
	want.Filters.Exclude = []string{"vendor/**"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("LoadConfig (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := DefaultConfig()
	cfg.Render.Direction = "LR"
	cfg.Visualization.LiveURL = true
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}
