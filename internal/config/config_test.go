package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Dir != DefaultDir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, DefaultDir)
	}
	if cfg.Jobs != 1 {
		t.Errorf("Jobs = %d, want 1", cfg.Jobs)
	}
	if cfg.Pyright != DefaultPyright {
		t.Errorf("Pyright = %q, want %q", cfg.Pyright, DefaultPyright)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	data := `dir: ./tests/typesafety
exclude:
  - "**/_*.py"
jobs: 4
fail_fast: true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Dir != "tests/typesafety" {
		t.Errorf("Dir = %q, want %q", cfg.Dir, "tests/typesafety")
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "**/_*.py" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", cfg.Jobs)
	}
	if !cfg.FailFast {
		t.Error("FailFast = false, want true")
	}
	// Unset fields keep defaults.
	if cfg.Pyright != DefaultPyright {
		t.Errorf("Pyright = %q, want default", cfg.Pyright)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "bad_yaml", data: "dir: [", want: "unmarshal"},
		{name: "absolute_dir", data: "dir: /abs/path", want: "must be relative"},
		{name: "negative_jobs", data: "jobs: -2", want: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FileName)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParse_EmptyDirFallsBackToDefault(t *testing.T) {
	cfg, err := Parse([]byte("dir: \"\"\njobs: 0\n"), FileName)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Dir != DefaultDir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, DefaultDir)
	}
	if cfg.Jobs != 1 {
		t.Errorf("Jobs = %d, want 1", cfg.Jobs)
	}
}

func TestNormalize_OverriddenDir(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"./typesafety", "typesafety"},
		{"././tests/types", "tests/types"},
		{"typesafety", "typesafety"},
		{".", DefaultDir},
		{"", DefaultDir},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dir = tt.dir
			cfg.Normalize()
			if cfg.Dir != tt.want {
				t.Errorf("Dir = %q, want %q", cfg.Dir, tt.want)
			}
		})
	}
}
