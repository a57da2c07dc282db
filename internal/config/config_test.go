package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modmap.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.EntryFunction != "main" {
		t.Errorf("expected entry function main, got %q", cfg.Analysis.EntryFunction)
	}
	if cfg.Analysis.MaxModuleBytes != 128*1024 {
		t.Errorf("expected 128 KiB ceiling, got %d", cfg.Analysis.MaxModuleBytes)
	}
	if len(cfg.Analysis.InitPatterns) == 0 {
		t.Error("expected default init patterns")
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Output.Structure != "module_structure.json" {
		t.Errorf("unexpected structure output name %q", cfg.Output.Structure)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version = 1

[analysis]
entry_function = "app_main"
init_patterns = ["boot", "hw_init"]
max_module_bytes = 65536

[db]
enabled = true
path = "runs.db"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.EntryFunction != "app_main" {
		t.Errorf("expected app_main, got %q", cfg.Analysis.EntryFunction)
	}
	if cfg.Analysis.MaxModuleBytes != 65536 {
		t.Errorf("expected 65536, got %d", cfg.Analysis.MaxModuleBytes)
	}
	if len(cfg.Analysis.InitPatterns) != 2 {
		t.Errorf("expected 2 patterns, got %v", cfg.Analysis.InitPatterns)
	}
	if !cfg.DB.Enabled || cfg.DB.Path != "runs.db" {
		t.Errorf("unexpected db config: %+v", cfg.DB)
	}
}

func TestLoad_DebounceString(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version = 1

[watch]
debounce = "1s"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
}

func TestLoad_RejectsBadVersion(t *testing.T) {
	_, err := Load(writeConfig(t, "version = 9\n"))
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected version error, got %v", err)
	}
}

func TestLoad_RejectsBadGlob(t *testing.T) {
	_, err := Load(writeConfig(t, `
version = 1

[exclude]
files = ["[unclosed"]
`))
	if err == nil {
		t.Error("expected invalid glob to be rejected")
	}
}

func TestLoad_RejectsEmptyInitPattern(t *testing.T) {
	_, err := Load(writeConfig(t, `
version = 1

[analysis]
init_patterns = ["init", " "]
`))
	if err == nil {
		t.Error("expected empty init pattern to be rejected")
	}
}

func TestMetadataDirLayout(t *testing.T) {
	cfg := Default()
	got := cfg.MetadataDir("/home/dev/projects/freertos")
	want := filepath.Join("output", "freertos")
	if got != want {
		t.Errorf("MetadataDir = %q, want %q", got, want)
	}

	cfg.Paths.MetadataDir = "/tmp/meta"
	if cfg.MetadataDir("whatever") != "/tmp/meta" {
		t.Error("explicit metadata_dir should win")
	}
}

func TestProjectKey(t *testing.T) {
	cfg := Default()
	if cfg.ProjectKey("/src/zephyr") != "zephyr" {
		t.Errorf("unexpected project key %q", cfg.ProjectKey("/src/zephyr"))
	}
	cfg.DB.ProjectKey = "custom"
	if cfg.ProjectKey("/src/zephyr") != "custom" {
		t.Error("explicit project key should win")
	}
}
