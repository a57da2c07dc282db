package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

type Config struct {
	Version  int      `toml:"version"`
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Exclude  Exclude  `toml:"exclude"`
	Watch    Watch    `toml:"watch"`
	DB       Database `toml:"db"`
	Output   Output   `toml:"output"`
}

type Paths struct {
	// MetadataDir overrides the default output/<project_basename> layout
	// produced by the extractor.
	MetadataDir string `toml:"metadata_dir"`
	OutputDir   string `toml:"output_dir"`
}

type Analysis struct {
	EntryFunction  string   `toml:"entry_function"`
	InitPatterns   []string `toml:"init_patterns"`
	MaxModuleBytes int64    `toml:"max_module_bytes"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Database struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Output struct {
	Structure string `toml:"structure"`
	Mermaid   string `toml:"mermaid"`
	DOT       string `toml:"dot"`
	TSV       string `toml:"tsv"`
	CallTree  string `toml:"call_tree"`
}

const defaultMaxModuleBytes = 128 * 1024

func defaultInitPatterns() []string {
	return []string{"init", "initialize", "config", "configure", "setup", "start", "begin"}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateAnalysis(&cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Analysis.EntryFunction) == "" {
		cfg.Analysis.EntryFunction = "main"
	}
	if len(cfg.Analysis.InitPatterns) == 0 {
		cfg.Analysis.InitPatterns = defaultInitPatterns()
	}
	if cfg.Analysis.MaxModuleBytes <= 0 {
		cfg.Analysis.MaxModuleBytes = defaultMaxModuleBytes
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}

	if strings.TrimSpace(cfg.Output.Structure) == "" {
		cfg.Output.Structure = "module_structure.json"
	}
}

// MetadataDir resolves the directory holding the extractor's documents for
// the given project, following the extractor's output/<basename> layout
// unless overridden.
func (c *Config) MetadataDir(projectDir string) string {
	if strings.TrimSpace(c.Paths.MetadataDir) != "" {
		return c.Paths.MetadataDir
	}
	return filepath.Join("output", filepath.Base(filepath.Clean(projectDir)))
}

// OutputDir resolves where generated artifacts land, defaulting to the
// metadata directory.
func (c *Config) OutputDir(projectDir string) string {
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		return c.Paths.OutputDir
	}
	return c.MetadataDir(projectDir)
}

// ProjectKey returns the history namespace for a project.
func (c *Config) ProjectKey(projectDir string) string {
	if strings.TrimSpace(c.DB.ProjectKey) != "" {
		return c.DB.ProjectKey
	}
	return filepath.Base(filepath.Clean(projectDir))
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	if strings.TrimSpace(cfg.Analysis.EntryFunction) == "" {
		return fmt.Errorf("analysis.entry_function must not be empty")
	}
	for i, pattern := range cfg.Analysis.InitPatterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("analysis.init_patterns[%d] must not be empty", i)
		}
	}
	if cfg.Analysis.MaxModuleBytes <= 0 {
		return fmt.Errorf("analysis.max_module_bytes must be positive, got %d", cfg.Analysis.MaxModuleBytes)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d]: invalid pattern %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d]: invalid pattern %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}
	return nil
}
