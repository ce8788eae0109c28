package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the trailhead configuration.
type Config struct {
	Database  DatabaseConfig    `yaml:"database"`
	Exclude   ExcludeConfig     `yaml:"exclude"`
	Languages map[string]string `yaml:"languages"`
}

// DatabaseConfig controls where the project database is written.
type DatabaseConfig struct {
	// Name is the database file name, relative to the project directory.
	// The .srctrldb extension is appended when missing.
	Name string `yaml:"name"`
	// ClearOnIndex wipes previously recorded data before re-indexing.
	ClearOnIndex bool `yaml:"clear_on_index"`
}

// ExcludeConfig defines patterns to exclude from indexing.
type ExcludeConfig struct {
	Dirs      []string `yaml:"dirs"`
	FilesGlob []string `yaml:"files_glob"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Name:         "trailhead.srctrldb",
			ClearOnIndex: true,
		},
		Exclude: ExcludeConfig{
			Dirs:      []string{"vendor", "third_party", "testdata", ".git"},
			FilesGlob: []string{"*.pb.go", "*_gen.go", "*_mock.go"},
		},
		Languages: map[string]string{
			".go": "go",
		},
	}
}

// Load reads configuration from file, falling back to defaults.
// If configPath is empty, it looks for trailhead.yaml in the current
// directory. Missing fields keep their default values.
func Load(configPath string) (*Config, error) {
	defaults := Default()

	if configPath == "" {
		configPath = "trailhead.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return nil, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, err
	}

	defaults.Merge(&fileCfg)
	return defaults, nil
}

// LoadFromDir loads configuration from the specified directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "trailhead.yaml"))
}

// Merge combines another config into this one, with other taking
// precedence.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Database.Name != "" {
		c.Database.Name = other.Database.Name
	}
	c.Database.ClearOnIndex = other.Database.ClearOnIndex
	if len(other.Exclude.Dirs) > 0 {
		c.Exclude.Dirs = other.Exclude.Dirs
	}
	if len(other.Exclude.FilesGlob) > 0 {
		c.Exclude.FilesGlob = other.Exclude.FilesGlob
	}
	if len(other.Languages) > 0 {
		c.Languages = other.Languages
	}
}

// DatabasePath returns the database file path for a project directory.
func (c *Config) DatabasePath(projectDir string) string {
	return filepath.Join(projectDir, c.Database.Name)
}

// IsExcludedDir checks if a directory should be excluded from indexing.
func (c *Config) IsExcludedDir(dir string) bool {
	base := filepath.Base(dir)
	for _, excluded := range c.Exclude.Dirs {
		if base == excluded {
			return true
		}
	}
	return false
}

// IsExcludedFile checks a file name against the exclusion globs.
func (c *Config) IsExcludedFile(path string) bool {
	base := filepath.Base(path)
	for _, glob := range c.Exclude.FilesGlob {
		if matched, err := filepath.Match(glob, base); err == nil && matched {
			return true
		}
	}
	return false
}

// LanguageForFile returns the configured language for a file, or the empty
// string when the extension is not mapped.
func (c *Config) LanguageForFile(path string) string {
	return c.Languages[strings.ToLower(filepath.Ext(path))]
}
