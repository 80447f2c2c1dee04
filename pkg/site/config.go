// Package site builds a static site out of a vault of posts.
package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the site manifest, looked up at the vault root.
const ConfigFile = "site.yaml"

// Config describes the site identity and build targets. All fields have
// working defaults so a bare vault still builds.
type Config struct {
	Title   string `yaml:"title"`
	Author  string `yaml:"author"`
	BaseURL string `yaml:"baseUrl"`
	// Output is the build directory, relative to the vault root unless
	// absolute.
	Output string `yaml:"output"`
}

func defaultConfig() Config {
	return Config{
		Title:  "inkwell",
		Output: "public",
	}
}

// LoadConfig reads site.yaml from the vault root, layering environment
// overrides on top. A .env file next to the manifest is honoured when
// present; INKWELL_* variables win over both.
func LoadConfig(vaultPath string) (Config, error) {
	cfg := defaultConfig()

	// Missing .env is the common case, not an error.
	_ = godotenv.Load(filepath.Join(vaultPath, ".env"))

	data, err := os.ReadFile(filepath.Join(vaultPath, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", ConfigFile, err)
		}
	case os.IsNotExist(err):
		// Defaults suffice.
	default:
		return Config{}, fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	applyEnv(&cfg)

	if cfg.Output == "" {
		cfg.Output = "public"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("INKWELL_TITLE"); v != "" {
		cfg.Title = v
	}
	if v := os.Getenv("INKWELL_AUTHOR"); v != "" {
		cfg.Author = v
	}
	if v := os.Getenv("INKWELL_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("INKWELL_OUTPUT"); v != "" {
		cfg.Output = v
	}
}

// OutputDir resolves the build directory against the vault root.
func (c Config) OutputDir(vaultPath string) string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(vaultPath, c.Output)
}
