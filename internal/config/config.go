package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name inside a project directory.
const FileName = "spendwise.yaml"

// Config represents the top-level spendwise.yaml configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Log            LogConfig            `yaml:"log"`
	Categorization CategorizationConfig `yaml:"categorization"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Address        string   `yaml:"address"`
	Mode           string   `yaml:"mode"` // gin mode: debug, release, test
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver  string `yaml:"driver"` // "sqlite" or "mysql"
	DSN     string `yaml:"dsn"`
	LogMode bool   `yaml:"log_mode"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// CategorizationConfig points at an optional keyword rules file.
type CategorizationConfig struct {
	RulesFile string `yaml:"rules_file,omitempty"`
}

// Load reads a spendwise.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        ":8080",
			Mode:           "release",
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "spendwise.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ResolvePaths makes relative file paths (sqlite database, rules file)
// relative to baseDir, normally the directory holding spendwise.yaml.
func (c *Config) ResolvePaths(baseDir string) {
	if c.Database.Driver == "sqlite" && c.Database.DSN != "" && c.Database.DSN != ":memory:" && !filepath.IsAbs(c.Database.DSN) {
		c.Database.DSN = filepath.Join(baseDir, c.Database.DSN)
	}
	if c.Categorization.RulesFile != "" && !filepath.IsAbs(c.Categorization.RulesFile) {
		c.Categorization.RulesFile = filepath.Join(baseDir, c.Categorization.RulesFile)
	}
}
