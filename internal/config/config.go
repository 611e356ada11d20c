// Package config loads and saves the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

// Config represents the application configuration.
type Config struct {
	// Pool configuration
	Pool PoolConfig `toml:"pool"`

	// Combo dataset configuration
	Combos CombosConfig `toml:"combos"`

	// Build defaults
	Build BuildConfig `toml:"build"`

	// Export configuration
	Export ExportConfig `toml:"export"`
}

// PoolConfig contains card pool database settings.
type PoolConfig struct {
	DBPath      string `toml:"db_path"`      // Path to the card pool SQLite database
	AutoMigrate bool   `toml:"auto_migrate"` // Apply pending schema migrations on open
}

// CombosConfig contains curated combo dataset settings.
type CombosConfig struct {
	FilePath string `toml:"file_path"` // Path to the combo dataset YAML
	Watch    bool   `toml:"watch"`     // Hot-reload the dataset when the file changes
}

// BuildConfig contains default build parameters.
type BuildConfig struct {
	IdealCounts  map[string]int `toml:"ideal_counts"`  // Default category targets
	TagMode      string         `toml:"tag_mode"`      // AND or OR
	ComboBalance string         `toml:"combo_balance"` // early, late, or mix
	ComboTarget  int            `toml:"combo_target"`  // Desired complete combo pairs
}

// ExportConfig contains export output settings.
type ExportConfig struct {
	Dir        string `toml:"dir"`         // Directory for exported decklists
	CurveChart bool   `toml:"curve_chart"` // Also render the mana-curve chart HTML
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Pool: PoolConfig{
			DBPath:      "",
			AutoMigrate: true,
		},
		Combos: CombosConfig{
			FilePath: "",
			Watch:    false,
		},
		Build: BuildConfig{
			IdealCounts: map[string]int{
				deck.CategoryRamp:          10,
				deck.CategoryLands:         35,
				deck.CategoryCreatures:     28,
				deck.CategoryRemoval:       10,
				deck.CategoryWipes:         2,
				deck.CategoryCardAdvantage: 10,
				deck.CategoryProtection:    4,
			},
			TagMode:      "OR",
			ComboBalance: "mix",
			ComboTarget:  2,
		},
		Export: ExportConfig{
			Dir:        "",
			CurveChart: true,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".commander-companion")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
