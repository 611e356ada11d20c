package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ramonehamilton/Commander-Companion/internal/deck"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Build.TagMode != "OR" {
		t.Errorf("Expected default tag mode OR, got %s", config.Build.TagMode)
	}
	if config.Build.IdealCounts[deck.CategoryLands] != 35 {
		t.Errorf("Expected default lands target 35, got %d", config.Build.IdealCounts[deck.CategoryLands])
	}
	if !config.Pool.AutoMigrate {
		t.Error("Expected auto-migrate enabled by default")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	config, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if config.Build.ComboBalance != "mix" {
		t.Errorf("Expected default combo balance mix, got %s", config.Build.ComboBalance)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	config := DefaultConfig()
	config.Pool.DBPath = "/tmp/cards.db"
	config.Build.ComboTarget = 3
	config.Build.IdealCounts[deck.CategoryCreatures] = 25

	if err := config.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Pool.DBPath != "/tmp/cards.db" {
		t.Errorf("Expected pool path round-tripped, got %s", loaded.Pool.DBPath)
	}
	if loaded.Build.ComboTarget != 3 {
		t.Errorf("Expected combo target 3, got %d", loaded.Build.ComboTarget)
	}
	if loaded.Build.IdealCounts[deck.CategoryCreatures] != 25 {
		t.Errorf("Expected creatures target 25, got %d", loaded.Build.IdealCounts[deck.CategoryCreatures])
	}
}

func TestLoadFromInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected parse error for invalid TOML")
	}
}
