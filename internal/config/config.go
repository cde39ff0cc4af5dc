// ABOUTME: Tool configuration: source roots, export settings, time zone.
// ABOUTME: JSON file at the XDG config path with ~ expansion.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nmoreno/salud/internal/models"
)

// DefaultTimezone is the fixed local zone readings are resolved in when the
// config does not name one.
const DefaultTimezone = "America/Argentina/Buenos_Aires"

// Config stores salud tool configuration.
type Config struct {
	// AccRoot is the folder holding accuchek_*.json exports.
	AccRoot string `json:"acc_root,omitempty"`

	// FitRoot is the Takeout/Fit directory.
	FitRoot string `json:"fit_root,omitempty"`

	// ExportDir is where export files are written. Defaults to the working
	// directory's "salidas" folder.
	ExportDir string `json:"export_dir,omitempty"`

	// DataDir is the root directory for the SQLite store.
	// Supports ~ expansion. Defaults to ~/.local/share/salud.
	DataDir string `json:"data_dir,omitempty"`

	// Timezone names the IANA zone used to resolve reading timestamps and
	// synthesize midnight rows.
	Timezone string `json:"timezone,omitempty"`

	// Fields selects and orders the exported columns. Defaults to the full
	// canonical column set.
	Fields []string `json:"fields,omitempty"`
}

// GetAccRoot returns the Accu-Chek root with ~ expanded.
func (c *Config) GetAccRoot() string { return ExpandPath(c.AccRoot) }

// GetFitRoot returns the Google Fit root with ~ expanded.
func (c *Config) GetFitRoot() string { return ExpandPath(c.FitRoot) }

// GetExportDir returns the export directory, defaulting to ./salidas.
func (c *Config) GetExportDir() string {
	if c.ExportDir == "" {
		return "salidas"
	}
	return ExpandPath(c.ExportDir)
}

// GetDataDir returns the data directory with ~ expanded, defaulting to the
// standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "salud.db")
}

// GetFields returns the configured export columns, defaulting to the full
// canonical set.
func (c *Config) GetFields() []string {
	if len(c.Fields) == 0 {
		return models.RowColumns
	}
	return c.Fields
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// DataDir returns the default data directory following the XDG spec.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "salud")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "salud", "config.json")
}

// Load reads config from disk. A missing file yields an empty config.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
