package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "chatsession"

// DataPaths holds the detected per-user locations for the database and config
type DataPaths struct {
	DataDir    string // directory holding the session database
	ConfigDir  string // directory holding config.yaml
	LegacyDir  string // ~/.chatsession, used when it already exists
	usesLegacy bool
}

// DetectDataPaths resolves the data and config directories for the current OS.
// An existing ~/.chatsession directory takes precedence so older installs keep their history.
func DetectDataPaths() (DataPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	legacy := filepath.Join(home, "."+appDirName)
	if info, err := os.Stat(legacy); err == nil && info.IsDir() {
		return DataPaths{DataDir: legacy, ConfigDir: legacy, LegacyDir: legacy, usesLegacy: true}, nil
	}

	var dataDir, configDir string
	switch runtime.GOOS {
	case "darwin":
		dataDir = filepath.Join(home, "Library/Application Support", appDirName)
		configDir = dataDir
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		dataDir = filepath.Join(base, appDirName)
		configDir = dataDir
	default:
		dataDir = filepath.Join(envOr("XDG_DATA_HOME", filepath.Join(home, ".local/share")), appDirName)
		configDir = filepath.Join(envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config")), appDirName)
	}

	return DataPaths{DataDir: dataDir, ConfigDir: configDir, LegacyDir: legacy}, nil
}

// DatabasePath returns the path to the session database
func (p DataPaths) DatabasePath() string {
	return filepath.Join(p.DataDir, appDirName+".db")
}

// ConfigPath returns the path to the optional YAML config file
func (p DataPaths) ConfigPath() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// UsesLegacyDir reports whether the legacy ~/.chatsession directory was selected
func (p DataPaths) UsesLegacyDir() bool {
	return p.usesLegacy
}

// DatabaseExists checks if the session database has been created
func (p DataPaths) DatabaseExists() bool {
	_, err := os.Stat(p.DatabasePath())
	return err == nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
