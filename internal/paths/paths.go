// Package paths resolves the configuration and data directories.
//
// Precedence for both is: command-line flag, then environment variable,
// then (data dir only) the value from config.yaml, then the platform
// default. Every resolved path is absolute.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "contentdesk"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CONTENTDESK_CONFIG_DIR"
	EnvDataDir   = "CONTENTDESK_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/contentdesk (fallback ~/.config/contentdesk)
// macOS:   ~/Library/Application Support/contentdesk
// Windows: %APPDATA%/contentdesk
func DefaultConfigDir() (string, error) {
	return platformPath("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/contentdesk (fallback ~/.local/share/contentdesk)
// macOS:   ~/Library/Application Support/contentdesk
// Windows: %APPDATA%/contentdesk
func DefaultDataDir() (string, error) {
	return platformPath("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func platformPath(xdgVar, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > CONTENTDESK_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return resolve(flag, os.Getenv(EnvConfigDir), DefaultConfigDir)
}

// ResolveDataDir returns the data directory:
// flag > CONTENTDESK_DATA_DIR > config.yaml data_dir > DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(flag, os.Getenv(EnvDataDir), func() (string, error) {
		if configValue != "" {
			return filepath.Abs(configValue)
		}
		return DefaultDataDir()
	})
}

func resolve(flag, env string, fallback func() (string, error)) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env != "" {
		return filepath.Abs(env)
	}
	return fallback()
}
