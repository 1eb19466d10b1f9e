// Package paths decides where boardtree keeps its configuration and its
// document stores. The CLI asks this package exactly once per run; every
// other component receives the resolved directories through Config.
// See docs/ARCHITECTURE.md § Configuration.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Directory names used when nothing else is configured. Both are created
// relative to whatever location wins the precedence below.
const (
	DefaultConfigDirName = ".boardtree"
	DefaultDataDirName   = ".boardtree-db"
)

// Environment overrides, checked after flags and before any default.
const (
	EnvConfigDir = "BOARDTREE_CONFIG_DIR"
	EnvDataDir   = "BOARDTREE_DATA_DIR"
)

// platformDir indirects the OS lookups so tests can substitute fixed
// directories without touching the real environment.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns where config.yaml lives when no flag or
// environment override is present. On Linux this honors XDG_CONFIG_HOME
// with ~/.config as the fallback; everywhere else os.UserConfigDir decides
// (Application Support on macOS, %APPDATA% on Windows), with a boardtree
// subdirectory appended in all cases.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "boardtree"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "boardtree"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "boardtree"), nil
	}
}

// DefaultDataDir is the data-directory counterpart of DefaultConfigDir.
// Linux separates data from config via XDG_DATA_HOME (fallback
// ~/.local/share); macOS and Windows keep both under the same per-user
// application directory.
func DefaultDataDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "boardtree"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "boardtree"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "boardtree"), nil
	}
}

// ResolveConfigDir picks the configuration directory. An explicit flag
// wins, then BOARDTREE_CONFIG_DIR, then the platform default. Flag and
// environment values are made absolute so later chdir calls cannot move
// the config out from under an open session.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the directory holding the page stores. Precedence:
// explicit flag, then the data_dir key from config.yaml, then
// BOARDTREE_DATA_DIR, and finally .boardtree-db under the current working
// directory. The CWD fallback keeps a flagless run self-contained.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
