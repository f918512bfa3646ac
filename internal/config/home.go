package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDirName is the default txtmerge home directory name
const HomeDirName = ".txtmerge"

// HomeEnv overrides the txtmerge home directory
const HomeEnv = "TXTMERGE_HOME"

// Home returns the txtmerge home directory
// Priority order:
//  1. TXTMERGE_HOME environment variable (if set)
//  2. .txtmerge in the current working directory
//
// The directory is created if it doesn't exist
func Home() (string, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, HomeDirName)
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create txtmerge home directory: %w", err)
	}
	return home, nil
}

// HistoryDBPath returns the path of the run history database.
// A configured path wins; otherwise it is $TXTMERGE_HOME/history.db
func HistoryDBPath(cfg *Config) (string, error) {
	if cfg != nil && cfg.History.DBPath != "" {
		return cfg.History.DBPath, nil
	}
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// RunLockPath returns the path of the lock file guarding a single active run
func RunLockPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "run.lock"), nil
}
