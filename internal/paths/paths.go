package paths

import (
	"fmt"
	"os"
	"path/filepath"

	internalstrings "github.com/amonks/taskprompt/internal/strings"
)

// StateDirEnvVar overrides the state directory when set.
const StateDirEnvVar = "TP_STATE_DIR"

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// DefaultStateDir returns the taskprompt state directory, honoring
// TP_STATE_DIR.
func DefaultStateDir() (string, error) {
	if dir := internalstrings.TrimSpace(os.Getenv(StateDirEnvVar)); dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "taskprompt"), nil
}

// DefaultConfigPath returns the global config file location.
func DefaultConfigPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "taskprompt", "config.toml"), nil
}

// WorkingDir returns the current working directory.
func WorkingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}
