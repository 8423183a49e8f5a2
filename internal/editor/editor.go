// Package editor provides utilities for interactive editing with $EDITOR.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// ErrNoEditor is returned when there is neither a terminal nor $EDITOR.
var ErrNoEditor = errors.New("no editor available: set EDITOR or run from a terminal")

// IsInteractive returns true if stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Edit opens the given file in $EDITOR (or vi as fallback) and waits for it to exit.
// EDITOR may carry arguments, e.g. "code --wait".
// Returns nil if the editor exits with status 0, otherwise returns an error.
func Edit(path string) error {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		if !IsInteractive() {
			return ErrNoEditor
		}
		args = []string{"vi"}
	}

	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor exited with status %d", exitErr.ExitCode())
		}
		return fmt.Errorf("failed to run editor: %w", err)
	}

	return nil
}
