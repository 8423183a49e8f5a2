// Package testsupport holds helpers shared by package tests and CLI scripts.
package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/amonks/taskprompt/todo"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	tpPath    string
	buildErr  error
)

// BuildTP builds the tp binary once and returns its path.
func BuildTP(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "tp-bin-")
		if err != nil {
			buildErr = err
			return
		}

		tpPath = filepath.Join(binDir, "tp")
		cmd := exec.Command("go", "build", "-o", tpPath, "./cmd/tp")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build tp: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return tpPath
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TP", BuildTP(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("TP_STATE_DIR", filepath.Join(homeDir, ".local", "state", "taskprompt"))
	env.Setenv("NO_COLOR", "1")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTodoCount checks the counts in a `tp todo show --json` document.
func CmdTodoCount(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 3 {
		ts.Fatalf("usage: todocount FILE TOTAL COMPLETED")
	}
	total, err := strconv.Atoi(args[1])
	if err != nil {
		ts.Fatalf("parse total: %v", err)
	}
	completed, err := strconv.Atoi(args[2])
	if err != nil {
		ts.Fatalf("parse completed: %v", err)
	}

	var list todo.List
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &list); err != nil {
		ts.Fatalf("parse todo list: %v", err)
	}

	matches := list.TotalCount == total && list.CompletedCount == completed
	if matches == neg {
		ts.Fatalf("todo counts: got %d total, %d completed; want %d, %d (negated: %v)",
			list.TotalCount, list.CompletedCount, total, completed, neg)
	}
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
