package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "tp" {
		t.Fatalf("expected root command name tp, got %q", rootCmd.Use)
	}
}

func TestResolveRepoRootFindsMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "taskprompt.toml"), nil, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("create nested dir: %v", err)
	}

	if got := resolveRepoRoot(nested); got != root {
		t.Fatalf("expected %q, got %q", root, got)
	}
}

func TestResolveRepoRootFallsBackToPath(t *testing.T) {
	dir := t.TempDir()
	if got := resolveRepoRoot(dir); got != dir {
		t.Fatalf("expected %q, got %q", dir, got)
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	contents := "TP_TEST_FROM_DOTENV=loaded\nTP_TEST_PRESET=dotenv\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(contents), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("TP_TEST_PRESET", "environment")
	t.Setenv("TP_TEST_FROM_DOTENV", "")
	os.Unsetenv("TP_TEST_FROM_DOTENV")

	if err := loadDotEnv(dir); err != nil {
		t.Fatalf("load .env: %v", err)
	}
	if got := os.Getenv("TP_TEST_FROM_DOTENV"); got != "loaded" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("TP_TEST_PRESET"); got != "environment" {
		t.Fatalf("expected environment to win, got %q", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := loadDotEnv(t.TempDir()); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestExitErrorCode(t *testing.T) {
	err := exitError{code: 3}
	if err.ExitCode() != 3 || err.Error() != "exit status 3" {
		t.Fatalf("unexpected exit error %v", err)
	}
}
