// Package main implements the tp CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/amonks/taskprompt/internal/config"
	"github.com/amonks/taskprompt/internal/paths"
	"github.com/amonks/taskprompt/task"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tp",
	Short: "taskprompt - reminders and todo lists for agent prompts",
	Long: `taskprompt extracts <reminder> tags from task input, keeps a validated todo
list per task, and renders both as prompt sections.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnvironment,
}

var (
	rootStateDir string
	rootAddr     string
	rootVerbose  bool

	// appConfig is loaded before every command runs.
	appConfig = &config.Config{}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootStateDir, "state-dir", "", "State directory (default $TP_STATE_DIR or ~/.local/state/taskprompt)")
	rootCmd.PersistentFlags().StringVar(&rootAddr, "addr", "", "Talk to a running tp server at this address instead of the state file")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Log task events to stderr")
}

func loadEnvironment(cmd *cobra.Command, args []string) error {
	repoPath, err := getRepoPath()
	if err != nil {
		return err
	}
	if err := loadDotEnv(repoPath); err != nil {
		return err
	}
	cfg, err := config.Load(repoPath)
	if err != nil {
		return err
	}
	appConfig = cfg
	return nil
}

// getRepoPath returns the project root for the current directory.
func getRepoPath() (string, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return "", err
	}
	return resolveRepoRoot(cwd), nil
}

// openManager opens the task manager. The state directory comes from
// --state-dir, then TP_STATE_DIR, then the config file, then the default.
func openManager() (*task.Manager, error) {
	dir := rootStateDir
	if dir == "" && os.Getenv(paths.StateDirEnvVar) == "" {
		dir = appConfig.State.Dir
	}
	opts := task.OpenOptions{
		StateDir: dir,
		Limits:   appConfig.Limits(),
	}
	if rootVerbose {
		opts.Logger = task.NewConsoleLogger(os.Stderr)
	}
	manager, err := task.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open task state: %w", err)
	}
	return manager, nil
}

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func (e exitError) ExitCode() int {
	return e.code
}
