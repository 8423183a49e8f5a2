// Package config handles loading taskprompt.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/amonks/taskprompt/internal/paths"
	"github.com/amonks/taskprompt/todo"
)

// FileName is the project config file name, looked up in the repo root.
const FileName = "taskprompt.toml"

// Config represents the taskprompt.toml configuration file.
type Config struct {
	Todo   Todo   `toml:"todo"`
	Prompt Prompt `toml:"prompt"`
	Server Server `toml:"server"`
	State  State  `toml:"state"`
}

// Todo contains todo validation limits.
type Todo struct {
	// MaxDepth is the deepest nesting accepted by todo updates.
	MaxDepth int `toml:"max-depth"`
	// MaxItems is the largest tree accepted by todo updates.
	MaxItems int `toml:"max-items"`
}

// Prompt contains prompt assembly settings.
type Prompt struct {
	// Template selects the prompt template rendered by `tp prompt render`.
	Template string `toml:"template"`
}

// DefaultPort is the RPC server port used when none is configured.
const DefaultPort = 8765

// Server contains RPC server settings.
type Server struct {
	Port int `toml:"port"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log-level"`
}

// Addr returns the loopback address the RPC server listens on.
func (s Server) Addr() string {
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("127.0.0.1:%d", port)
}

// State contains state storage settings.
type State struct {
	// Dir overrides the state directory.
	Dir string `toml:"dir"`
}

// Limits returns the configured todo limits. Unset values fall back to the
// todo package defaults.
func (c *Config) Limits() todo.Limits {
	limits := todo.DefaultLimits()
	if c == nil {
		return limits
	}
	if c.Todo.MaxDepth > 0 {
		limits.MaxDepth = c.Todo.MaxDepth
	}
	if c.Todo.MaxItems > 0 {
		limits.MaxItems = c.Todo.MaxItems
	}
	return limits
}

// Load loads configuration from the repo root and the global config file.
// Returns an empty config if no config files exist.
func Load(repoPath string) (*Config, error) {
	globalPath, err := paths.DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(repoPath, FileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, projectMeta)
	if err := validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, toml.MetaData{}, fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Todo.MaxDepth = mergeInt(projectMeta.IsDefined("todo", "max-depth"), projectCfg.Todo.MaxDepth, globalCfg.Todo.MaxDepth)
	merged.Todo.MaxItems = mergeInt(projectMeta.IsDefined("todo", "max-items"), projectCfg.Todo.MaxItems, globalCfg.Todo.MaxItems)
	merged.Prompt.Template = mergeString(projectMeta.IsDefined("prompt", "template"), projectCfg.Prompt.Template, globalCfg.Prompt.Template)
	merged.Server.Port = mergeInt(projectMeta.IsDefined("server", "port"), projectCfg.Server.Port, globalCfg.Server.Port)
	merged.Server.LogLevel = mergeString(projectMeta.IsDefined("server", "log-level"), projectCfg.Server.LogLevel, globalCfg.Server.LogLevel)
	merged.State.Dir = mergeString(projectMeta.IsDefined("state", "dir"), projectCfg.State.Dir, globalCfg.State.Dir)
	return &merged
}

func validate(cfg *Config) error {
	if cfg.Todo.MaxDepth < 0 {
		return fmt.Errorf("todo.max-depth must not be negative: %d", cfg.Todo.MaxDepth)
	}
	if cfg.Todo.MaxItems < 0 {
		return fmt.Errorf("todo.max-items must not be negative: %d", cfg.Todo.MaxItems)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	switch strings.ToLower(cfg.Server.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("server.log-level must be one of debug, info, warn, error: %q", cfg.Server.LogLevel)
	}
	return nil
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func mergeInt(projectDefined bool, projectValue, globalValue int) int {
	if projectDefined {
		return projectValue
	}
	return globalValue
}
