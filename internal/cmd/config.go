package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI's tunables. All fields are optional; the zero
// config is usable.
type Config struct {
	// HistoryFile is where the debug REPL persists its input history.
	HistoryFile string `yaml:"history_file"`
	// SessionTTL bounds how long an idle debug session is kept.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// MaxSteps aborts a run that exceeds this many steps (0 = default).
	MaxSteps int `yaml:"max_steps"`
	// NoColor disables styled output, same as --no-color.
	NoColor bool `yaml:"no_color"`
}

func defaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		HistoryFile: filepath.Join(home, ".stepscope_history"),
		SessionTTL:  30 * time.Minute,
		MaxSteps:    100000,
	}
}

// loadConfig reads the YAML config at path, or the default location when
// path is empty. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".stepscope.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
