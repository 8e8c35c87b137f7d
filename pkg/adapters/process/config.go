package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CommandConfig is one allow-listed external command.
type CommandConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	Timeout     time.Duration     `yaml:"timeout" json:"timeout"`
}

// ConfigFile represents the structure of hooks.yaml.
//
//	submit:
//	  - name: notify
//	    command: ./scripts/notify.sh
//	locator:
//	  name: termux
//	  command: termux-location
//	  args: ["-p", "gps"]
type ConfigFile struct {
	// Submit commands receive every completed listing.
	Submit []CommandConfig `yaml:"submit" json:"submit"`
	// Locator, when set, provides device positions.
	Locator *CommandConfig `yaml:"locator" json:"locator"`
}

// LoadConfig reads a hooks file (YAML or JSON). A missing file yields an empty config.
func LoadConfig(path string) (*ConfigFile, error) {
	cfg := &ConfigFile{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for i, c := range cfg.Submit {
		if c.Name == "" || c.Command == "" {
			return nil, fmt.Errorf("submit hook #%d: name and command are required", i+1)
		}
	}
	if cfg.Locator != nil && cfg.Locator.Command == "" {
		return nil, fmt.Errorf("locator: command is required")
	}
	return cfg, nil
}
