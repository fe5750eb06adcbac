package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration for smwjoin
type Config struct {
	// Models is the list of model names tried when no model is given
	// on the command line. Absent models are skipped silently.
	Models []string `json:"models,omitempty"`

	// RequireModel makes a missing or unusable model block fatal
	// instead of a warning. It only applies when a model name was
	// requested explicitly.
	RequireModel bool `json:"requireModel,omitempty"`

	// Check contains join-map policy check configuration
	Check CheckConfig `json:"check,omitempty"`
}

// CheckConfig controls the policy checks run over extracted join maps
type CheckConfig struct {
	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `json:"rules,omitempty"`

	// PolicyDir points at a directory of additional .rego policies.
	// Empty means the built-in policies only.
	PolicyDir string `json:"policyDir,omitempty"`

	// Disabled turns the check stage off entirely
	Disabled bool `json:"disabled,omitempty"`
}

// defaultModels is the built-in list of panel models scanned when no
// model is requested. Order matters: it is the scan order.
var defaultModels = []string{
	"TSW-560",
	"TSW-560-NAV",
	"TSW-760",
	"TSW-1060",
	"TSW-570",
	"TSW-770",
	"TSW-1070",
	"TS-1542",
	"TPMC-4SM",
	"DGE-100",
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Models:       append([]string(nil), defaultModels...),
		RequireModel: false,
		Check: CheckConfig{
			Rules: map[string]string{},
		},
	}
}

// Load finds and loads the configuration file
// Search order:
//  1. ./smwjoin.json (current working directory)
//  2. ./.smwjoin.json (current working directory)
//  3. <input dir>/smwjoin.json (if different from cwd)
//  4. ~/.config/smwjoin/config.json
//
// Returns DefaultConfig if no config file is found
func Load(inputPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "smwjoin.json"),
		filepath.Join(cwd, ".smwjoin.json"),
	}

	inputDir := inputPath
	if info, err := os.Stat(inputPath); err == nil && !info.IsDir() {
		inputDir = filepath.Dir(inputPath)
	}
	if absDir, err := filepath.Abs(inputDir); err == nil && absDir != cwd {
		searchPaths = append(searchPaths,
			filepath.Join(inputDir, "smwjoin.json"),
			filepath.Join(inputDir, ".smwjoin.json"),
		)
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "smwjoin", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if len(c.Models) == 0 {
		c.Models = append([]string(nil), defaultModels...)
	}
	if c.Check.Rules == nil {
		c.Check.Rules = make(map[string]string)
	}
}

// Save writes the configuration to a file
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetRuleSeverity returns the severity for a check rule, or the
// default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Check.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Check.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}
