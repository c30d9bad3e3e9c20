package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/hunny0025/armoriq-supervisor/internal/paths"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
)

// Config represents the full ArmorIQ configuration
type Config struct {
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Policies  PoliciesConfig  `mapstructure:"policies"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Log       LogConfig       `mapstructure:"log"`
	Execution ExecutionConfig `mapstructure:"execution"`
}

// SandboxConfig locates the sandbox
type SandboxConfig struct {
	BaseDir        string   `mapstructure:"base_dir"`        // Declared paths resolve against this
	Root           string   `mapstructure:"root"`            // Relative to base_dir
	ProtectedRoots []string `mapstructure:"protected_roots"` // Always HIGH risk
}

// PoliciesConfig locates the capability registry
type PoliciesConfig struct {
	Path string `mapstructure:"path"`
}

// LedgerConfig locates the decision ledger
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ExecutionConfig contains effector settings
type ExecutionConfig struct {
	StatusTimeout time.Duration `mapstructure:"status_timeout"`
	Simulate      bool          `mapstructure:"simulate"`
}

// Load loads configuration from file, environment and bound flags
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from v
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Sandbox.BaseDir == "" {
		cfg.Sandbox.BaseDir = "."
	}

	if cfg.Sandbox.Root == "" {
		cfg.Sandbox.Root = "workspace"
	}

	if len(cfg.Sandbox.ProtectedRoots) == 0 {
		cfg.Sandbox.ProtectedRoots = []string{risk.DefaultProtectedRoot}
	}

	if cfg.Policies.Path == "" {
		cfg.Policies.Path = "policies.yaml"
	}

	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = "history.jsonl"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.Execution.StatusTimeout == 0 {
		cfg.Execution.StatusTimeout = 10 * time.Second
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Sandbox.Root == "" {
		return fmt.Errorf("sandbox root is required")
	}

	if filepath.IsAbs(c.Sandbox.Root) {
		return fmt.Errorf("sandbox root must be relative to base_dir: %s", c.Sandbox.Root)
	}

	if paths.HasSegment(paths.Clean(c.Sandbox.Root), "..") {
		return fmt.Errorf("sandbox root must not leave base_dir: %s", c.Sandbox.Root)
	}

	for _, p := range c.Sandbox.ProtectedRoots {
		if p == "" {
			return fmt.Errorf("protected root must not be empty")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}

	if c.Execution.StatusTimeout < 0 {
		return fmt.Errorf("invalid status_timeout: %s", c.Execution.StatusTimeout)
	}

	return nil
}

// Resolve returns p joined to the base directory unless p is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Sandbox.BaseDir, p)
}
