package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Custom target modes
const (
	// ModeRemove deletes each configured path entirely
	ModeRemove = "remove"
	// ModeContents empties each configured directory but keeps it
	ModeContents = "contents"
	// ModeReset deletes and recreates each configured directory
	ModeReset = "reset"
)

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Probe   ProbeConfig   `yaml:"probe"`
	Run     RunConfig     `yaml:"run"`
	Targets TargetsConfig `yaml:"targets"`
}

// LogConfig contains durable log settings
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// ProbeConfig contains size measurement settings
type ProbeConfig struct {
	DuPath  string        `yaml:"du_path"`
	Timeout time.Duration `yaml:"timeout"`
}

// RunConfig contains orchestration settings
type RunConfig struct {
	MeasureConcurrency int           `yaml:"measure_concurrency"`
	CommandTimeout     time.Duration `yaml:"command_timeout"`
	LookupTimeout      time.Duration `yaml:"lookup_timeout"`
}

// TargetsConfig adjusts the built-in catalog
type TargetsConfig struct {
	Disabled               []string       `yaml:"disabled,omitempty"`
	ProtectedCachePrefixes []string       `yaml:"protected_cache_prefixes,omitempty"`
	Custom                 []CustomTarget `yaml:"custom,omitempty"`
}

// CustomTarget is a user-defined path-based cleanup target
type CustomTarget struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Paths       []string `yaml:"paths"`
	Mode        string   `yaml:"mode"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Log.File == "" {
		c.Log.File = "~/disk_sweep.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Probe.DuPath == "" {
		c.Probe.DuPath = "du"
	}
	if c.Probe.Timeout <= 0 {
		c.Probe.Timeout = 30 * time.Second
	}
	if c.Run.MeasureConcurrency <= 0 {
		c.Run.MeasureConcurrency = 1
	}
	if c.Run.CommandTimeout <= 0 {
		c.Run.CommandTimeout = 5 * time.Minute
	}
	if c.Run.LookupTimeout <= 0 {
		c.Run.LookupTimeout = 10 * time.Second
	}
	if c.Targets.ProtectedCachePrefixes == nil {
		c.Targets.ProtectedCachePrefixes = []string{"com.apple", "Homebrew", "pip", "CocoaPods", "Yarn"}
	}
	for i := range c.Targets.Custom {
		if c.Targets.Custom[i].Mode == "" {
			c.Targets.Custom[i].Mode = ModeRemove
		}
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	for _, p := range c.Targets.ProtectedCachePrefixes {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: protected cache prefixes must not be blank", ErrInvalidPrefix)
		}
	}

	seen := make(map[string]bool)
	for _, ct := range c.Targets.Custom {
		name := strings.TrimSpace(ct.Name)
		if name == "" {
			return fmt.Errorf("custom target name is required")
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateTarget, name)
		}
		seen[key] = true

		if len(ct.Paths) == 0 {
			return fmt.Errorf("custom target %q needs at least one path", name)
		}
		if !validMode(ct.Mode) {
			return fmt.Errorf("%w: %q for custom target %q", ErrInvalidMode, ct.Mode, name)
		}
	}
	return nil
}

func validMode(mode string) bool {
	switch mode {
	case ModeRemove, ModeContents, ModeReset:
		return true
	default:
		return false
	}
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultPath returns ~/.config/disk-sweep/config.yaml
func DefaultPath(home string) string {
	return filepath.Join(home, ".config", "disk-sweep", "config.yaml")
}

// ExpandHome replaces a leading ~ with home
func ExpandHome(path, home string) string {
	switch {
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:])
	default:
		return path
	}
}
