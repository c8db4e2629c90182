package config

import (
	"errors"
	"fmt"
	"strings"

	"disk-sweep/domain/cleanup"
)

// Errors for config management. ErrDuplicateTarget also matches
// cleanup.ErrDuplicateTarget.
var (
	ErrTargetNotFound  = errors.New("target not found")
	ErrDuplicateTarget = fmt.Errorf("target already exists: %w", cleanup.ErrDuplicateTarget)
	ErrInvalidMode     = errors.New("invalid cleanup mode")
	ErrInvalidPrefix   = errors.New("invalid protected prefix")
)

// ConfigManager provides CRUD operations for catalog adjustments
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// --- Custom target CRUD ---

// AddCustomTarget adds a new path-based target to config
func (m *ConfigManager) AddCustomTarget(name, description, mode string, paths []string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	mode = strings.ToLower(strings.TrimSpace(mode))

	if name == "" {
		return fmt.Errorf("target name is required")
	}
	if mode == "" {
		mode = ModeRemove
	}
	if !validMode(mode) {
		return fmt.Errorf("%w: %q (use remove, contents, or reset)", ErrInvalidMode, mode)
	}

	var cleaned []string
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("at least one path is required")
	}

	if _, ok := m.findCustom(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTarget, name)
	}

	if description == "" {
		description = "Clean " + strings.Join(cleaned, ", ")
	}

	m.config.Targets.Custom = append(m.config.Targets.Custom, CustomTarget{
		Name:        name,
		Description: description,
		Paths:       cleaned,
		Mode:        mode,
	})
	return Save(m.config, m.configPath)
}

// ListCustomTargets returns all custom targets in config order
func (m *ConfigManager) ListCustomTargets() []CustomTarget {
	return append([]CustomTarget(nil), m.config.Targets.Custom...)
}

// RemoveCustomTarget removes a custom target by name (case-insensitive)
func (m *ConfigManager) RemoveCustomTarget(name string) error {
	i, ok := m.findCustom(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTargetNotFound, strings.TrimSpace(name))
	}

	custom := m.config.Targets.Custom
	m.config.Targets.Custom = append(custom[:i:i], custom[i+1:]...)
	return Save(m.config, m.configPath)
}

// --- Disabled targets ---

// DisableTarget excludes a target from future runs. Disabling twice is a no-op.
func (m *ConfigManager) DisableTarget(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("target name is required")
	}
	if m.IsDisabled(name) {
		return nil
	}

	m.config.Targets.Disabled = append(m.config.Targets.Disabled, name)
	return Save(m.config, m.configPath)
}

// EnableTarget removes a target from the disabled list
func (m *ConfigManager) EnableTarget(name string) error {
	key := strings.ToLower(strings.TrimSpace(name))

	kept := m.config.Targets.Disabled[:0:0]
	found := false
	for _, d := range m.config.Targets.Disabled {
		if strings.ToLower(d) == key {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return fmt.Errorf("%w: %q is not disabled", ErrTargetNotFound, strings.TrimSpace(name))
	}

	m.config.Targets.Disabled = kept
	return Save(m.config, m.configPath)
}

// IsDisabled reports whether name is on the disabled list (case-insensitive)
func (m *ConfigManager) IsDisabled(name string) bool {
	return m.config.IsDisabled(name)
}

// IsDisabled reports whether name is on the disabled list (case-insensitive)
func (c *Config) IsDisabled(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, d := range c.Targets.Disabled {
		if strings.ToLower(strings.TrimSpace(d)) == key {
			return true
		}
	}
	return false
}

func (m *ConfigManager) findCustom(name string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, ct := range m.config.Targets.Custom {
		if strings.ToLower(ct.Name) == key {
			return i, true
		}
	}
	return -1, false
}
