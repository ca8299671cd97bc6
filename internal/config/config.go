package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	serr "dirsort/internal/errors"
	"dirsort/internal/log"
	"dirsort/pkg/types"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Log output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Settings holds the run-wide options
type Settings struct {
	SourceDir string   `yaml:"source_dir"` // Directory to organize
	TargetDir string   `yaml:"target_dir"` // Root of the organized tree
	DryRun    bool     `yaml:"dry_run"`    // If true, count moves without performing them
	LogLevel  string   `yaml:"log_level"`  // debug, info, warn or error
	LogFile   string   `yaml:"log_file,omitempty"`
	LogFormat string   `yaml:"log_format"` // text or json
	Exclude   []string `yaml:"exclude,omitempty"`
}

// Config represents the application configuration structure:
// run settings plus the rule records to build the rule set from.
type Config struct {
	Settings Settings           `yaml:"settings"`
	Rules    []types.RuleConfig `yaml:"rules"`
}

// rawRule distinguishes an omitted priority from an explicit zero
type rawRule struct {
	Target     string            `yaml:"target"`
	Priority   *int              `yaml:"priority"`
	AppliesTo  string            `yaml:"applies_to"`
	Conditions map[string]string `yaml:"conditions"`
}

type rawConfig struct {
	Settings Settings  `yaml:"settings"`
	Rules    []rawRule `yaml:"rules"`
}

// DefaultConfigPath returns ~/.config/dirsort/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dirsort", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/dirsort/config.yaml). A missing file yields the defaults.
func LoadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfigFile(path)
	if serr.IsKind(err, serr.ConfigNotFound) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// LoadConfigFile loads configuration from a specific file path.
// Files ending in .yaml or .yml are YAML; anything else is read in the
// classic KEY: value format. The result is not validated, so that command
// line overrides can be applied first.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewConfigError("configuration file not found", path, serr.ConfigNotFound, err)
		}
		return nil, serr.NewConfigError("error reading config file", path, serr.InvalidConfig, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data, path)
	default:
		return ParseClassic(strings.NewReader(string(data)), path)
	}
}

func parseYAML(data []byte, path string) (*Config, error) {
	// Unmarshal over the defaults to preserve them for unset fields
	raw := rawConfig{Settings: defaultConfig().Settings}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, serr.NewConfigError("error parsing config file", path, serr.InvalidConfig, err)
	}

	cfg := &Config{Settings: raw.Settings, Rules: make([]types.RuleConfig, 0, len(raw.Rules))}
	for _, r := range raw.Rules {
		rc := types.RuleConfig{
			Target:     strings.TrimSpace(r.Target),
			Priority:   types.DefaultPriority,
			AppliesTo:  normalizeAppliesTo(r.AppliesTo),
			Conditions: r.Conditions,
		}
		if r.Priority != nil {
			rc.Priority = *r.Priority
		}
		cfg.Rules = append(cfg.Rules, rc)
	}
	cfg.Settings.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Settings.LogLevel))
	cfg.Settings.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Settings.LogFormat))
	return cfg, nil
}

func normalizeAppliesTo(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return types.AppliesToAny
	}
	return s
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	return &Config{
		Settings: Settings{
			DryRun:    false,
			LogLevel:  "info",
			LogFormat: FormatText,
		},
		Rules: []types.RuleConfig{},
	}
}

// New returns a configuration holding the defaults
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration as YAML to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return serr.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return serr.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return serr.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks if the configuration is valid.
// All problems found are returned together.
func (c *Config) Validate() error {
	if c == nil {
		return serr.NewConfigError("nil config", "", serr.InvalidConfig, nil)
	}

	var errs []error
	invalid := func(msg, param string) {
		errs = append(errs, serr.NewConfigError(msg, param, serr.InvalidConfig, nil))
	}

	if strings.TrimSpace(c.Settings.SourceDir) == "" {
		invalid("source directory is required", "source_dir")
	}
	if strings.TrimSpace(c.Settings.TargetDir) == "" {
		invalid("target directory is required", "target_dir")
	}
	if _, err := log.ParseLevel(c.Settings.LogLevel); err != nil {
		invalid(fmt.Sprintf("invalid log level %q", c.Settings.LogLevel), "log_level")
	}
	if c.Settings.LogFormat != FormatText && c.Settings.LogFormat != FormatJSON {
		invalid(fmt.Sprintf("invalid log format %q (must be text or json)", c.Settings.LogFormat), "log_format")
	}
	for _, pattern := range c.Settings.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			invalid(fmt.Sprintf("invalid exclude pattern %q", pattern), "exclude")
		}
	}

	for i, rule := range c.Rules {
		if err := validateRule(rule); err != nil {
			errs = append(errs, serr.NewRuleError(fmt.Sprintf("rule %d", i+1), rule.Target, serr.InvalidRule, err))
		}
	}

	return serr.Join(errs...)
}

func validateRule(rule types.RuleConfig) error {
	switch rule.AppliesTo {
	case types.AppliesToFile, types.AppliesToFolder, types.AppliesToAny:
	default:
		return serr.Newf("invalid applies_to %q (must be file, folder or any)", rule.AppliesTo)
	}

	target := strings.TrimSpace(rule.Target)
	if target == "" {
		return serr.New("target is required")
	}
	if filepath.IsAbs(target) || strings.HasPrefix(target, "/") {
		return serr.New("target must be relative to the target directory")
	}
	cleaned := filepath.ToSlash(filepath.Clean(target))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return serr.New("target must not escape the target directory")
	}
	return nil
}
