package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/HamStudy/logview/internal/core"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the user configuration file inside the config
// directory.
const FileName = "config.yaml"

// Config represents the main configuration structure
type Config struct {
	Version string          `yaml:"version"`
	Theme   string          `yaml:"theme"`
	Viewer  *ViewerConfig   `yaml:"viewer,omitempty"`
	Follow  *FollowConfig   `yaml:"follow,omitempty"`
	Logging *LoggingConfig  `yaml:"logging,omitempty"`
	Filters []*FilterPreset `yaml:"filters,omitempty"`
}

// ViewerConfig defines scrolling and virtualization settings. Nil fields
// keep the default.
type ViewerConfig struct {
	ItemHeight        *int    `yaml:"itemHeight,omitempty"`
	Overscan          *int    `yaml:"overscan,omitempty"`
	WheelLines        *int    `yaml:"wheelLines,omitempty"`
	ScrollMode        *string `yaml:"scrollMode,omitempty"`
	SmoothScroll      *bool   `yaml:"smoothScroll,omitempty"`
	AnimationDuration *string `yaml:"animationDuration,omitempty"`
	Easing            *string `yaml:"easing,omitempty"`
	ShowLineNumbers   *bool   `yaml:"showLineNumbers,omitempty"`
}

// FollowConfig defines tailing behaviour
type FollowConfig struct {
	Enabled   *bool `yaml:"enabled,omitempty"`
	TailLines *int  `yaml:"tailLines,omitempty"`
}

// LoggingConfig defines where logview writes its own diagnostics
type LoggingConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// FilterPreset is a named filter reachable from the filter prompt
type FilterPreset struct {
	Name  string `yaml:"name"`
	Query string `yaml:"query"`
}

// Loader handles configuration loading and management
type Loader struct {
	configDir string
	defaults  *Config
	user      *Config
	merged    *Config
	mu        sync.RWMutex
}

// NewLoader creates a new configuration loader
func NewLoader(configDir string) *Loader {
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config", "logview")
	}

	return &Loader{
		configDir: configDir,
		defaults:  getDefaultConfig(),
	}
}

// Path returns the location of the user configuration file
func (l *Loader) Path() string {
	return filepath.Join(l.configDir, FileName)
}

// Load loads the configuration from disk. A missing file is not an error.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	userConfig, err := l.loadConfigFile(l.Path())
	if errors.Is(err, os.ErrNotExist) {
		l.user = nil
		l.merged = l.mergeConfigs(l.defaults, nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user config: %w", err)
	}

	l.user = userConfig
	l.merged = l.mergeConfigs(l.defaults, l.user)
	return nil
}

// LoadFile loads a specific configuration file
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.loadConfigFile(path)
}

// loadConfigFile loads a configuration from a file
func (l *Loader) loadConfigFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return l.parseConfig(file)
}

// LoadString loads configuration from a string
func (l *Loader) LoadString(content string) (*Config, error) {
	return l.parseConfig(strings.NewReader(content))
}

// parseConfig parses configuration from a reader
func (l *Loader) parseConfig(r io.Reader) (*Config, error) {
	var config Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Strict parsing

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := l.validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// validateConfig validates a configuration and fills blank identifiers
func (l *Loader) validateConfig(config *Config) error {
	if config.Version == "" {
		config.Version = "1.0.0"
	}

	if v := config.Viewer; v != nil {
		if v.ItemHeight != nil && *v.ItemHeight <= 0 {
			return fmt.Errorf("%w: %d", core.ErrInvalidItemHeight, *v.ItemHeight)
		}
		if v.Overscan != nil && *v.Overscan < 0 {
			return fmt.Errorf("overscan must not be negative: %d", *v.Overscan)
		}
		if v.WheelLines != nil && *v.WheelLines < 0 {
			return fmt.Errorf("wheelLines must not be negative: %d", *v.WheelLines)
		}
		if v.ScrollMode != nil {
			if _, ok := virtual.ParseScrollMode(*v.ScrollMode); !ok {
				return fmt.Errorf("unknown scrollMode %q", *v.ScrollMode)
			}
		}
		if v.AnimationDuration != nil {
			if _, err := time.ParseDuration(*v.AnimationDuration); err != nil {
				return fmt.Errorf("animationDuration: %w", err)
			}
		}
	}

	if f := config.Follow; f != nil && f.TailLines != nil && *f.TailLines < 0 {
		return fmt.Errorf("tailLines must not be negative: %d", *f.TailLines)
	}

	for _, preset := range config.Filters {
		if preset.Name == "" {
			return fmt.Errorf("filter preset must have a name")
		}
	}

	return nil
}

// mergeConfigs merges user config over defaults
func (l *Loader) mergeConfigs(defaults, user *Config) *Config {
	if user == nil {
		return defaults
	}
	if defaults == nil {
		return user
	}

	merged := *defaults

	if user.Version != "" {
		merged.Version = user.Version
	}
	if user.Theme != "" {
		merged.Theme = user.Theme
	}

	merged.Viewer = mergeViewer(defaults.Viewer, user.Viewer)

	if user.Follow != nil {
		follow := FollowConfig{}
		if defaults.Follow != nil {
			follow = *defaults.Follow
		}
		if user.Follow.Enabled != nil {
			follow.Enabled = user.Follow.Enabled
		}
		if user.Follow.TailLines != nil {
			follow.TailLines = user.Follow.TailLines
		}
		merged.Follow = &follow
	}

	if user.Logging != nil {
		logging := LoggingConfig{}
		if defaults.Logging != nil {
			logging = *defaults.Logging
		}
		if user.Logging.File != "" {
			logging.File = user.Logging.File
		}
		if user.Logging.Level != "" {
			logging.Level = user.Logging.Level
		}
		merged.Logging = &logging
	}

	if len(user.Filters) > 0 {
		merged.Filters = append(append([]*FilterPreset(nil), defaults.Filters...), user.Filters...)
	}

	return &merged
}

func mergeViewer(defaults, user *ViewerConfig) *ViewerConfig {
	out := ViewerConfig{}
	if defaults != nil {
		out = *defaults
	}
	if user == nil {
		return &out
	}
	if user.ItemHeight != nil {
		out.ItemHeight = user.ItemHeight
	}
	if user.Overscan != nil {
		out.Overscan = user.Overscan
	}
	if user.WheelLines != nil {
		out.WheelLines = user.WheelLines
	}
	if user.ScrollMode != nil {
		out.ScrollMode = user.ScrollMode
	}
	if user.SmoothScroll != nil {
		out.SmoothScroll = user.SmoothScroll
	}
	if user.AnimationDuration != nil {
		out.AnimationDuration = user.AnimationDuration
	}
	if user.Easing != nil {
		out.Easing = user.Easing
	}
	if user.ShowLineNumbers != nil {
		out.ShowLineNumbers = user.ShowLineNumbers
	}
	return &out
}

// Get returns the current configuration
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.merged != nil {
		return l.merged
	}
	return l.defaults
}

// Apply copies the file settings onto the runtime configuration. Flags and
// environment overrides are applied by the caller afterwards.
func (l *Loader) Apply(dst *core.Config) {
	ApplyTo(l.Get(), dst)
}

// ApplyTo copies the set fields of src onto dst
func ApplyTo(src *Config, dst *core.Config) {
	if src == nil || dst == nil {
		return
	}
	if src.Theme != "" {
		dst.ColorScheme = src.Theme
	}
	if v := src.Viewer; v != nil {
		if v.ItemHeight != nil {
			dst.ItemHeight = *v.ItemHeight
		}
		if v.Overscan != nil {
			dst.Overscan = *v.Overscan
		}
		if v.WheelLines != nil {
			dst.WheelLines = *v.WheelLines
		}
		if v.ScrollMode != nil {
			dst.ScrollMode = *v.ScrollMode
		}
		if v.SmoothScroll != nil {
			dst.SmoothScroll = *v.SmoothScroll
		}
		if v.AnimationDuration != nil {
			if d, err := time.ParseDuration(*v.AnimationDuration); err == nil {
				dst.AnimationDuration = d
			}
		}
		if v.Easing != nil {
			dst.Easing = *v.Easing
		}
		if v.ShowLineNumbers != nil {
			dst.ShowLineNumbers = *v.ShowLineNumbers
		}
	}
	if f := src.Follow; f != nil {
		if f.Enabled != nil {
			dst.Follow = *f.Enabled
		}
		if f.TailLines != nil {
			dst.TailLines = *f.TailLines
		}
	}
	if lg := src.Logging; lg != nil {
		if lg.File != "" {
			dst.AppLogFile = lg.File
		}
		if lg.Level != "" {
			dst.LogLevel = lg.Level
		}
	}
}

// FromCore builds a file configuration describing the runtime settings
func FromCore(c *core.Config) *Config {
	duration := c.AnimationDuration.String()
	return &Config{
		Version: "1.0.0",
		Theme:   c.ColorScheme,
		Viewer: &ViewerConfig{
			ItemHeight:        &c.ItemHeight,
			Overscan:          &c.Overscan,
			WheelLines:        &c.WheelLines,
			ScrollMode:        &c.ScrollMode,
			SmoothScroll:      &c.SmoothScroll,
			AnimationDuration: &duration,
			Easing:            &c.Easing,
			ShowLineNumbers:   &c.ShowLineNumbers,
		},
		Follow: &FollowConfig{
			Enabled:   &c.Follow,
			TailLines: &c.TailLines,
		},
		Logging: &LoggingConfig{
			File:  c.AppLogFile,
			Level: c.LogLevel,
		},
	}
}

// Set replaces the user configuration
func (l *Loader) Set(config *Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.user = config
	l.merged = l.mergeConfigs(l.defaults, config)
}

// Save saves the current configuration to disk
func (l *Loader) Save() error {
	l.mu.RLock()
	config := l.user
	if config == nil {
		config = l.merged
	}
	l.mu.RUnlock()

	if config == nil {
		return fmt.Errorf("no configuration to save")
	}

	if err := os.MkdirAll(l.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(l.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Theme:   "default",
		Filters: []*FilterPreset{
			{Name: "errors", Query: "error"},
			{Name: "warnings", Query: "warn"},
		},
	}
}
