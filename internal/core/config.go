package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/HamStudy/logview/internal/components/virtual"
)

// ErrInvalidItemHeight is reported once, at setup, for a non-positive row
// height.
var ErrInvalidItemHeight = errors.New("item height must be positive")

// Config holds the application configuration
type Config struct {
	LogFile   string
	Follow    bool
	TailLines int // 0 loads the whole file

	// Virtualization
	ItemHeight int // terminal rows per log line
	Overscan   int
	WheelLines int
	ScrollMode string // pixel or snapped

	// Presentation
	SmoothScroll      bool
	AnimationDuration time.Duration
	Easing            string // animation curve name, empty for the default
	ColorScheme       string
	ShowLineNumbers   bool

	// Diagnostics
	AppLogFile string
	LogLevel   string

	ConfigDir string
}

// LoadConfig loads the application configuration
func LoadConfig() (*Config, error) {
	config := &Config{
		ItemHeight:        1,
		Overscan:          virtual.DefaultOverscan,
		WheelLines:        virtual.DefaultWheelLines,
		ScrollMode:        virtual.Snapped.String(),
		AnimationDuration: 120 * time.Millisecond,
		Easing:            "outCubic",
		ColorScheme:       "default",
		ShowLineNumbers:   true,
		LogLevel:          "info",
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	config.ConfigDir = filepath.Join(home, ".config", "logview")
	config.AppLogFile = filepath.Join(home, ".cache", "logview", "logview.log")

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides settings from LOGVIEW_* environment variables
func (c *Config) applyEnv() error {
	ints := map[string]*int{
		"LOGVIEW_ITEM_HEIGHT": &c.ItemHeight,
		"LOGVIEW_OVERSCAN":    &c.Overscan,
		"LOGVIEW_WHEEL_LINES": &c.WheelLines,
	}
	for name, dst := range ints {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = v
	}

	strs := map[string]*string{
		"LOGVIEW_SCROLL_MODE":  &c.ScrollMode,
		"LOGVIEW_EASING":       &c.Easing,
		"LOGVIEW_COLOR_SCHEME": &c.ColorScheme,
		"LOGVIEW_LOG_LEVEL":    &c.LogLevel,
		"LOGVIEW_LOG_FILE":     &c.AppLogFile,
		"LOGVIEW_CONFIG_DIR":   &c.ConfigDir,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	return nil
}

// Validate checks the settings the virtualization engine depends on
func (c *Config) Validate() error {
	if c.ItemHeight <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidItemHeight, c.ItemHeight)
	}
	if _, ok := virtual.ParseScrollMode(c.ScrollMode); !ok {
		return fmt.Errorf("unknown scroll mode %q", c.ScrollMode)
	}
	return c.EngineOptions().Validate()
}

// EngineOptions converts the configuration into virtualization options
func (c *Config) EngineOptions() virtual.Options {
	mode, _ := virtual.ParseScrollMode(c.ScrollMode)
	return virtual.Options{
		ItemHeight: float64(c.ItemHeight),
		Overscan:   c.Overscan,
		WheelLines: c.WheelLines,
		Mode:       mode,
	}
}
