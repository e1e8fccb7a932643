package core

import (
	"testing"

	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1, config.ItemHeight)
	assert.Equal(t, virtual.DefaultOverscan, config.Overscan)
	assert.Equal(t, virtual.DefaultWheelLines, config.WheelLines)
	assert.Equal(t, "snapped", config.ScrollMode)
	assert.Equal(t, "default", config.ColorScheme)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOGVIEW_ITEM_HEIGHT", "2")
	t.Setenv("LOGVIEW_OVERSCAN", "5")
	t.Setenv("LOGVIEW_SCROLL_MODE", "pixel")
	t.Setenv("LOGVIEW_COLOR_SCHEME", "dark")
	t.Setenv("LOGVIEW_EASING", "linear")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2, config.ItemHeight)
	assert.Equal(t, 5, config.Overscan)
	assert.Equal(t, "pixel", config.ScrollMode)
	assert.Equal(t, "dark", config.ColorScheme)
	assert.Equal(t, "linear", config.Easing)

	opts := config.EngineOptions()
	assert.Equal(t, 2.0, opts.ItemHeight)
	assert.Equal(t, virtual.Pixel, opts.Mode)
}

func TestLoadConfigBadEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOGVIEW_OVERSCAN", "lots")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	config := &Config{ItemHeight: 0, ScrollMode: "pixel"}
	assert.ErrorIs(t, config.Validate(), ErrInvalidItemHeight)

	config = &Config{ItemHeight: 1, ScrollMode: "rows"}
	assert.Error(t, config.Validate())

	config = &Config{ItemHeight: 1, ScrollMode: "pixel", Overscan: -1}
	assert.ErrorIs(t, config.Validate(), virtual.ErrInvalidOverscan)
}
