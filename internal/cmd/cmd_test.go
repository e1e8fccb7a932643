package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/HamStudy/logview/internal/core"
	"github.com/HamStudy/logview/internal/logs"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCommand builds a command carrying the root flags, parsed from args
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	c := &cobra.Command{Use: "test"}
	c.Flags().String("config-dir", t.TempDir(), "")
	c.Flags().String("log-file", "", "")
	c.Flags().String("log-level", "", "")
	addViewerFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, loader, err := loadConfig(newTestCommand(t))
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.ItemHeight)
	assert.Equal(t, virtual.DefaultOverscan, cfg.Overscan)
	assert.Equal(t, "snapped", cfg.ScrollMode)
	assert.NotEmpty(t, loader.Get().Filters, "default filter presets are available")
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	c := newTestCommand(t, "--overscan", "7", "--snap=false", "--no-line-numbers", "-f", "--easing", "linear")
	dir, _ := c.Flags().GetString("config-dir")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
theme: dark
viewer:
  overscan: 2
  wheelLines: 5
`), 0o644))

	cfg, _, err := loadConfig(c)
	require.NoError(t, err)

	assert.Equal(t, "dark", cfg.ColorScheme)
	assert.Equal(t, 5, cfg.WheelLines)
	assert.Equal(t, 7, cfg.Overscan, "flags win over the file")
	assert.Equal(t, "pixel", cfg.ScrollMode)
	assert.False(t, cfg.ShowLineNumbers)
	assert.True(t, cfg.Follow)
	assert.Equal(t, "linear", cfg.Easing)
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	_, _, err := loadConfig(newTestCommand(t, "--item-height", "0"))
	assert.ErrorIs(t, err, core.ErrInvalidItemHeight)
}

func TestSweep(t *testing.T) {
	store := logs.NewStore()
	for i := 0; i < 1000; i++ {
		if i%10 == 0 {
			store.Append(fmt.Sprintf("ERROR line %d", i))
		} else {
			store.Append(fmt.Sprintf("INFO line %d", i))
		}
	}
	cfg := &core.Config{ItemHeight: 1, Overscan: 3, WheelLines: 3, ScrollMode: "snapped"}

	report, err := sweep(store, cfg, virtual.Size{Width: 80, Height: 20})
	require.NoError(t, err)

	assert.Equal(t, 1000, report.Lines)
	assert.Equal(t, 100, report.Levels[logs.SeverityError])
	assert.Equal(t, 900, report.Levels[logs.SeverityInfo])

	capacity := virtual.PoolCapacity(20, 1, 3)
	assert.Greater(t, report.Passes, 50)
	assert.LessOrEqual(t, report.MaxSlots, capacity)
	assert.LessOrEqual(t, report.Pool.Allocated, capacity, "slots are recycled, not reallocated")
	require.Len(t, report.Metrics, 1)
	assert.Equal(t, int64(report.Passes), report.Metrics[0].Count)

	var out bytes.Buffer
	report.Print(&out, "test.log")
	assert.Contains(t, out.String(), "Lines:       1000")
	assert.Contains(t, out.String(), "layout_pass:")
}
