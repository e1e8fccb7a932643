package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/HamStudy/logview/internal/components/performance"
	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/HamStudy/logview/internal/core"
	"github.com/HamStudy/logview/internal/logs"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Scroll through a file headlessly and report engine statistics",
	Long: `Load FILE, page through it from top to bottom and back with the mouse
wheel, and print line counts by severity together with slot pool and layout
timing statistics. Nothing is drawn to the terminal.`,
	Example: `
# Measure a large file on a 200x60 viewport
logview stats --width 200 --height 60 big.log
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")

		store := logs.NewStore()
		start := time.Now()
		if err := store.LoadFileTail(args[0], cfg.TailLines); err != nil {
			return err
		}
		loadTime := time.Since(start)

		report, err := sweep(store, cfg, virtual.Size{Width: float64(width), Height: float64(height)})
		if err != nil {
			return err
		}
		report.LoadTime = loadTime
		report.Print(cmd.OutOrStdout(), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Int("width", 80, "Viewport width in cells")
	statsCmd.Flags().Int("height", 24, "Viewport height in rows")
	statsCmd.Flags().Int("tail", 0, "Only load the last N lines")
}

type statsReport struct {
	Lines    int
	Levels   map[logs.Severity]int
	Passes   int
	MaxSlots int
	Pool     virtual.RecyclerStats
	Metrics  []performance.Summary
	LoadTime time.Duration
}

// sweep drives a layout pass after every scroll step: page down to the end,
// then wheel back to the top.
func sweep(store *logs.Store, cfg *core.Config, viewport virtual.Size) (*statsReport, error) {
	driver, err := virtual.New[struct{}](cfg.EngineOptions())
	if err != nil {
		return nil, err
	}
	monitor := performance.NewMonitor()
	report := &statsReport{Lines: store.Count(), Levels: make(map[logs.Severity]int)}

	for _, line := range store.Lines(0, store.Count()) {
		report.Levels[logs.Level(line)]++
	}

	pass := func() {
		stop := monitor.StartTimer(performance.MetricLayoutPass)
		placements := driver.Pass(store, viewport)
		stop()
		report.Passes++
		report.MaxSlots = max(report.MaxSlots, len(placements))
	}

	pass()
	scroller := driver.Scroller()
	for !scroller.AtEnd() {
		before := scroller.Offset().Y
		scroller.PageDown()
		pass()
		if scroller.Offset().Y == before {
			break
		}
	}
	for scroller.Offset().Y > 0 {
		before := scroller.Offset().Y
		scroller.WheelUp(1)
		pass()
		if scroller.Offset().Y == before {
			break
		}
	}

	report.Pool = driver.Stats()
	report.Metrics = monitor.Summaries()
	return report, nil
}

func (r *statsReport) Print(w io.Writer, name string) {
	fmt.Fprintf(w, "File:        %s\n", name)
	fmt.Fprintf(w, "Lines:       %d (loaded in %s)\n", r.Lines, r.LoadTime.Round(time.Millisecond))
	for _, sev := range []logs.Severity{logs.SeverityError, logs.SeverityWarn, logs.SeverityInfo, logs.SeverityDebug, logs.SeverityNone} {
		label := sev.String()
		if label == "" {
			label = "other"
		}
		fmt.Fprintf(w, "  %-9s  %d\n", label, r.Levels[sev])
	}
	fmt.Fprintf(w, "Passes:      %d\n", r.Passes)
	fmt.Fprintf(w, "Peak slots:  %d\n", r.MaxSlots)
	fmt.Fprintf(w, "Pool:        %d bound, %d retired, %d allocated, %d rebound, %d discarded\n",
		r.Pool.Bound, r.Pool.Retired, r.Pool.Allocated, r.Pool.Rebound, r.Pool.Discarded)
	for _, m := range r.Metrics {
		fmt.Fprintf(w, "%-12s %d samples, avg %s, min %s, max %s\n",
			m.Name+":", m.Count, m.Average, m.Min, m.Max)
	}
}
