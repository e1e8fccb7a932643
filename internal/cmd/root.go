package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/HamStudy/logview/internal/config"
	"github.com/HamStudy/logview/internal/core"
	"github.com/HamStudy/logview/internal/logging"
	"github.com/HamStudy/logview/internal/logs"
	"github.com/HamStudy/logview/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "logview [file]",
	Short: "Terminal log viewer with virtualized scrolling",
	Long: `logview pages through log files of any size. Only the rows on screen
(plus a small overscan margin) are rendered, so scrolling stays fast on
files with millions of lines.`,
	Example: `
# Open a file
logview /var/log/syslog

# Follow a growing file, keeping the last 1000 lines
logview -f --tail 1000 app.log

# Pixel scrolling with smooth animation
logview --snap=false --smooth app.log
  `,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loader, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.LogFile = args[0]
		}

		closer, err := logging.Setup(cfg.AppLogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return run(ctx, cfg, loader)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config-dir", "", "Directory holding config.yaml")
	flags.String("log-file", "", "Write diagnostic logs to this file")
	flags.String("log-level", "", "Diagnostic log level (debug, info, warn, error)")

	addViewerFlags(rootCmd)
}

// addViewerFlags defines the flags that override viewer settings
func addViewerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolP("follow", "f", false, "Keep reading lines appended to the file")
	flags.Int("tail", 0, "Only load the last N lines (0 loads the whole file)")
	flags.Int("item-height", 0, "Terminal rows per log line")
	flags.Int("overscan", 0, "Rows realized beyond each viewport edge")
	flags.Int("wheel-lines", 0, "Lines scrolled per mouse wheel notch")
	flags.Bool("snap", true, "Snap the scroll offset to whole lines")
	flags.Bool("smooth", false, "Animate page and jump scrolling")
	flags.String("easing", "", "Animation curve (linear, outQuad, inOutQuad, outCubic, inOutCubic)")
	flags.String("color-scheme", "", "Color scheme to use (default, dark, light)")
	flags.Bool("no-line-numbers", false, "Hide the line number gutter")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig layers defaults, environment, the config file and finally the
// flags that were set explicitly on cmd.
func loadConfig(cmd *cobra.Command) (*core.Config, *config.Loader, error) {
	cfg, err := core.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if dir, _ := flags.GetString("config-dir"); dir != "" {
		cfg.ConfigDir = dir
	}

	loader := config.NewLoader(cfg.ConfigDir)
	if err := loader.Load(); err != nil {
		return nil, nil, err
	}
	loader.Apply(cfg)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}

func applyFlags(cmd *cobra.Command, cfg *core.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	setInt := func(name string, dst *int) {
		if err == nil && changed(name) {
			*dst, err = flags.GetInt(name)
		}
	}
	setString := func(name string, dst *string) {
		if err == nil && changed(name) {
			*dst, err = flags.GetString(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if err == nil && changed(name) {
			*dst, err = flags.GetBool(name)
		}
	}

	setInt("tail", &cfg.TailLines)
	setInt("item-height", &cfg.ItemHeight)
	setInt("overscan", &cfg.Overscan)
	setInt("wheel-lines", &cfg.WheelLines)
	setBool("follow", &cfg.Follow)
	setBool("smooth", &cfg.SmoothScroll)
	setString("color-scheme", &cfg.ColorScheme)
	setString("easing", &cfg.Easing)
	setString("log-file", &cfg.AppLogFile)
	setString("log-level", &cfg.LogLevel)

	if err == nil && changed("snap") {
		var snap bool
		snap, err = flags.GetBool("snap")
		cfg.ScrollMode = virtual.Pixel.String()
		if snap {
			cfg.ScrollMode = virtual.Snapped.String()
		}
	}
	if err == nil && changed("no-line-numbers") {
		var hide bool
		hide, err = flags.GetBool("no-line-numbers")
		cfg.ShowLineNumbers = !hide
	}
	return err
}

func run(ctx context.Context, cfg *core.Config, loader *config.Loader) error {
	slog.Info("Starting logview", "version", Version, "file", cfg.LogFile)

	state := core.NewState(cfg)
	app, err := ui.NewApp(ctx, logs.NewStore(), state, nil)
	if err != nil {
		return err
	}
	app.SetFilterPresets(loader.Get().Filters)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	watcher, err := config.NewWatcher(loader)
	if err != nil {
		slog.Warn("Config hot reload disabled", "error", err)
	} else {
		watcher.OnChange(func(c *config.Config) {
			p.Send(ui.ConfigReloadedMsg{Config: c})
		})
		go watcher.Run(ctx)
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running application: %w", err)
	}
	return nil
}
