package ui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HamStudy/logview/internal/components/performance"
	"github.com/HamStudy/logview/internal/components/style"
	"github.com/HamStudy/logview/internal/config"
	"github.com/HamStudy/logview/internal/core"
	"github.com/HamStudy/logview/internal/logs"
	"github.com/HamStudy/logview/internal/ui/views"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// KeyMap defines the global key bindings
type KeyMap struct {
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	logKeys := views.DefaultLogKeyMap()
	return KeyMap{
		Help: logKeys.Help,
		Quit: logKeys.Quit,
	}
}

// ConfigReloadedMsg carries a configuration file that changed on disk
type ConfigReloadedMsg struct {
	Config *config.Config
}

// fileLoadedMsg reports the end of the initial file load
type fileLoadedMsg struct{ err error }

// App represents the main application model
type App struct {
	ctx    context.Context
	state  *core.State
	config *core.Config
	keys   KeyMap
	store  *logs.Store

	logView  *views.LogView
	helpView *views.HelpView
	animator *ScrollAnimator
	loading  *LoadingIndicator

	// appended is signalled by the follower after each burst of lines
	appended        chan struct{}
	followerStarted bool

	width  int
	height int
	ready  bool
	err    error
	notice string
}

// NewApp creates a new application instance
func NewApp(ctx context.Context, store *logs.Store, state *core.State, monitor *performance.Monitor) (*App, error) {
	if monitor == nil {
		monitor = performance.NewMonitor()
	}
	logView, err := views.NewLogView(store, state, style.NewManager(), monitor)
	if err != nil {
		return nil, err
	}

	cfg := state.Config()
	easing, err := EasingByName(cfg.Easing)
	if err != nil {
		return nil, err
	}
	animator := NewScrollAnimator(cfg.AnimationDuration)
	animator.SetEasing(easing)
	animator.Enable(cfg.SmoothScroll)
	logView.SetAnimator(animator)

	return &App{
		ctx:      ctx,
		state:    state,
		config:   cfg,
		keys:     DefaultKeyMap(),
		store:    store,
		logView:  logView,
		helpView: views.NewHelpView(logView.Keys()),
		animator: animator,
		loading:  NewLoadingIndicator(),
		appended: make(chan struct{}, 1),
	}, nil
}

// SetFilterPresets forwards named filters to the log view
func (a *App) SetFilterPresets(presets []*config.FilterPreset) {
	m := make(map[string]string, len(presets))
	for _, p := range presets {
		if p != nil {
			m[p.Name] = p.Query
		}
	}
	a.logView.SetFilterPresets(m)
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if a.state.CurrentFile != "" {
		a.loading.SetMessage("Loading " + a.state.CurrentFile)
		cmds = append(cmds, a.loading.Start(), a.loadFile())
	}
	return tea.Batch(cmds...)
}

func (a *App) loadFile() tea.Cmd {
	path, tail := a.state.CurrentFile, a.config.TailLines
	store := a.store
	return func() tea.Msg {
		return fileLoadedMsg{err: store.LoadFileTail(path, tail)}
	}
}

// startFollower tails the file in the background. Notifications are
// coalesced into the appended channel, which holds at most one signal.
func (a *App) startFollower() tea.Cmd {
	if a.followerStarted || a.state.CurrentFile == "" {
		return nil
	}
	a.followerStarted = true

	follower := logs.NewFollower(a.state.CurrentFile, a.store, func() {
		select {
		case a.appended <- struct{}{}:
		default:
		}
	})
	go func() {
		if err := follower.Run(a.ctx); err != nil {
			slog.Error("Follower stopped", "path", a.state.CurrentFile, "error", err)
		}
	}()
	return a.waitForAppend()
}

// ensureFollower starts tailing once follow mode is on, whether it was set
// at launch, by a reload or toggled with a key. Tailing waits for the
// initial load so appended lines land after it.
func (a *App) ensureFollower() tea.Cmd {
	if !a.state.IsFollowing() || a.loading.Spinning() || a.err != nil {
		return nil
	}
	return a.startFollower()
}

func (a *App) waitForAppend() tea.Cmd {
	ctx, ch := a.ctx, a.appended
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			return views.LinesAppendedMsg{}
		}
	}
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true

		a.logView.SetSize(msg.Width, msg.Height)
		a.helpView.SetSize(msg.Width, msg.Height)
		return a, nil

	case fileLoadedMsg:
		a.loading.Stop()
		if msg.err != nil {
			a.err = msg.err
			slog.Error("Failed to load log file", "path", a.state.CurrentFile, "error", msg.err)
			return a, nil
		}
		slog.Info("Loaded log file", "path", a.state.CurrentFile, "lines", a.store.Count())
		a.logView.Update(views.LinesAppendedMsg{})
		return a, a.ensureFollower()

	case views.LinesAppendedMsg:
		a.logView.Update(msg)
		return a, a.waitForAppend()

	case LoadingTickMsg:
		return a, a.loading.Update()

	case ScrollFrameMsg:
		_, cmd := a.animator.Update(msg)
		a.logView.Relayout()
		return a, cmd

	case ConfigReloadedMsg:
		return a, a.applyConfig(msg.Config)

	case tea.KeyMsg:
		if !a.logView.IsPrompting() {
			switch {
			case key.Matches(msg, a.keys.Quit):
				return a, tea.Quit

			case key.Matches(msg, a.keys.Help):
				a.state.ShowHelp = !a.state.ShowHelp
				return a, nil

			case a.state.ShowHelp && msg.Type == tea.KeyEsc:
				a.state.ShowHelp = false
				return a, nil
			}
		}
		a.notice = ""
	}

	if a.state.ShowHelp {
		helpModel, cmd := a.helpView.Update(msg)
		a.helpView = helpModel.(*views.HelpView)
		cmds = append(cmds, cmd)
	} else {
		logModel, cmd := a.logView.Update(msg)
		a.logView = logModel.(*views.LogView)
		cmds = append(cmds, cmd, a.ensureFollower())
	}

	return a, tea.Batch(cmds...)
}

// applyConfig merges a reloaded file over the running configuration. A
// file that fails validation is ignored and the old settings stay active.
func (a *App) applyConfig(file *config.Config) tea.Cmd {
	prev := a.state.Config()
	next := *prev
	config.ApplyTo(file, &next)

	easing, err := EasingByName(next.Easing)
	if err == nil {
		err = a.logView.ApplyConfig(&next)
	}
	if err != nil {
		slog.Warn("Ignoring invalid configuration", "error", err)
		a.notice = fmt.Sprintf("config not applied: %v", err)
		return nil
	}
	a.config = &next
	a.state.SetConfig(&next)
	a.animator.SetDuration(next.AnimationDuration)
	a.animator.SetEasing(easing)
	a.animator.Enable(next.SmoothScroll)
	if file != nil {
		a.SetFilterPresets(file.Filters)
	}
	a.notice = "configuration reloaded"
	slog.Info("Configuration reloaded")

	if next.Follow && !prev.Follow {
		a.state.SetFollowing(true)
	}
	return a.ensureFollower()
}

// View renders the application
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			errStyle.Render(fmt.Sprintf("Error: %v", a.err))+"\n\nPress q to quit")
	}

	if a.loading.Spinning() {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, a.loading.View())
	}

	if a.state.ShowHelp {
		return a.helpView.View()
	}

	view := a.logView.View()
	if a.notice != "" {
		view = replaceLastLine(view, a.notice)
	}
	return view
}

func replaceLastLine(s, line string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[:i+1] + line
		}
	}
	return line
}
