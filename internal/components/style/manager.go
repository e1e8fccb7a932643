package style

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/HamStudy/logview/internal/logs"
	"github.com/charmbracelet/lipgloss"
)

// Manager handles styling and theming for the application
type Manager struct {
	theme *Theme
	cache map[string]lipgloss.Style
	mu    sync.Mutex
}

// Theme defines color schemes and styling
type Theme struct {
	Name        string
	Description string
	Colors      *ColorScheme
}

// ColorScheme defines the color palette
type ColorScheme struct {
	Foreground lipgloss.Color
	Selection  *SelectionColors
	Levels     *LevelColors
	UI         *UIColors
}

// SelectionColors for the cursor row
type SelectionColors struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
}

// LevelColors for log severities
type LevelColors struct {
	Debug lipgloss.Color
	Info  lipgloss.Color
	Warn  lipgloss.Color
	Error lipgloss.Color
}

// UIColors for interface elements
type UIColors struct {
	Gutter          lipgloss.Color
	StatusBar       lipgloss.Color
	StatusBarText   lipgloss.Color
	SearchHit       lipgloss.Color
	SearchHitText   lipgloss.Color
	Prompt          lipgloss.Color
	FollowIndicator lipgloss.Color
}

var themes = map[string]func() *Theme{
	"default": getDefaultTheme,
	"dark":    GetDarkTheme,
	"light":   GetLightTheme,
}

// ThemeNames lists the built-in themes
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme
func ThemeByName(name string) (*Theme, error) {
	build, ok := themes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown color scheme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return build(), nil
}

// NewManager creates a new style manager with the default theme
func NewManager() *Manager {
	return &Manager{
		theme: getDefaultTheme(),
		cache: make(map[string]lipgloss.Style),
	}
}

// SetTheme sets the current theme
func (m *Manager) SetTheme(theme *Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.theme = theme
	m.cache = make(map[string]lipgloss.Style)
}

// SetThemeByName switches to a built-in theme
func (m *Manager) SetThemeByName(name string) error {
	theme, err := ThemeByName(name)
	if err != nil {
		return err
	}
	m.SetTheme(theme)
	return nil
}

// GetTheme returns the current theme
func (m *Manager) GetTheme() *Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.theme
}

// cached returns the style stored under key, building it on a miss.
// The lock is held for the build so concurrent misses never race on the map.
func (m *Manager) cached(key string, build func(c *ColorScheme) lipgloss.Style) lipgloss.Style {
	m.mu.Lock()
	defer m.mu.Unlock()

	if style, ok := m.cache[key]; ok {
		return style
	}
	style := build(m.theme.Colors)
	m.cache[key] = style
	return style
}

// Line returns the style for a log line of the given severity
func (m *Manager) Line(level logs.Severity, selected bool) lipgloss.Style {
	return m.cached(fmt.Sprintf("line_%d_%t", level, selected), func(c *ColorScheme) lipgloss.Style {
		if selected {
			return lipgloss.NewStyle().
				Background(c.Selection.Background).
				Foreground(c.Selection.Foreground)
		}
		style := lipgloss.NewStyle().Foreground(levelColor(c, level))
		if level == logs.SeverityError {
			style = style.Bold(true)
		}
		return style
	})
}

func levelColor(c *ColorScheme, level logs.Severity) lipgloss.Color {
	switch level {
	case logs.SeverityDebug:
		return c.Levels.Debug
	case logs.SeverityInfo:
		return c.Levels.Info
	case logs.SeverityWarn:
		return c.Levels.Warn
	case logs.SeverityError:
		return c.Levels.Error
	default:
		return c.Foreground
	}
}

// Gutter returns the line number column style
func (m *Manager) Gutter(width int) lipgloss.Style {
	return m.cached(fmt.Sprintf("gutter_%d", width), func(c *ColorScheme) lipgloss.Style {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Right).
			PaddingRight(1).
			Foreground(c.UI.Gutter)
	})
}

// StatusBar returns the status bar style
func (m *Manager) StatusBar(width int) lipgloss.Style {
	return m.cached(fmt.Sprintf("status_%d", width), func(c *ColorScheme) lipgloss.Style {
		return lipgloss.NewStyle().
			Width(width).
			Background(c.UI.StatusBar).
			Foreground(c.UI.StatusBarText)
	})
}

// SearchHit returns the style for search matches
func (m *Manager) SearchHit() lipgloss.Style {
	return m.cached("search_hit", func(c *ColorScheme) lipgloss.Style {
		return lipgloss.NewStyle().
			Background(c.UI.SearchHit).
			Foreground(c.UI.SearchHitText)
	})
}

// Prompt returns the style for the search and filter prompt
func (m *Manager) Prompt() lipgloss.Style {
	return m.cached("prompt", func(c *ColorScheme) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c.UI.Prompt)
	})
}

// Follow returns the style for the follow mode indicator
func (m *Manager) Follow() lipgloss.Style {
	return m.cached("follow", func(c *ColorScheme) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Foreground(c.UI.FollowIndicator)
	})
}

// ClearCache clears the style cache
func (m *Manager) ClearCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]lipgloss.Style)
}

func (m *Manager) cacheLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// getDefaultTheme uses the terminal's own foreground for plain lines
func getDefaultTheme() *Theme {
	return &Theme{
		Name:        "default",
		Description: "Terminal colors with level highlights",
		Colors: &ColorScheme{
			Foreground: lipgloss.Color(""),
			Selection: &SelectionColors{
				Background: lipgloss.Color("62"),
				Foreground: lipgloss.Color("230"),
			},
			Levels: &LevelColors{
				Debug: lipgloss.Color("244"),
				Info:  lipgloss.Color(""),
				Warn:  lipgloss.Color("214"),
				Error: lipgloss.Color("196"),
			},
			UI: &UIColors{
				Gutter:          lipgloss.Color("240"),
				StatusBar:       lipgloss.Color("236"),
				StatusBarText:   lipgloss.Color("252"),
				SearchHit:       lipgloss.Color("220"),
				SearchHitText:   lipgloss.Color("16"),
				Prompt:          lipgloss.Color("39"),
				FollowIndicator: lipgloss.Color("42"),
			},
		},
	}
}

// GetDarkTheme returns a dark theme
func GetDarkTheme() *Theme {
	return &Theme{
		Name:        "dark",
		Description: "Dark theme",
		Colors: &ColorScheme{
			Foreground: lipgloss.Color("#d4d4d4"),
			Selection: &SelectionColors{
				Background: lipgloss.Color("#264f78"),
				Foreground: lipgloss.Color("#ffffff"),
			},
			Levels: &LevelColors{
				Debug: lipgloss.Color("#808080"),
				Info:  lipgloss.Color("#569cd6"),
				Warn:  lipgloss.Color("#dcdcaa"),
				Error: lipgloss.Color("#f44747"),
			},
			UI: &UIColors{
				Gutter:          lipgloss.Color("#5a5a5a"),
				StatusBar:       lipgloss.Color("#3c3c3c"),
				StatusBarText:   lipgloss.Color("#cccccc"),
				SearchHit:       lipgloss.Color("#ce9178"),
				SearchHitText:   lipgloss.Color("#1e1e1e"),
				Prompt:          lipgloss.Color("#4ec9b0"),
				FollowIndicator: lipgloss.Color("#4ec9b0"),
			},
		},
	}
}

// GetLightTheme returns a light theme
func GetLightTheme() *Theme {
	return &Theme{
		Name:        "light",
		Description: "Light theme",
		Colors: &ColorScheme{
			Foreground: lipgloss.Color("#000000"),
			Selection: &SelectionColors{
				Background: lipgloss.Color("#0078d4"),
				Foreground: lipgloss.Color("#ffffff"),
			},
			Levels: &LevelColors{
				Debug: lipgloss.Color("#605e5c"),
				Info:  lipgloss.Color("#0078d4"),
				Warn:  lipgloss.Color("#ff8c00"),
				Error: lipgloss.Color("#d13438"),
			},
			UI: &UIColors{
				Gutter:          lipgloss.Color("#a19f9d"),
				StatusBar:       lipgloss.Color("#d1d1d1"),
				StatusBarText:   lipgloss.Color("#323130"),
				SearchHit:       lipgloss.Color("#ffb900"),
				SearchHitText:   lipgloss.Color("#000000"),
				Prompt:          lipgloss.Color("#107c10"),
				FollowIndicator: lipgloss.Color("#107c10"),
			},
		},
	}
}
