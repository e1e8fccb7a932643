package views

import "github.com/charmbracelet/bubbles/key"

// LogKeyMap defines the log view key bindings
type LogKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Follow     key.Binding
	Search     key.Binding
	NextMatch  key.Binding
	PrevMatch  key.Binding
	Filter     key.Binding
	ClearQuery key.Binding
	Snap       key.Binding
	Presets    key.Binding
	Themes     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultLogKeyMap returns the default key bindings
func DefaultLogKeyMap() LogKeyMap {
	return LogKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b", "ctrl+b"),
			key.WithHelp("pgup/b", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " ", "ctrl+f"),
			key.WithHelp("pgdn/space", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "prev match"),
		),
		Filter: key.NewBinding(
			key.WithKeys("&"),
			key.WithHelp("&", "filter (~ fuzzy)"),
		),
		ClearQuery: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search/filter"),
		),
		Snap: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle snap"),
		),
		Presets: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "filter presets"),
		),
		Themes: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "color scheme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k LogKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.PageDown, k.Follow, k.Search, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k LogKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Search, k.NextMatch, k.PrevMatch, k.Filter, k.Presets, k.ClearQuery},
		{k.Follow, k.Snap, k.Themes, k.Help, k.Quit},
	}
}
