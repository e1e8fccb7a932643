package dropdown

import (
	"strings"

	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Option is one pickable entry. Detail is shown dimmed after the label.
type Option struct {
	Label  string
	Detail string
	Value  string
}

// Model is a bordered pick list. Long lists scroll through the
// virtualization engine so only the rows in view are rendered.
type Model struct {
	options []Option

	selectedIndex int
	isOpen        bool
	width         int
	height        int

	driver *virtual.Driver[struct{}]

	selectedStyle   lipgloss.Style
	unselectedStyle lipgloss.Style
	detailStyle     lipgloss.Style
	borderStyle     lipgloss.Style
	titleStyle      lipgloss.Style

	title string

	keyMap KeyMap
}

// KeyMap defines the key bindings for the dropdown
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// New creates a closed dropdown over options
func New(options []Option) Model {
	opts := virtual.DefaultOptions()
	opts.Overscan = 0
	opts.Mode = virtual.Snapped
	// Options are fixed and valid, so New cannot fail here.
	driver, _ := virtual.New[struct{}](opts)

	return Model{
		options:         options,
		width:           40,
		height:          10,
		driver:          driver,
		selectedStyle:   lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("229")),
		unselectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		detailStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		borderStyle:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		titleStyle:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		keyMap:          DefaultKeyMap(),
	}
}

// SetOptions replaces the options, keeping the selection when it still fits
func (m *Model) SetOptions(options []Option) {
	m.options = options
	if m.selectedIndex >= len(options) {
		m.selectedIndex = 0
	}
}

// SetTitle sets the dropdown title
func (m *Model) SetTitle(title string) {
	m.title = title
}

// SetSize sets the outer dimensions, border included
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Open()        { m.isOpen = true }
func (m *Model) Close()       { m.isOpen = false }
func (m *Model) IsOpen() bool { return m.isOpen }

// GetSelectedOption returns the highlighted option
func (m *Model) GetSelectedOption() Option {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.options) {
		return m.options[m.selectedIndex]
	}
	return Option{}
}

func (m *Model) GetSelectedIndex() int {
	return m.selectedIndex
}

// SetSelectedIndex highlights index if it is in range
func (m *Model) SetSelectedIndex(index int) {
	if index >= 0 && index < len(m.options) {
		m.selectedIndex = index
	}
}

// SetSelectedValue highlights the first option carrying value
func (m *Model) SetSelectedValue(value string) {
	for i, option := range m.options {
		if option.Value == value {
			m.selectedIndex = i
			return
		}
	}
}

// ShortHelp implements help.KeyMap
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keyMap.Up, m.keyMap.Down, m.keyMap.Enter, m.keyMap.Escape}
}

// FullHelp implements help.KeyMap
func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{m.ShortHelp()}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses while open
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.isOpen {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Up):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		} else {
			m.selectedIndex = len(m.options) - 1
		}

	case key.Matches(keyMsg, m.keyMap.Down):
		if m.selectedIndex < len(m.options)-1 {
			m.selectedIndex++
		} else {
			m.selectedIndex = 0
		}

	case key.Matches(keyMsg, m.keyMap.Enter):
		m.isOpen = false
		if len(m.options) == 0 {
			return m, func() tea.Msg { return CancelledMsg{} }
		}
		selected := SelectedMsg{Option: m.GetSelectedOption(), Index: m.selectedIndex}
		return m, func() tea.Msg { return selected }

	case key.Matches(keyMsg, m.keyMap.Escape):
		m.isOpen = false
		return m, func() tea.Msg { return CancelledMsg{} }
	}
	return m, nil
}

func (m Model) listHeight() int {
	rows := m.height - 2 // borders
	if m.title != "" {
		rows--
	}
	if len(m.options) > rows {
		rows-- // scroll indicator
	}
	return max(rows, 1)
}

// window scrolls the selection into view and returns the rows to draw
func (m Model) window() virtual.Range {
	viewport := virtual.Size{Width: float64(m.width), Height: float64(m.listHeight())}
	m.driver.LayoutPass(len(m.options), 1, viewport)
	if len(m.options) > 0 {
		m.driver.Scroller().ScrollIntoView(m.selectedIndex)
		m.driver.LayoutPass(len(m.options), 1, viewport)
	}
	return m.driver.VisibleRange()
}

// View renders the dropdown, or nothing while closed
func (m Model) View() string {
	if !m.isOpen {
		return ""
	}

	var lines []string
	if m.title != "" {
		lines = append(lines, m.titleStyle.Render(m.title))
	}

	maxWidth := max(m.width-4, 1) // borders and padding
	rng := m.window()
	for i := rng.First; i <= rng.Last && !rng.Empty(); i++ {
		option := m.options[i]
		line := option.Label
		if option.Detail != "" {
			line += "  " + m.detailStyle.Render(option.Detail)
		}
		line = truncate.StringWithTail(line, uint(maxWidth), "…")

		if i == m.selectedIndex {
			line = m.selectedStyle.Width(maxWidth).Render(line)
		} else {
			line = m.unselectedStyle.Width(maxWidth).Render(line)
		}
		lines = append(lines, line)
	}

	if len(m.options) > m.listHeight() && !rng.Empty() {
		scrollInfo := ""
		if rng.First > 0 {
			scrollInfo += "↑ "
		}
		if rng.Last < len(m.options)-1 {
			scrollInfo += "↓"
		}
		lines = append(lines, m.detailStyle.Render(scrollInfo))
	}

	return m.borderStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

// SelectedMsg is sent when an option is picked
type SelectedMsg struct {
	Option Option
	Index  int
}

// CancelledMsg is sent when the dropdown is dismissed
type CancelledMsg struct{}
