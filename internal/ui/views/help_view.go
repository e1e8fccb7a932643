package views

import (
	"strings"

	"github.com/HamStudy/logview/internal/components/style"
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpView displays help information
type HelpView struct {
	keys   LogKeyMap
	help   help.Model
	width  int
	height int
}

// NewHelpView creates a new help view for the given bindings
func NewHelpView(keys LogKeyMap) *HelpView {
	h := help.New()
	h.ShowAll = true
	return &HelpView{keys: keys, help: h}
}

// Init initializes the view
func (v *HelpView) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (v *HelpView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
	}
	return v, nil
}

// SetSize sets the view size
func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.help.Width = width
}

// View renders the help screen
func (v *HelpView) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86")).
		MarginBottom(1)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("logview - Help"))
	b.WriteString("\n\n")
	b.WriteString(v.help.View(v.keys))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Filters starting with ~ match fuzzily."))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Color schemes: " + strings.Join(style.ThemeNames(), ", ")))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Press ? to close help"))

	return lipgloss.Place(
		v.width,
		v.height,
		lipgloss.Center,
		lipgloss.Center,
		b.String(),
	)
}
