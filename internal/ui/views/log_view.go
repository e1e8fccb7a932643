package views

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/HamStudy/logview/internal/components/dropdown"
	"github.com/HamStudy/logview/internal/components/performance"
	"github.com/HamStudy/logview/internal/components/selection"
	"github.com/HamStudy/logview/internal/components/style"
	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/HamStudy/logview/internal/core"
	"github.com/HamStudy/logview/internal/logs"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

// LinesAppendedMsg tells the view that the store grew
type LinesAppendedMsg struct{}

// Animator moves a scroller to target, possibly over several frames. The
// host must call Relayout after every frame it delivers. Stop finishes a
// running move at its target.
type Animator interface {
	ScrollTo(s *virtual.Scroller, target float64) tea.Cmd
	Stop()
}

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptFilter
)

// rowState is the per-slot render cache. A slot keeps it while it stays
// bound to the same row, so scrolling only renders rows entering the window.
type rowState struct {
	source   int
	width    int
	height   int
	gutter   int
	theme    string
	query    string
	selected bool
	lines    []string
	renders  int
}

func (r *rowState) stale(want rowState) bool {
	return r.lines == nil ||
		r.source != want.source ||
		r.width != want.width ||
		r.height != want.height ||
		r.gutter != want.gutter ||
		r.theme != want.theme ||
		r.query != want.query ||
		r.selected != want.selected
}

type pickerKind int

const (
	pickPreset pickerKind = iota
	pickTheme
)

const chromeHeight = 2 // status bar and footer

// LogView displays a log file through the virtualization engine
type LogView struct {
	state   *core.State
	store   *logs.Store
	filter  *logs.Filter
	driver  *virtual.Driver[rowState]
	tracker *selection.Tracker
	styles  *style.Manager
	monitor *performance.Monitor

	keys  LogKeyMap
	help  help.Model
	input textinput.Model

	prompt     promptKind
	picker     dropdown.Model
	pickerKind pickerKind
	animator   Animator
	smooth     bool

	itemHeight      float64
	showLineNumbers bool
	placements      []virtual.Placement[rowState]
	matches         []int
	message         string
	presets         map[string]string

	width  int
	height int
}

// NewLogView creates a log view over store. Configuration errors in the
// engine settings are reported here.
func NewLogView(store *logs.Store, state *core.State, styles *style.Manager, monitor *performance.Monitor) (*LogView, error) {
	cfg := state.Config()
	if cfg == nil {
		return nil, fmt.Errorf("log view needs a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := cfg.EngineOptions()

	driver, err := virtual.New(opts,
		virtual.WithSlotFactory(func() rowState { return rowState{source: -1} }),
		virtual.WithRebind(func(slot *virtual.Slot[rowState], previous int) {
			slot.Value.lines = nil
		}),
	)
	if err != nil {
		return nil, err
	}

	if styles == nil {
		styles = style.NewManager()
	}
	if err := styles.SetThemeByName(cfg.ColorScheme); err != nil {
		slog.Warn("Falling back to default color scheme", "error", err)
	}
	if monitor == nil {
		monitor = performance.NewMonitor()
	}

	input := textinput.New()
	input.CharLimit = 256

	v := &LogView{
		state:           state,
		store:           store,
		filter:          logs.NewFilter(store),
		driver:          driver,
		tracker:         selection.New(),
		styles:          styles,
		monitor:         monitor,
		keys:            DefaultLogKeyMap(),
		help:            help.New(),
		input:           input,
		picker:          dropdown.New(nil),
		smooth:          cfg.SmoothScroll,
		itemHeight:      opts.ItemHeight,
		showLineNumbers: cfg.ShowLineNumbers,
	}
	v.filter.SetQuery(state.Filter())
	if q := state.Search(); q != "" {
		v.matches = v.findMatches(q)
	}
	return v, nil
}

// SetAnimator installs the animator used for page and jump scrolls
func (v *LogView) SetAnimator(a Animator) {
	v.animator = a
}

// SetFilterPresets sets the named filters reachable as @name from the
// filter prompt
func (v *LogView) SetFilterPresets(presets map[string]string) {
	v.presets = presets
}

// Keys returns the key bindings
func (v *LogView) Keys() LogKeyMap {
	return v.keys
}

// Cursor returns the selected row
func (v *LogView) Cursor() int {
	return v.tracker.Row()
}

// IsPrompting reports whether a prompt or picker has focus
func (v *LogView) IsPrompting() bool {
	return v.prompt != promptNone || v.picker.IsOpen()
}

// Init initializes the view
func (v *LogView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view size
func (v *LogView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.help.Width = width
	v.input.Width = max(width-3, 1)
	v.Relayout()
}

func (v *LogView) viewport() virtual.Size {
	return virtual.Size{
		Width:  float64(v.width),
		Height: float64(max(v.height-chromeHeight, 0)),
	}
}

// Relayout runs a layout pass with the current inputs
func (v *LogView) Relayout() {
	stop := v.monitor.StartTimer(performance.MetricLayoutPass)
	v.placements = v.driver.Pass(v.filter, v.viewport())
	stop()
}

// ApplyConfig applies settings that can change while running
func (v *LogView) ApplyConfig(cfg *core.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts := cfg.EngineOptions()

	if err := v.styles.SetThemeByName(cfg.ColorScheme); err != nil {
		return err
	}
	v.driver.SetOverscan(opts.Overscan)
	v.driver.Scroller().SetWheelLines(opts.WheelLines)
	v.driver.Scroller().SetMode(opts.Mode)
	v.smooth = cfg.SmoothScroll
	v.showLineNumbers = cfg.ShowLineNumbers

	if opts.ItemHeight != v.itemHeight {
		v.itemHeight = opts.ItemHeight
		stop := v.monitor.StartTimer(performance.MetricLayoutPass)
		v.placements = v.driver.LayoutPass(v.filter.Count(), v.itemHeight, v.viewport())
		stop()
		v.revealCursor()
		return nil
	}
	v.Relayout()
	return nil
}

// Update handles messages
func (v *LogView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetSize(msg.Width, msg.Height)
		return v, nil

	case LinesAppendedMsg:
		v.onAppend()
		return v, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return v, nil
		}
		s := v.driver.Scroller()
		v.stopAnimation()
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			s.WheelUp(1)
			v.setFollowing(false)
		case tea.MouseButtonWheelDown:
			s.WheelDown(1)
		default:
			return v, nil
		}
		v.Relayout()
		return v, nil

	case dropdown.SelectedMsg:
		return v, v.applyPick(msg.Option)

	case dropdown.CancelledMsg:
		return v, nil

	case tea.KeyMsg:
		if v.picker.IsOpen() {
			var cmd tea.Cmd
			v.picker, cmd = v.picker.Update(msg)
			return v, cmd
		}
		if v.prompt != promptNone {
			return v, v.handlePrompt(msg)
		}
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *LogView) handleKey(msg tea.KeyMsg) tea.Cmd {
	v.message = ""
	s := v.driver.Scroller()

	switch {
	case key.Matches(msg, v.keys.Up):
		v.setFollowing(false)
		v.moveCursor(-1)

	case key.Matches(msg, v.keys.Down):
		v.moveCursor(1)

	case key.Matches(msg, v.keys.ScrollUp):
		v.setFollowing(false)
		v.stopAnimation()
		s.LineUp()
		v.Relayout()

	case key.Matches(msg, v.keys.ScrollDown):
		v.stopAnimation()
		s.LineDown()
		v.Relayout()

	case key.Matches(msg, v.keys.PageUp):
		v.setFollowing(false)
		v.tracker.Move(-s.ItemsPerPage(), v.filter.Count(), v.filter.Source)
		return v.animate((*virtual.Scroller).PageUp)

	case key.Matches(msg, v.keys.PageDown):
		v.tracker.Move(s.ItemsPerPage(), v.filter.Count(), v.filter.Source)
		return v.animate((*virtual.Scroller).PageDown)

	case key.Matches(msg, v.keys.Top):
		v.setFollowing(false)
		v.tracker.MoveTo(0, v.filter.Count(), v.filter.Source)
		return v.animate((*virtual.Scroller).ScrollToTop)

	case key.Matches(msg, v.keys.Bottom):
		v.tracker.MoveTo(v.filter.Count()-1, v.filter.Count(), v.filter.Source)
		return v.animate((*virtual.Scroller).ScrollToEnd)

	case key.Matches(msg, v.keys.Follow):
		v.setFollowing(!v.state.IsFollowing())
		if v.state.IsFollowing() {
			v.tracker.MoveTo(v.filter.Count()-1, v.filter.Count(), v.filter.Source)
			return v.animate((*virtual.Scroller).ScrollToEnd)
		}

	case key.Matches(msg, v.keys.Search):
		return v.openPrompt(promptSearch, "")

	case key.Matches(msg, v.keys.Filter):
		return v.openPrompt(promptFilter, v.filter.Query())

	case key.Matches(msg, v.keys.NextMatch):
		return v.jumpToMatch(true)

	case key.Matches(msg, v.keys.PrevMatch):
		return v.jumpToMatch(false)

	case key.Matches(msg, v.keys.ClearQuery):
		v.Search("")
		v.ApplyFilter("")

	case key.Matches(msg, v.keys.Snap):
		if s.Mode() == virtual.Snapped {
			s.SetMode(virtual.Pixel)
		} else {
			s.SetMode(virtual.Snapped)
		}
		v.Relayout()

	case key.Matches(msg, v.keys.Presets):
		v.openPicker(pickPreset)

	case key.Matches(msg, v.keys.Themes):
		v.openPicker(pickTheme)
	}
	return nil
}

func (v *LogView) openPicker(kind pickerKind) {
	var options []dropdown.Option
	title := "Color scheme"
	switch kind {
	case pickPreset:
		title = "Filter presets"
		names := make([]string, 0, len(v.presets))
		for name := range v.presets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			options = append(options, dropdown.Option{Label: "@" + name, Detail: v.presets[name], Value: name})
		}
		if len(options) == 0 {
			v.message = "No filter presets configured"
			return
		}
	case pickTheme:
		for _, name := range style.ThemeNames() {
			detail := ""
			if theme, err := style.ThemeByName(name); err == nil {
				detail = theme.Description
			}
			options = append(options, dropdown.Option{Label: name, Detail: detail, Value: name})
		}
	}

	vh := int(v.viewport().Height)
	v.pickerKind = kind
	v.picker.SetOptions(options)
	v.picker.SetTitle(title)
	v.picker.SetSize(min(max(v.width-4, 10), 50), max(min(len(options)+3, vh), 4))
	v.picker.SetSelectedIndex(0)
	if kind == pickTheme {
		v.picker.SetSelectedValue(v.styles.GetTheme().Name)
	}
	v.picker.Open()
}

func (v *LogView) applyPick(option dropdown.Option) tea.Cmd {
	switch v.pickerKind {
	case pickPreset:
		v.ApplyFilter("@" + option.Value)
	case pickTheme:
		if err := v.styles.SetThemeByName(option.Value); err != nil {
			v.message = err.Error()
			return nil
		}
		if cfg := v.state.Config(); cfg != nil {
			next := *cfg
			next.ColorScheme = option.Value
			v.state.SetConfig(&next)
		}
	}
	return nil
}

func (v *LogView) setFollowing(on bool) {
	v.state.SetFollowing(on)
}

func (v *LogView) moveCursor(delta int) {
	v.tracker.Move(delta, v.filter.Count(), v.filter.Source)
	v.revealCursor()
}

// revealCursor scrolls the minimum needed to show the cursor row. The
// extent is refreshed first so rows appended since the last pass can be
// scrolled to.
func (v *LogView) revealCursor() {
	v.stopAnimation()
	v.Relayout()
	if v.filter.Count() == 0 {
		return
	}
	v.driver.Scroller().ScrollIntoView(v.tracker.Row())
	v.Relayout()
}

// stopAnimation settles a running animated scroll so an immediate scroll
// is not overwritten by its next frame.
func (v *LogView) stopAnimation() {
	if v.animator != nil {
		v.animator.Stop()
	}
}

// animate applies op to find the target offset, then either keeps it or
// rewinds and hands the move to the animator.
func (v *LogView) animate(op func(*virtual.Scroller) float64) tea.Cmd {
	s := v.driver.Scroller()
	from := s.Offset().Y
	target := op(s)

	if v.animator == nil || !v.smooth || target == from {
		v.Relayout()
		return nil
	}
	s.SetOffset(from)
	return v.animator.ScrollTo(s, target)
}

func (v *LogView) onAppend() {
	if !v.filter.Sync() {
		return
	}
	if q := v.state.Search(); q != "" {
		v.matches = v.findMatches(q)
	}

	v.Relayout()
	if v.state.IsFollowing() {
		v.tracker.MoveTo(v.filter.Count()-1, v.filter.Count(), v.filter.Source)
		v.stopAnimation()
		v.driver.Scroller().ScrollToEnd()
		v.Relayout()
	}
}

func (v *LogView) openPrompt(kind promptKind, value string) tea.Cmd {
	v.prompt = kind
	v.input.Reset()
	if kind == promptSearch {
		v.input.Prompt = "/"
		v.input.Placeholder = "search"
	} else {
		v.input.Prompt = "&"
		v.input.Placeholder = "filter, ~ for fuzzy"
	}
	v.input.SetValue(value)
	v.input.CursorEnd()
	return tea.Batch(v.input.Focus(), textinput.Blink)
}

func (v *LogView) handlePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		value := v.input.Value()
		kind := v.prompt
		v.closePrompt()
		if kind == promptSearch {
			return v.Search(value)
		}
		v.ApplyFilter(value)
		return nil

	case tea.KeyEsc:
		v.closePrompt()
		return nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *LogView) closePrompt() {
	v.prompt = promptNone
	v.input.Blur()
}

// ApplyFilter replaces the filter query and restores the selected line
func (v *LogView) ApplyFilter(query string) {
	if name, ok := strings.CutPrefix(query, "@"); ok {
		preset, found := v.presets[name]
		if !found {
			v.message = "Unknown filter preset: " + name
			return
		}
		query = preset
	}

	stop := v.monitor.StartTimer(performance.MetricFilter)
	v.filter.SetQuery(query)
	stop()

	v.state.SetFilter(query)
	if q := v.state.Search(); q != "" {
		v.matches = v.findMatches(q)
	}

	v.tracker.Restore(v.filter.Count(), v.filter.Row)
	v.revealCursor()

	if v.filter.Active() && v.filter.Count() == 0 {
		v.message = "No lines match filter"
	}
}

// Search highlights query and moves to the first match at or after the
// cursor
func (v *LogView) Search(query string) tea.Cmd {
	v.state.SetSearch(query)
	if query == "" {
		v.matches = nil
		return nil
	}
	v.matches = v.findMatches(query)
	if len(v.matches) == 0 {
		v.message = "Pattern not found: " + query
		return nil
	}

	i := sort.SearchInts(v.matches, v.tracker.Row())
	if i == len(v.matches) {
		i = 0
	}
	return v.gotoRow(v.matches[i])
}

func (v *LogView) findMatches(query string) []int {
	needle := strings.ToLower(query)
	var rows []int
	for row := 0; row < v.filter.Count(); row++ {
		if strings.Contains(strings.ToLower(v.filter.Line(row)), needle) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (v *LogView) jumpToMatch(forward bool) tea.Cmd {
	if len(v.matches) == 0 {
		if v.state.Search() != "" {
			v.message = "Pattern not found: " + v.state.Search()
		}
		return nil
	}

	cur := v.tracker.Row()
	var i int
	if forward {
		i = sort.SearchInts(v.matches, cur+1)
		if i == len(v.matches) {
			i = 0
		}
	} else {
		i = sort.SearchInts(v.matches, cur) - 1
		if i < 0 {
			i = len(v.matches) - 1
		}
	}
	return v.gotoRow(v.matches[i])
}

func (v *LogView) gotoRow(row int) tea.Cmd {
	v.setFollowing(false)
	v.tracker.MoveTo(row, v.filter.Count(), v.filter.Source)
	return v.animate(func(s *virtual.Scroller) float64 {
		return s.ScrollIntoView(row)
	})
}

// View renders the visible rows, the status bar and the footer
func (v *LogView) View() string {
	if v.width <= 0 || v.height <= 0 {
		return ""
	}
	stop := v.monitor.StartTimer(performance.MetricRender)
	defer stop()

	height := int(v.viewport().Height)
	canvas := make([]string, height)

	want := rowState{
		width:  v.width,
		height: int(v.itemHeight),
		gutter: v.gutterWidth(),
		theme:  v.styles.GetTheme().Name,
		query:  v.state.Search(),
	}
	offset := v.driver.Offset().Y
	cursor := v.tracker.Row()

	for _, p := range v.placements {
		rs := &p.Slot.Value
		want.source = v.filter.Source(p.Index)
		want.selected = p.Index == cursor
		if rs.stale(want) {
			renders := rs.renders + 1
			*rs = want
			rs.lines = v.renderRow(want)
			rs.renders = renders
		}

		top := int(math.Round(p.Rect.Y - offset))
		for k, line := range rs.lines {
			if y := top + k; y >= 0 && y < height {
				canvas[y] = line
			}
		}
	}

	body := strings.Join(canvas, "\n")
	if v.picker.IsOpen() {
		body = lipgloss.Place(v.width, height, lipgloss.Center, lipgloss.Center, v.picker.View())
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(v.statusBar())
	b.WriteString("\n")
	b.WriteString(v.footer())
	return b.String()
}

func (v *LogView) gutterWidth() int {
	if !v.showLineNumbers {
		return 0
	}
	return len(strconv.Itoa(max(v.store.Count(), 1))) + 1
}

// renderRow renders one log line into exactly row.height terminal rows.
func (v *LogView) renderRow(row rowState) []string {
	text := strings.ReplaceAll(v.store.Line(row.source), "\t", "    ")
	width := max(row.width-row.gutter, 1)

	var parts []string
	if row.height <= 1 {
		parts = []string{truncate.StringWithTail(text, uint(width), "…")}
	} else {
		parts = strings.Split(wrap.String(text, width), "\n")
		if len(parts) > row.height {
			parts = parts[:row.height]
			last := parts[row.height-1]
			parts[row.height-1] = truncate.StringWithTail(last+"…", uint(width), "…")
		}
	}

	lineStyle := v.styles.Line(logs.Level(text), row.selected)
	lines := make([]string, max(row.height, 1))
	for i := range lines {
		part := ""
		if i < len(parts) {
			part = parts[i]
		}
		if row.selected {
			part += strings.Repeat(" ", max(width-lipgloss.Width(part), 0))
		}

		gutter := ""
		if row.gutter > 0 {
			num := ""
			if i == 0 {
				num = strconv.Itoa(row.source + 1)
			}
			gutter = v.styles.Gutter(row.gutter - 1).Render(num)
		}
		lines[i] = gutter + v.highlight(part, row.query, lineStyle)
	}
	return lines
}

// highlight styles every case-insensitive occurrence of query in s
func (v *LogView) highlight(s, query string, base lipgloss.Style) string {
	lower := strings.ToLower(s)
	if query == "" || len(lower) != len(s) {
		return base.Render(s)
	}
	needle := strings.ToLower(query)
	hit := v.styles.SearchHit()

	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			break
		}
		if i > 0 {
			b.WriteString(base.Render(s[:i]))
		}
		b.WriteString(hit.Render(s[i : i+len(needle)]))
		s, lower = s[i+len(needle):], lower[i+len(needle):]
	}
	if s != "" {
		b.WriteString(base.Render(s))
	}
	return b.String()
}

func (v *LogView) statusBar() string {
	total := v.filter.Count()
	vis := v.driver.VisibleRange()

	var left strings.Builder
	if name := v.state.CurrentFile; name != "" {
		left.WriteString(filepath.Base(name) + " ")
	}
	if total == 0 {
		left.WriteString("0/0")
	} else {
		fmt.Fprintf(&left, "%d-%d/%d", vis.First+1, vis.Last+1, total)
	}
	if v.filter.Active() {
		fmt.Fprintf(&left, " (%s of %d)", v.filter.Query(), v.store.Count())
	}
	if len(v.matches) > 0 {
		fmt.Fprintf(&left, " [%d hits]", len(v.matches))
	}

	s := v.driver.Scroller()
	stats := v.driver.Stats()
	right := fmt.Sprintf("%.0f/%.0f %s slots %d+%d",
		s.Offset().Y, s.MaxOffset(), s.Mode(), stats.Bound, stats.Retired)
	if m := v.monitor.GetMetric(performance.MetricLayoutPass); m != nil {
		right += fmt.Sprintf(" layout %s", m.LastTime.Round(time.Microsecond))
	}
	if v.state.IsFollowing() {
		right += " " + v.styles.Follow().Render("FOLLOW")
	}

	gap := max(v.width-lipgloss.Width(left.String())-lipgloss.Width(right)-1, 1)
	line := left.String() + strings.Repeat(" ", gap) + right
	return v.styles.StatusBar(v.width).Render(truncate.String(line, uint(v.width)))
}

func (v *LogView) footer() string {
	switch {
	case v.picker.IsOpen():
		return v.help.ShortHelpView(v.picker.ShortHelp())
	case v.prompt != promptNone:
		return v.styles.Prompt().Render(v.input.View())
	case v.message != "":
		return v.message
	default:
		return v.help.ShortHelpView(v.keys.ShortHelp())
	}
}
