package views

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/HamStudy/logview/internal/components/virtual"
	"github.com/HamStudy/logview/internal/core"
	"github.com/HamStudy/logview/internal/logs"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *core.Config {
	return &core.Config{
		ItemHeight:      1,
		Overscan:        3,
		WheelLines:      3,
		ScrollMode:      "snapped",
		ColorScheme:     "default",
		ShowLineNumbers: true,
	}
}

// createTestLogView builds an 80x24 view (22 content rows) over n lines.
// Every line i with i%100 == 50 is an ERROR line.
func createTestLogView(t *testing.T, n int) (*LogView, *logs.Store) {
	t.Helper()
	store := logs.NewStore()
	for i := 0; i < n; i++ {
		if i%100 == 50 {
			store.Append(fmt.Sprintf("ERROR line %d", i))
		} else {
			store.Append(fmt.Sprintf("INFO line %d", i))
		}
	}

	lv, err := NewLogView(store, core.NewState(testConfig()), nil, nil)
	require.NoError(t, err)
	lv.SetSize(80, 24)
	return lv, store
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(lv *LogView, msgs ...tea.Msg) {
	for _, msg := range msgs {
		lv.Update(msg)
	}
}

func typeText(lv *LogView, s string) {
	for _, r := range s {
		lv.Update(runes(string(r)))
	}
}

func offset(lv *LogView) float64 {
	return lv.driver.Offset().Y
}

func sumRenders(lv *LogView) int {
	total := 0
	for _, p := range lv.placements {
		total += p.Slot.Value.renders
	}
	return total
}

type recordingAnimator struct {
	targets []float64
	stops   int
}

func (a *recordingAnimator) ScrollTo(s *virtual.Scroller, target float64) tea.Cmd {
	a.targets = append(a.targets, target)
	return nil
}

func (a *recordingAnimator) Stop() { a.stops++ }

func TestLogViewInitialization(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	if cmd := lv.Init(); cmd != nil {
		t.Error("LogView Init should return nil command")
	}
	// 22 visible rows plus 3 rows of overscan below the viewport.
	if len(lv.placements) != 25 {
		t.Errorf("Expected 25 placements, got %d", len(lv.placements))
	}
	if lv.placements[0].Index != 0 || lv.placements[24].Index != 24 {
		t.Errorf("Unexpected placement range %d..%d", lv.placements[0].Index, lv.placements[24].Index)
	}
	if offset(lv) != 0 {
		t.Errorf("Expected offset 0, got %v", offset(lv))
	}
}

func TestLogViewInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ItemHeight = 0

	_, err := NewLogView(logs.NewStore(), core.NewState(cfg), nil, nil)
	if !errors.Is(err, core.ErrInvalidItemHeight) {
		t.Errorf("Expected ErrInvalidItemHeight, got %v", err)
	}
}

func TestLogViewCursorMovement(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	for i := 0; i < 30; i++ {
		press(lv, runes("j"))
	}
	assert.Equal(t, 30, lv.Cursor())
	assert.Equal(t, 9.0, offset(lv), "cursor row is kept at the bottom edge")

	press(lv, runes("k"))
	assert.Equal(t, 29, lv.Cursor())
	assert.Equal(t, 9.0, offset(lv), "moving within the viewport does not scroll")

	for i := 0; i < 40; i++ {
		press(lv, tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.Equal(t, 0, lv.Cursor())
	assert.Equal(t, 0.0, offset(lv))
}

func TestLogViewPagingAndJumps(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	press(lv, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 22.0, offset(lv))
	assert.Equal(t, 22, lv.Cursor())

	press(lv, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 0.0, offset(lv))
	assert.Equal(t, 0, lv.Cursor())

	press(lv, runes("G"))
	assert.Equal(t, 978.0, offset(lv))
	assert.Equal(t, 999, lv.Cursor())
	last := lv.placements[len(lv.placements)-1]
	assert.Equal(t, 999, last.Index)

	press(lv, runes("g"))
	assert.Equal(t, 0.0, offset(lv))
	assert.Equal(t, 0, lv.Cursor())
}

func TestLogViewLineScroll(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	press(lv, tea.KeyMsg{Type: tea.KeyCtrlE}, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Equal(t, 2.0, offset(lv))
	assert.Equal(t, 0, lv.Cursor(), "line scrolling leaves the cursor alone")

	press(lv, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, 1.0, offset(lv))
}

func TestLogViewMouseWheel(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	wheel := func(b tea.MouseButton) tea.MouseMsg {
		return tea.MouseMsg{Button: b, Action: tea.MouseActionPress}
	}

	press(lv, wheel(tea.MouseButtonWheelDown))
	assert.Equal(t, 3.0, offset(lv))

	press(lv, wheel(tea.MouseButtonWheelUp), wheel(tea.MouseButtonWheelUp))
	assert.Equal(t, 0.0, offset(lv), "wheel up clamps at the top")

	press(lv, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionRelease})
	assert.Equal(t, 0.0, offset(lv), "releases are ignored")
}

func TestLogViewFollowMode(t *testing.T) {
	lv, store := createTestLogView(t, 1000)

	if lv.state.IsFollowing() {
		t.Error("Follow mode should be disabled by default")
	}

	press(lv, runes("f"))
	if !lv.state.IsFollowing() {
		t.Fatal("Follow mode should be enabled after toggle")
	}
	assert.Equal(t, 978.0, offset(lv))

	for i := 0; i < 10; i++ {
		store.Append("INFO appended")
	}
	press(lv, LinesAppendedMsg{})
	assert.Equal(t, 988.0, offset(lv), "follow keeps the view at the end")
	assert.Equal(t, 1009, lv.Cursor())

	press(lv, runes("k"))
	if lv.state.IsFollowing() {
		t.Error("Moving up should stop following")
	}

	store.Append("INFO more")
	press(lv, LinesAppendedMsg{})
	assert.Equal(t, 988.0, offset(lv), "offset stays put when not following")
}

func TestLogViewSearch(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	press(lv, runes("/"))
	if !lv.IsPrompting() {
		t.Fatal("Expected the search prompt to open")
	}
	typeText(lv, "error")
	press(lv, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, lv.IsPrompting())
	assert.Len(t, lv.matches, 10)
	assert.Equal(t, 50, lv.Cursor())
	assert.Equal(t, 29.0, offset(lv))

	press(lv, runes("n"))
	assert.Equal(t, 150, lv.Cursor())
	assert.Equal(t, 129.0, offset(lv))

	press(lv, runes("N"))
	assert.Equal(t, 50, lv.Cursor())
	assert.Equal(t, 50.0, offset(lv), "a row above the viewport is aligned to the top")

	press(lv, runes("N"))
	assert.Equal(t, 950, lv.Cursor(), "previous match wraps around")
}

func TestLogViewSearchNotFound(t *testing.T) {
	lv, _ := createTestLogView(t, 100)

	lv.Search("nothing like this")
	assert.Empty(t, lv.matches)
	assert.Contains(t, lv.footer(), "Pattern not found")
	assert.Equal(t, 0, lv.Cursor())
}

func TestLogViewPromptEscape(t *testing.T) {
	lv, _ := createTestLogView(t, 100)

	press(lv, runes("&"))
	typeText(lv, "ERROR")
	press(lv, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, lv.IsPrompting())
	assert.Equal(t, 100, lv.filter.Count(), "escape discards the filter")
}

func TestLogViewFilterKeepsSelection(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	lv.Search("ERROR")
	press(lv, runes("n"))
	require.Equal(t, 150, lv.Cursor())

	press(lv, runes("&"))
	typeText(lv, "ERROR")
	press(lv, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 10, lv.filter.Count())
	assert.Equal(t, 1, lv.Cursor(), "line 150 is the second match")
	assert.Equal(t, 0.0, offset(lv))
	assert.Equal(t, "ERROR", lv.state.Filter())

	press(lv, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1000, lv.filter.Count())
	assert.Equal(t, 150, lv.Cursor(), "clearing the filter returns to the same line")
	assert.Equal(t, 129.0, offset(lv))
}

func TestLogViewFilterShrinkClampsOffset(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	press(lv, runes("G"))
	require.Equal(t, 978.0, offset(lv))

	lv.ApplyFilter("ERROR")
	assert.Equal(t, 0.0, offset(lv))
	assert.Equal(t, 9, lv.Cursor(), "hidden line 999 falls back to the nearest earlier match")
	assert.Len(t, lv.placements, 10)
	for _, p := range lv.placements {
		if p.Index >= 10 {
			t.Errorf("Placement %d is out of range after shrinking", p.Index)
		}
	}

	lv.ApplyFilter("no such line")
	assert.Empty(t, lv.placements)
	assert.Contains(t, lv.footer(), "No lines match")
	assert.NotPanics(t, func() { lv.View() })
}

func TestLogViewFuzzyFilter(t *testing.T) {
	lv, _ := createTestLogView(t, 300)

	lv.ApplyFilter("~ERR50")
	if lv.filter.Count() == 0 {
		t.Fatal("Expected fuzzy filter to match")
	}
	for i := 1; i < lv.filter.Count(); i++ {
		if lv.filter.Source(i) <= lv.filter.Source(i-1) {
			t.Error("Filtered rows must stay in file order")
		}
	}
}

func TestLogViewSnapToggle(t *testing.T) {
	lv, _ := createTestLogView(t, 100)

	assert.Equal(t, virtual.Snapped, lv.driver.Scroller().Mode())
	press(lv, runes("s"))
	assert.Equal(t, virtual.Pixel, lv.driver.Scroller().Mode())
	press(lv, runes("s"))
	assert.Equal(t, virtual.Snapped, lv.driver.Scroller().Mode())
}

func TestLogViewRenderCache(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	lv.View()
	assert.Equal(t, 25, sumRenders(lv), "first render draws every realized row")

	lv.View()
	assert.Equal(t, 25, sumRenders(lv), "unchanged rows are not redrawn")

	press(lv, runes("j"))
	lv.View()
	assert.Equal(t, 27, sumRenders(lv), "only the old and new cursor rows are redrawn")

	press(lv, tea.KeyMsg{Type: tea.KeyCtrlE})
	lv.View()
	assert.Equal(t, 28, sumRenders(lv), "scrolling one line draws only the entering row")
}

func TestLogViewRender(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)

	lines := strings.Split(lv.View(), "\n")
	require.Len(t, lines, 24)
	assert.Contains(t, lines[0], "INFO line 0")
	assert.Contains(t, lines[21], "INFO line 21")
	assert.Contains(t, lines[22], "1-22/1000")
	assert.Contains(t, lines[22], "snapped")
}

func TestLogViewTallRows(t *testing.T) {
	lv, _ := createTestLogView(t, 100)

	cfg := testConfig()
	cfg.ItemHeight = 2
	require.NoError(t, lv.ApplyConfig(cfg))

	assert.Equal(t, 200.0, lv.driver.Extent().Height)
	lines := strings.Split(lv.View(), "\n")
	require.Len(t, lines, 24)
	assert.Contains(t, lines[2], "INFO line 1", "each log line takes two rows")

	press(lv, runes("G"))
	assert.Equal(t, 178.0, offset(lv))
}

func TestLogViewApplyConfigErrors(t *testing.T) {
	lv, _ := createTestLogView(t, 10)

	cfg := testConfig()
	cfg.ColorScheme = "neon"
	assert.Error(t, lv.ApplyConfig(cfg))

	cfg = testConfig()
	cfg.Overscan = -1
	assert.ErrorIs(t, lv.ApplyConfig(cfg), virtual.ErrInvalidOverscan)
}

func TestLogViewSmoothScrollUsesAnimator(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)
	anim := &recordingAnimator{}
	lv.SetAnimator(anim)

	cfg := testConfig()
	cfg.SmoothScroll = true
	require.NoError(t, lv.ApplyConfig(cfg))

	press(lv, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, []float64{22}, anim.targets)
	assert.Equal(t, 0.0, offset(lv), "the animator owns the move")
	assert.Equal(t, 22, lv.Cursor())

	press(lv, runes("j"))
	assert.Len(t, anim.targets, 1, "single line moves are not animated")
	assert.Equal(t, 1, anim.stops, "a cursor move settles the running animation")
}

func TestLogViewImmediateScrollStopsAnimation(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)
	anim := &recordingAnimator{}
	lv.SetAnimator(anim)

	press(lv, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Equal(t, 1, anim.stops)

	press(lv, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, 2, anim.stops)

	press(lv, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	assert.Equal(t, 3, anim.stops)
	assert.Equal(t, 3.0, offset(lv))
}

func TestLogViewCursorReachesUnannouncedLines(t *testing.T) {
	lv, store := createTestLogView(t, 1000)

	press(lv, runes("G"))
	require.Equal(t, 999, lv.Cursor())
	require.Equal(t, 978.0, offset(lv))

	// Appended without a LinesAppendedMsg, so the extent is stale until the
	// cursor move lays out again.
	for i := 0; i < 5; i++ {
		store.Append("INFO appended")
	}
	press(lv, runes("j"))

	assert.Equal(t, 1000, lv.Cursor())
	assert.Equal(t, 979.0, offset(lv), "the view scrolls to the new cursor row")
	last := lv.placements[len(lv.placements)-1]
	assert.GreaterOrEqual(t, last.Index, 1000)
}

func TestLogViewFilterPresets(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)
	lv.SetFilterPresets(map[string]string{"errors": "error"})

	lv.ApplyFilter("@errors")
	assert.Equal(t, 10, lv.filter.Count())
	assert.Equal(t, "error", lv.state.Filter())

	lv.ApplyFilter("@missing")
	assert.Equal(t, 10, lv.filter.Count(), "unknown presets leave the filter alone")
	assert.Contains(t, lv.footer(), "Unknown filter preset")
}

// pick drives a key press through the view and feeds back the message its
// command produces
func pick(lv *LogView, msg tea.KeyMsg) {
	_, cmd := lv.Update(msg)
	if cmd != nil {
		lv.Update(cmd())
	}
}

func TestLogViewPresetPicker(t *testing.T) {
	lv, _ := createTestLogView(t, 1000)
	lv.SetFilterPresets(map[string]string{"errors": "error", "infos": "info"})

	press(lv, runes("p"))
	require.True(t, lv.IsPrompting())
	view := lv.View()
	assert.Contains(t, view, "Filter presets")
	assert.Contains(t, view, "@errors")
	assert.Contains(t, view, "@infos")

	pick(lv, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, lv.IsPrompting())
	assert.Equal(t, 10, lv.filter.Count())
	assert.Equal(t, "error", lv.state.Filter())
}

func TestLogViewPresetPickerCancel(t *testing.T) {
	lv, _ := createTestLogView(t, 100)
	lv.SetFilterPresets(map[string]string{"errors": "error"})

	press(lv, runes("p"))
	pick(lv, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, lv.IsPrompting())
	assert.Equal(t, 100, lv.filter.Count(), "cancelling keeps the filter")
}

func TestLogViewPresetPickerEmpty(t *testing.T) {
	lv, _ := createTestLogView(t, 10)

	press(lv, runes("p"))
	assert.False(t, lv.IsPrompting())
	assert.Contains(t, lv.footer(), "No filter presets")
}

func TestLogViewThemePicker(t *testing.T) {
	lv, _ := createTestLogView(t, 10)

	press(lv, runes("t"))
	require.True(t, lv.IsPrompting())
	assert.Contains(t, lv.View(), "Color scheme")
	assert.Equal(t, "default", lv.picker.GetSelectedOption().Value, "the current scheme is preselected")

	// Themes are sorted: dark, default, light.
	press(lv, runes("j"))
	pick(lv, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "light", lv.styles.GetTheme().Name)
	assert.Equal(t, "light", lv.state.Config().ColorScheme)
}
