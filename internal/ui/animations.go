package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HamStudy/logview/internal/components/virtual"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EasingFunction maps linear progress in [0, 1] to eased progress
type EasingFunction func(t float64) float64

// Easing functions
func Linear(t float64) float64 {
	return t
}

func EaseOutQuad(t float64) float64 {
	return t * (2 - t)
}

func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func EaseOutCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	t = 2*t - 2
	return 1 + t*t*t/2
}

// DefaultEasing names the curve used when none is configured
const DefaultEasing = "outCubic"

var easings = map[string]EasingFunction{
	"linear":     Linear,
	"outQuad":    EaseOutQuad,
	"inOutQuad":  EaseInOutQuad,
	"outCubic":   EaseOutCubic,
	"inOutCubic": EaseInOutCubic,
}

// EasingNames lists the configurable easing curves
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EasingByName returns the named easing curve. An empty name selects
// DefaultEasing.
func EasingByName(name string) (EasingFunction, error) {
	if name == "" {
		name = DefaultEasing
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (available: %s)", name, strings.Join(EasingNames(), ", "))
	}
	return fn, nil
}

// ScrollFrameMsg drives one frame of a scroll animation
type ScrollFrameMsg struct {
	ID int
}

// ScrollAnimator eases a scroller from its current offset to a target.
// Every frame writes through SetOffset, so clamping and snapping still
// apply; the host re-runs layout after each frame.
type ScrollAnimator struct {
	enabled   bool
	duration  time.Duration
	frameRate time.Duration
	easing    EasingFunction
	now       func() time.Time

	scroller *virtual.Scroller
	from     float64
	to       float64
	start    time.Time
	id       int
	active   bool
}

// NewScrollAnimator creates an animator with the given duration
func NewScrollAnimator(duration time.Duration) *ScrollAnimator {
	return &ScrollAnimator{
		enabled:   true,
		duration:  duration,
		frameRate: 16 * time.Millisecond, // ~60fps
		easing:    EaseOutCubic,
		now:       time.Now,
	}
}

// Enable enables or disables animation. Disabling finishes a running one.
func (a *ScrollAnimator) Enable(enabled bool) {
	a.enabled = enabled
	if !enabled {
		a.Stop()
	}
}

// SetDuration sets the animation duration
func (a *ScrollAnimator) SetDuration(duration time.Duration) {
	a.duration = duration
}

// SetEasing sets the easing function
func (a *ScrollAnimator) SetEasing(easing EasingFunction) {
	a.easing = easing
}

// IsAnimating returns whether an animation is running
func (a *ScrollAnimator) IsAnimating() bool {
	return a.active
}

// ScrollTo starts moving s towards target. A new call replaces the running
// animation and starts from wherever the offset currently is.
func (a *ScrollAnimator) ScrollTo(s *virtual.Scroller, target float64) tea.Cmd {
	if !a.enabled || a.duration <= 0 {
		s.SetOffset(target)
		a.active = false
		return nil
	}

	a.scroller = s
	a.from = s.Offset().Y
	a.to = target
	a.start = a.now()
	a.id++
	a.active = true
	return a.tick()
}

func (a *ScrollAnimator) tick() tea.Cmd {
	id := a.id
	return tea.Tick(a.frameRate, func(time.Time) tea.Msg {
		return ScrollFrameMsg{ID: id}
	})
}

// Update advances the animation on a frame message. handled is true when
// msg was a frame, so the caller knows to re-run layout.
func (a *ScrollAnimator) Update(msg tea.Msg) (handled bool, cmd tea.Cmd) {
	frame, ok := msg.(ScrollFrameMsg)
	if !ok {
		return false, nil
	}
	if !a.active || frame.ID != a.id {
		return true, nil
	}

	elapsed := a.now().Sub(a.start)
	if elapsed >= a.duration {
		a.Stop()
		return true, nil
	}

	progress := a.easing(float64(elapsed) / float64(a.duration))
	a.scroller.SetOffset(a.from + (a.to-a.from)*progress)
	return true, a.tick()
}

// Stop jumps to the target of the running animation
func (a *ScrollAnimator) Stop() {
	if !a.active {
		return
	}
	a.active = false
	a.scroller.SetOffset(a.to)
}

// LoadingIndicator provides animated loading states
type LoadingIndicator struct {
	frames   []string
	current  int
	message  string
	style    lipgloss.Style
	spinning bool
	interval time.Duration
}

// NewLoadingIndicator creates a new loading indicator
func NewLoadingIndicator() *LoadingIndicator {
	return &LoadingIndicator{
		frames: []string{
			"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏",
		},
		interval: 100 * time.Millisecond,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

// SetMessage sets the loading message
func (li *LoadingIndicator) SetMessage(message string) {
	li.message = message
}

// Start starts the loading animation
func (li *LoadingIndicator) Start() tea.Cmd {
	li.spinning = true
	return li.tick()
}

// Stop stops the loading animation
func (li *LoadingIndicator) Stop() {
	li.spinning = false
}

// Spinning reports whether the indicator is running
func (li *LoadingIndicator) Spinning() bool {
	return li.spinning
}

// LoadingTickMsg represents a loading animation tick
type LoadingTickMsg struct{}

// Update advances one frame on a tick
func (li *LoadingIndicator) Update() tea.Cmd {
	if !li.spinning {
		return nil
	}
	li.current = (li.current + 1) % len(li.frames)
	return li.tick()
}

func (li *LoadingIndicator) tick() tea.Cmd {
	return tea.Tick(li.interval, func(time.Time) tea.Msg {
		return LoadingTickMsg{}
	})
}

// View renders the loading indicator
func (li *LoadingIndicator) View() string {
	if !li.spinning {
		return ""
	}

	frame := li.frames[li.current]
	if li.message != "" {
		return li.style.Render(fmt.Sprintf("%s %s", frame, li.message))
	}
	return li.style.Render(frame)
}
