package logs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/HamStudy/logview/internal/components/performance"
	"github.com/nxadm/tail"
)

// DefaultFollowDelay is how long the follower waits for a burst of lines
// to settle before notifying.
const DefaultFollowDelay = 50 * time.Millisecond

// Follower appends lines written to a file after it was loaded.
type Follower struct {
	path      string
	store     *Store
	notify    func()
	delay     time.Duration
	fromStart bool

	mu      sync.Mutex
	tailer  *tail.Tail
	pending []string
}

// FollowerOption configures a Follower
type FollowerOption func(*Follower)

// WithFollowDelay sets the coalescing delay
func WithFollowDelay(d time.Duration) FollowerOption {
	return func(f *Follower) { f.delay = d }
}

// WithFromStart reads the whole file instead of seeking to its end.
// Useful when the store was not preloaded.
func WithFromStart() FollowerOption {
	return func(f *Follower) { f.fromStart = true }
}

// NewFollower creates a follower that appends to store and calls notify
// after each burst of new lines.
func NewFollower(path string, store *Store, notify func(), opts ...FollowerOption) *Follower {
	f := &Follower{
		path:   path,
		store:  store,
		notify: notify,
		delay:  DefaultFollowDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.notify == nil {
		f.notify = func() {}
	}
	return f
}

// Run tails the file until ctx is cancelled or the tailer fails.
func (f *Follower) Run(ctx context.Context) error {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if f.fromStart {
		location = nil
	}

	t, err := tail.TailFile(f.path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Location: location,
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", f.path, err)
	}
	f.mu.Lock()
	f.tailer = t
	f.mu.Unlock()
	defer t.Cleanup()

	debouncer := performance.NewDebouncer(f.delay, f.flush)
	defer debouncer.Flush()

	slog.Debug("Following log file", "path", f.path)
	for {
		select {
		case <-ctx.Done():
			if err := t.Stop(); err != nil {
				slog.Debug("Tailer stop", "error", err)
			}
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				slog.Warn("Follow error", "path", f.path, "error", line.Err)
				continue
			}
			f.mu.Lock()
			f.pending = append(f.pending, line.Text)
			f.mu.Unlock()
			debouncer.Trigger()
		}
	}
}

func (f *Follower) flush() {
	f.mu.Lock()
	lines := f.pending
	f.pending = nil
	f.mu.Unlock()

	if len(lines) == 0 {
		return
	}
	f.store.Append(lines...)
	f.notify()
}
