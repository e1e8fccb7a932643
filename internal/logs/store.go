// Package logs holds the lines being viewed and the sources that fill them.
package logs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const maxLineSize = 1024 * 1024

// Store is an append-only list of log lines.
type Store struct {
	mu      sync.RWMutex
	lines   []string
	version uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Count returns the number of lines
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Line returns line i, or "" when out of range
func (s *Store) Line(i int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return s.lines[i]
}

// Lines returns a copy of lines [from, to)
func (s *Store) Lines(from, to int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from = max(from, 0)
	to = min(to, len(s.lines))
	if from >= to {
		return nil
	}
	return append([]string(nil), s.lines[from:to]...)
}

// Append adds lines to the end of the store
func (s *Store) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		s.lines = append(s.lines, strings.TrimSuffix(l, "\r"))
	}
	s.version++
}

// Reset drops every line
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.version++
}

// Version changes on every mutation. Views compare it to decide when to
// rebuild derived state such as filters.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Load appends every line read from r
func (s *Store) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var batch []string
	for scanner.Scan() {
		batch = append(batch, scanner.Text())
		if len(batch) == 4096 {
			s.Append(batch...)
			batch = batch[:0]
		}
	}
	s.Append(batch...)

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log lines: %w", err)
	}
	return nil
}

// LoadTail appends only the last n lines read from r. n <= 0 loads
// everything.
func (s *Store) LoadTail(r io.Reader, n int) error {
	if n <= 0 {
		return s.Load(r)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	ring := make([]string, n)
	total := 0
	for scanner.Scan() {
		ring[total%n] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log lines: %w", err)
	}

	if total <= n {
		s.Append(ring[:total]...)
		return nil
	}
	start := total % n
	s.Append(append(ring[start:], ring[:start]...)...)
	return nil
}

// LoadFile appends the contents of the file at path
func (s *Store) LoadFile(path string) error {
	return s.LoadFileTail(path, 0)
}

// LoadFileTail appends the last n lines of the file at path
func (s *Store) LoadFileTail(path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	return s.LoadTail(f, n)
}
