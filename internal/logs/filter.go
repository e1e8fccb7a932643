package logs

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// FuzzyPrefix switches a filter query to fuzzy matching.
const FuzzyPrefix = "~"

// Filter is a view over a Store that only exposes matching lines. With an
// empty query every line passes. Rows are always in file order.
type Filter struct {
	store   *Store
	query   string
	rows    []int
	version uint64
	built   bool
}

// NewFilter creates a filter over store
func NewFilter(store *Store) *Filter {
	return &Filter{store: store}
}

// SetQuery replaces the query and rebuilds the row mapping
func (f *Filter) SetQuery(query string) {
	if f.built && query == f.query {
		return
	}
	f.query = query
	f.built = false
	f.Sync()
}

// Query returns the active query
func (f *Filter) Query() string {
	return f.query
}

// Active reports whether the filter hides anything
func (f *Filter) Active() bool {
	return f.query != "" && f.query != FuzzyPrefix
}

// Fuzzy reports whether the query uses fuzzy matching
func (f *Filter) Fuzzy() bool {
	return strings.HasPrefix(f.query, FuzzyPrefix)
}

// Sync rebuilds the rows if the store has changed since the last build.
// It returns true when the mapping changed.
func (f *Filter) Sync() bool {
	v := f.store.Version()
	if f.built && v == f.version {
		return false
	}
	f.version = v
	f.built = true

	if !f.Active() {
		f.rows = nil
		return true
	}

	lines := f.store.Lines(0, f.store.Count())
	if f.Fuzzy() {
		f.rows = fuzzyRows(strings.TrimPrefix(f.query, FuzzyPrefix), lines)
	} else {
		f.rows = substringRows(f.query, lines)
	}
	return true
}

func substringRows(query string, lines []string) []int {
	needle := strings.ToLower(query)
	rows := make([]int, 0)
	for i, l := range lines {
		if strings.Contains(strings.ToLower(l), needle) {
			rows = append(rows, i)
		}
	}
	return rows
}

func fuzzyRows(pattern string, lines []string) []int {
	matches := fuzzy.Find(pattern, lines)
	rows := make([]int, len(matches))
	for i, m := range matches {
		rows[i] = m.Index
	}
	// fuzzy ranks by score; a log must stay chronological.
	sort.Ints(rows)
	return rows
}

// Count returns the number of visible rows
func (f *Filter) Count() int {
	if !f.Active() {
		return f.store.Count()
	}
	return len(f.rows)
}

// Source maps a row to its store line, or -1
func (f *Filter) Source(row int) int {
	if row < 0 || row >= f.Count() {
		return -1
	}
	if !f.Active() {
		return row
	}
	return f.rows[row]
}

// Row maps a store line to its row. When the line is hidden the nearest
// earlier visible row is returned with ok false; -1 when there is none.
func (f *Filter) Row(source int) (row int, ok bool) {
	if !f.Active() {
		if source < 0 || source >= f.store.Count() {
			return -1, false
		}
		return source, true
	}
	i := sort.SearchInts(f.rows, source)
	if i < len(f.rows) && f.rows[i] == source {
		return i, true
	}
	return i - 1, false
}

// Line returns the text of a row
func (f *Filter) Line(row int) string {
	return f.store.Line(f.Source(row))
}
