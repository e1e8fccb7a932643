package core

import "sync"

// State holds the application state shared between views
type State struct {
	mu sync.RWMutex

	// Current view state
	CurrentFile   string
	SelectedIndex int
	Following     bool

	// Query state
	FilterString string
	SearchQuery  string

	// UI state
	ShowHelp bool

	config *Config
}

// NewState creates a new application state
func NewState(config *Config) *State {
	s := &State{config: config}
	if config != nil {
		s.CurrentFile = config.LogFile
		s.Following = config.Follow
	}
	return s
}

// Config returns the configuration the state was built from
func (s *State) Config() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetConfig swaps in a reloaded configuration
func (s *State) SetConfig(config *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// SetFilter updates the active filter string
func (s *State) SetFilter(filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilterString = filter
}

// Filter returns the active filter string
func (s *State) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.FilterString
}

// SetSearch updates the active search query
func (s *State) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SearchQuery = query
}

// Search returns the active search query
func (s *State) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SearchQuery
}

// SetFollowing toggles follow mode
func (s *State) SetFollowing(follow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Following = follow
}

// IsFollowing reports whether follow mode is on
func (s *State) IsFollowing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Following
}
