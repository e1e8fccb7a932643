package core

import (
	"testing"
)

// TestNewStateInitializesFromConfig tests that NewState picks up the file and
// follow flag from the config
func TestNewStateInitializesFromConfig(t *testing.T) {
	tests := []struct {
		name          string
		logFile       string
		follow        bool
		expectedFile  string
		expectedTrail bool
	}{
		{
			name:          "File and follow from config",
			logFile:       "/var/log/syslog",
			follow:        true,
			expectedFile:  "/var/log/syslog",
			expectedTrail: true,
		},
		{
			name:         "Empty file",
			logFile:      "",
			expectedFile: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{
				LogFile:    tt.logFile,
				Follow:     tt.follow,
				ItemHeight: 1,
			}

			state := NewState(config)

			if state.CurrentFile != tt.expectedFile {
				t.Errorf("Expected CurrentFile %q, got %q", tt.expectedFile, state.CurrentFile)
			}
			if state.IsFollowing() != tt.expectedTrail {
				t.Errorf("Expected Following %v, got %v", tt.expectedTrail, state.IsFollowing())
			}
			if state.Config() != config {
				t.Error("Expected state to keep the config pointer")
			}
		})
	}
}

func TestStateQueries(t *testing.T) {
	state := NewState(nil)

	state.SetFilter("error")
	state.SetSearch("timeout")
	state.SetFollowing(true)

	if state.Filter() != "error" {
		t.Errorf("Expected filter %q, got %q", "error", state.Filter())
	}
	if state.Search() != "timeout" {
		t.Errorf("Expected search %q, got %q", "timeout", state.Search())
	}
	if !state.IsFollowing() {
		t.Error("Expected follow mode to be on")
	}
}
