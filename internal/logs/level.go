package logs

import "strings"

// Severity is a coarse log level used for styling.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return ""
	}
}

var levelMarkers = []struct {
	marker   string
	severity Severity
}{
	{"ERROR", SeverityError},
	{"FATAL", SeverityError},
	{"PANIC", SeverityError},
	{"WARN", SeverityWarn},
	{"INFO", SeverityInfo},
	{"DEBUG", SeverityDebug},
	{"TRACE", SeverityDebug},
}

// Level guesses the severity of a line. Only the first 80 bytes are
// inspected since levels sit near the start of a line in common formats.
func Level(line string) Severity {
	head := line
	if len(head) > 80 {
		head = head[:80]
	}
	head = strings.ToUpper(head)

	best, bestPos := SeverityNone, len(head)+1
	for _, m := range levelMarkers {
		pos := strings.Index(head, m.marker)
		if pos < 0 || pos >= bestPos {
			continue
		}
		best, bestPos = m.severity, pos
	}
	return best
}
