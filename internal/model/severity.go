package model

import "fmt"

// Severity is the classified level of a log record.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Critical
)

// severityTokens maps the tokens accepted between '<' and '>' in a header
// line. Matching is case-sensitive; anything else is not a header marker.
var severityTokens = map[string]Severity{
	"DEBUG":    Debug,
	"INFO":     Info,
	"WARN":     Warning,
	"WARNING":  Warning,
	"ERR":      Error,
	"ERROR":    Error,
	"CRIT":     Critical,
	"CRITICAL": Critical,
}

// ParseSeverityToken resolves a header severity token to its Severity.
// Returns false for unrecognized tokens.
func ParseSeverityToken(tok string) (Severity, bool) {
	s, ok := severityTokens[tok]
	return s, ok
}

// String returns the canonical name of a Severity.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalJSON encodes a Severity as its canonical name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
