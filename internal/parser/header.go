// Package parser turns raw NSO python-vm log lines into classified records.
//
// A header line looks like:
//
//	<INFO> 05-Jan-2024::10:00:00.123 some-logger worker-0: message text
//
// Lines that do not match this grammar are continuations: they belong to the
// message of the preceding header line, or stand alone when no record is
// open (typically when attaching to a live log mid-stream).
package parser

import (
	"strings"
	"time"

	"github.com/Hubro/nso-log-reader/internal/model"
)

// dateLayout matches timestamps like 05-Jan-2024::10:00:00.123. The
// fractional part must be exactly three digits.
const dateLayout = "02-Jan-2006::15:04:05.000"

// Header holds the parsed fields of a classified header line.
type Header struct {
	Severity  model.Severity
	Timestamp time.Time // UTC, millisecond precision
	Logger    string
	Thread    string

	// MessageStart is the byte offset of the message text within the line,
	// past the ": " delimiter and the optional "- " prefix.
	MessageStart int
}

// ParseHeader classifies one line. It returns false for any line that is
// not a well-formed header: wrong shape, unknown severity token,
// unparseable date, or no message text after the delimiters. Classification
// never fails hard — a rejected line simply falls through to continuation
// handling.
func ParseHeader(line string) (Header, bool) {
	var h Header

	if len(line) == 0 || line[0] != '<' {
		return h, false
	}

	end := strings.IndexByte(line, '>')
	if end < 0 {
		return h, false
	}
	sev, ok := model.ParseSeverityToken(line[1:end])
	if !ok {
		return h, false
	}
	h.Severity = sev

	// Single space, then the date up to the next space.
	dateStart := end + 2
	if dateStart > len(line) || line[end+1] != ' ' {
		return h, false
	}
	sp := strings.IndexByte(line[dateStart:], ' ')
	if sp < 0 {
		return h, false
	}
	ts, err := time.Parse(dateLayout, line[dateStart:dateStart+sp])
	if err != nil {
		return h, false
	}
	h.Timestamp = ts.UTC()

	loggerStart := dateStart + sp + 1
	sp = strings.IndexByte(line[loggerStart:], ' ')
	if sp < 0 {
		return h, false
	}
	h.Logger = line[loggerStart : loggerStart+sp]

	// The thread field runs up to the first ": " sequence.
	threadStart := loggerStart + sp + 1
	delim := strings.Index(line[threadStart:], ": ")
	if delim < 0 {
		return h, false
	}
	h.Thread = line[threadStart : threadStart+delim]

	msg := threadStart + delim + 2
	// Legacy dialect prefixes the message with "- "; consume it.
	if strings.HasPrefix(line[msg:], "- ") {
		msg += 2
	}
	if msg >= len(line) {
		// A header with no message text is not a header.
		return h, false
	}
	h.MessageStart = msg

	return h, true
}
