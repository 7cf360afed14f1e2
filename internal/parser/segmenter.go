package parser

import (
	"errors"
	"io"
	"strings"

	"github.com/Hubro/nso-log-reader/internal/model"
	"github.com/Hubro/nso-log-reader/internal/source"
)

// severityCarry remembers the severity of the most recently classified
// header so standalone continuation lines can inherit it. It starts unknown
// and is scoped to one Segmenter instance.
type severityCarry struct {
	sev   model.Severity
	known bool
}

func (c *severityCarry) set(s model.Severity) {
	c.sev = s
	c.known = true
}

func (c *severityCarry) get() (model.Severity, bool) {
	return c.sev, c.known
}

// Segmenter converts the line stream of a Source into a lazy sequence of
// records, merging continuation lines into the message of the open record.
// It keeps at most one line of read-ahead and owns its Source exclusively;
// it is not safe for concurrent use.
//
// Usage follows the bufio.Scanner shape:
//
//	seg := parser.NewSegmenter(src, "app.log")
//	for seg.Scan() {
//		handle(seg.Record())
//	}
//	if err := seg.Err(); err != nil { ... }
type Segmenter struct {
	src   source.Source
	label string // source attribution stamped on emitted records

	lookahead string
	buffered  bool
	carry     severityCarry

	rec  model.Record
	err  error
	done bool
}

// NewSegmenter returns a Segmenter reading from src. label names the
// originating stream (a file path, "stdin", ...) and may be empty.
func NewSegmenter(src source.Source, label string) *Segmenter {
	return &Segmenter{src: src, label: label}
}

// Scan advances to the next record. It returns false when the source is
// exhausted or a fatal read error occurred; Err distinguishes the two.
func (s *Segmenter) Scan() bool {
	if s.done {
		return false
	}
	if s.err != nil {
		// A fatal error was stashed while finishing the previous record;
		// surface it now, once.
		s.done = true
		return false
	}

	// Fetch the line that decides what kind of record comes next. A timeout
	// with no record open carries no information, so just wait again.
	var line string
	for {
		l, err := s.takeLine()
		if err == nil {
			line = l
			break
		}
		if errors.Is(err, source.ErrTimeout) {
			continue
		}
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return false
	}

	hdr, ok := ParseHeader(line)
	if !ok {
		// Nothing is open to merge into: the line is one standalone record,
		// tagged with whatever severity was last classified.
		sev, known := s.carry.get()
		s.rec = &model.ContinuationRecord{
			Text:      line,
			Severity:  sev,
			Inherited: known,
			Source:    s.label,
		}
		return true
	}
	s.carry.set(hdr.Severity)

	raw := []string{line}
	msg := []string{line[hdr.MessageStart:]}

	// Accumulate continuation lines until the next header, end of input, a
	// timeout, or a fatal error closes the record.
	for {
		next, err := s.takeLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
			} else if !errors.Is(err, source.ErrTimeout) {
				// Emit what accumulated first; report the error on the
				// next Scan so no contributing line is lost.
				s.err = err
			}
			break
		}

		if _, isHeader := ParseHeader(next); isHeader {
			s.unreadLine(next)
			break
		}
		raw = append(raw, next)
		msg = append(msg, next)
	}

	s.rec = &model.NormalRecord{
		Severity:  hdr.Severity,
		Timestamp: hdr.Timestamp,
		Logger:    hdr.Logger,
		Thread:    hdr.Thread,
		Message:   strings.Join(msg, "\n"),
		Source:    s.label,
		Text:      strings.Join(raw, "\n"),
	}
	return true
}

// Record returns the record produced by the last successful Scan. The
// record is immutable once returned; later lines never alter it.
func (s *Segmenter) Record() model.Record {
	return s.rec
}

// Err returns the fatal source error that ended the sequence, or nil after
// a clean end of input.
func (s *Segmenter) Err() error {
	return s.err
}

// takeLine returns the buffered read-ahead line if one is pending,
// otherwise reads from the source.
func (s *Segmenter) takeLine() (string, error) {
	if s.buffered {
		s.buffered = false
		return s.lookahead, nil
	}
	return s.src.ReadLine()
}

// unreadLine puts a line back so the next takeLine returns it. The buffer
// holds at most one line.
func (s *Segmenter) unreadLine(line string) {
	s.lookahead = line
	s.buffered = true
}
