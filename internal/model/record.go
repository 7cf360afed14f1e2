package model

import "time"

// Record is one unit of segmented log output. It is exactly one of
// *NormalRecord or *ContinuationRecord; consumers type-switch over the two.
type Record interface {
	// Raw returns the verbatim text of every input line that contributed to
	// this record, newline-joined in original order. Concatenating Raw()
	// across an entire run reproduces the input.
	Raw() string

	record()
}

// NormalRecord is a record opened by a header line, possibly with
// continuation lines merged into its message.
type NormalRecord struct {
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"` // UTC, millisecond precision
	Logger    string    `json:"logger"`
	Thread    string    `json:"thread"`
	Message   string    `json:"message"` // may contain embedded newlines
	Source    string    `json:"source,omitempty"`

	// Text is the verbatim header line plus any merged continuation lines.
	Text string `json:"-"`
}

func (r *NormalRecord) Raw() string { return r.Text }
func (r *NormalRecord) record()     {}

// ContinuationRecord is a line that matched no header grammar and had no
// open record to attach to. Severity is inherited from the most recently
// classified header; Inherited is false when no header has been seen yet.
type ContinuationRecord struct {
	Text      string   `json:"text"`
	Severity  Severity `json:"severity"`
	Inherited bool     `json:"inherited"`
	Source    string   `json:"source,omitempty"`
}

func (r *ContinuationRecord) Raw() string { return r.Text }
func (r *ContinuationRecord) record()     {}
