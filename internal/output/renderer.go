// Package output renders segmented records for consumption: plain text for
// terminals, JSON lines for piping, and the wire shape shared with the
// websocket stream.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Hubro/nso-log-reader/internal/model"
)

// timeLayout keeps the millisecond precision of the parsed timestamps.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Renderer writes records to an output stream.
type Renderer interface {
	Render(rec model.Record) error
}

// ---------------------------------------------------------------------------
// Text renderer
// ---------------------------------------------------------------------------

// TextRenderer prints one record per emission. Multi-line messages get a
// gutter so merged continuation lines stay visually attached to their
// header.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer writing plain text to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout}
}

func (r *TextRenderer) Render(rec model.Record) error {
	switch t := rec.(type) {
	case *model.NormalRecord:
		return r.renderNormal(t)
	case *model.ContinuationRecord:
		tag := "-"
		if t.Inherited {
			tag = t.Severity.String()
		}
		_, err := fmt.Fprintf(r.w, "%-8s %s\n", tag, t.Text)
		return err
	default:
		_, err := fmt.Fprintln(r.w, rec.Raw())
		return err
	}
}

func (r *TextRenderer) renderNormal(rec *model.NormalRecord) error {
	lines := strings.Split(rec.Message, "\n")

	_, err := fmt.Fprintf(r.w, "%-8s %s %s %s: %s\n",
		rec.Severity, rec.Timestamp.Format(timeLayout), rec.Logger, rec.Thread, lines[0])
	if err != nil {
		return err
	}
	for _, line := range lines[1:] {
		if _, err := fmt.Fprintf(r.w, "  | %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// JSON renderer
// ---------------------------------------------------------------------------

// JSONRenderer prints each record as one JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer writing JSON lines to stdout.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(os.Stdout)}
}

func (r *JSONRenderer) Render(rec model.Record) error {
	return r.enc.Encode(Encode(rec))
}

// ---------------------------------------------------------------------------
// Wire shape
// ---------------------------------------------------------------------------

// WireRecord is the flattened JSON shape used by the JSON renderer and the
// websocket stream. Kind discriminates the two record cases.
type WireRecord struct {
	Kind      string `json:"kind"` // "record" or "continuation"
	Severity  string `json:"severity,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Logger    string `json:"logger,omitempty"`
	Thread    string `json:"thread,omitempty"`
	Message   string `json:"message,omitempty"`
	Text      string `json:"text,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Encode flattens a record into its wire shape. A continuation that has not
// inherited any severity carries an empty severity field.
func Encode(rec model.Record) WireRecord {
	switch t := rec.(type) {
	case *model.NormalRecord:
		return WireRecord{
			Kind:      "record",
			Severity:  t.Severity.String(),
			Timestamp: t.Timestamp.Format(timeLayout),
			Logger:    t.Logger,
			Thread:    t.Thread,
			Message:   t.Message,
			Source:    t.Source,
		}
	case *model.ContinuationRecord:
		w := WireRecord{
			Kind:   "continuation",
			Text:   t.Text,
			Source: t.Source,
		}
		if t.Inherited {
			w.Severity = t.Severity.String()
		}
		return w
	default:
		return WireRecord{Kind: "record", Text: rec.Raw()}
	}
}
