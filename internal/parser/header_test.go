package parser

import (
	"testing"
	"time"

	"github.com/Hubro/nso-log-reader/internal/model"
)

func TestParseHeader(t *testing.T) {
	line := "<ERROR> 05-Jan-2024::10:00:00.123 L T: boom"

	h, ok := ParseHeader(line)
	if !ok {
		t.Fatalf("expected %q to classify as a header", line)
	}
	if h.Severity != model.Error {
		t.Errorf("expected severity ERROR, got %s", h.Severity)
	}
	want := time.Date(2024, 1, 5, 10, 0, 0, 123_000_000, time.UTC)
	if !h.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %s, got %s", want, h.Timestamp)
	}
	if h.Logger != "L" {
		t.Errorf("expected logger L, got %q", h.Logger)
	}
	if h.Thread != "T" {
		t.Errorf("expected thread T, got %q", h.Thread)
	}
	if got := line[h.MessageStart:]; got != "boom" {
		t.Errorf("expected message 'boom', got %q", got)
	}
}

func TestParseHeaderDashPrefix(t *testing.T) {
	line := "<INFO> 05-Jan-2024::10:00:00.000 L T: - hi"

	h, ok := ParseHeader(line)
	if !ok {
		t.Fatalf("expected %q to classify as a header", line)
	}
	if got := line[h.MessageStart:]; got != "hi" {
		t.Errorf(`expected the "- " prefix to be consumed, got message %q`, got)
	}
}

func TestParseHeaderDashWithoutSpace(t *testing.T) {
	// A lone dash glued to the message is message content, not the dialect
	// prefix.
	line := "<INFO> 05-Jan-2024::10:00:00.000 L T: -hi"

	h, ok := ParseHeader(line)
	if !ok {
		t.Fatalf("expected %q to classify as a header", line)
	}
	if got := line[h.MessageStart:]; got != "-hi" {
		t.Errorf("expected message %q, got %q", "-hi", got)
	}
}

func TestParseHeaderSeverityTokens(t *testing.T) {
	tests := []struct {
		token string
		want  model.Severity
	}{
		{"DEBUG", model.Debug},
		{"INFO", model.Info},
		{"WARN", model.Warning},
		{"WARNING", model.Warning},
		{"ERR", model.Error},
		{"ERROR", model.Error},
		{"CRIT", model.Critical},
		{"CRITICAL", model.Critical},
	}

	for _, tt := range tests {
		line := "<" + tt.token + "> 05-Jan-2024::10:00:00.000 L T: msg"
		h, ok := ParseHeader(line)
		if !ok {
			t.Errorf("token %s: expected a header", tt.token)
			continue
		}
		if h.Severity != tt.want {
			t.Errorf("token %s: expected %s, got %s", tt.token, tt.want, h.Severity)
		}
	}
}

func TestParseHeaderRejects(t *testing.T) {
	lines := []string{
		"",
		"    at some.python.Frame", // continuation
		"plain text line",          //
		"<FATAL> 05-Jan-2024::10:00:00.000 L T: msg",           // unknown token
		"<info> 05-Jan-2024::10:00:00.000 L T: msg",            // lowercase token
		"<INFO> 2024-01-05T10:00:00.000 L T: msg",              // wrong date shape
		"<INFO> 05-Jan-2024::10:00:00 L T: msg",                // missing millis
		"<INFO> 05-jan-2024::10:00:00.000 L T: msg",            // lowercase month
		"<INFO> 05-Jan-2024::10:00:00.000 L T:",                // no delimiter space
		"<INFO> 05-Jan-2024::10:00:00.000 L T: ",               // empty message
		"<INFO> 05-Jan-2024::10:00:00.000 L T: - ",             // empty after dash
		"<INFO> 05-Jan-2024::10:00:00.000 logger-without-rest", // truncated
		"<INFO>05-Jan-2024::10:00:00.000 L T: msg",             // missing space
		"<INFO",                                 // unterminated token
		"<> 05-Jan-2024::10:00:00.000 L T: msg", // empty token
	}

	for _, line := range lines {
		if _, ok := ParseHeader(line); ok {
			t.Errorf("expected %q to fail classification", line)
		}
	}
}

func TestParseHeaderThreadEndsAtFirstColonSpace(t *testing.T) {
	line := "<INFO> 05-Jan-2024::10:00:00.000 L worker: rest: of message"

	h, ok := ParseHeader(line)
	if !ok {
		t.Fatalf("expected %q to classify as a header", line)
	}
	if h.Thread != "worker" {
		t.Errorf("expected thread to stop at the first \": \", got %q", h.Thread)
	}
	if got := line[h.MessageStart:]; got != "rest: of message" {
		t.Errorf("expected message %q, got %q", "rest: of message", got)
	}
}
