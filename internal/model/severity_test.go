package model

import (
	"encoding/json"
	"testing"
)

func TestParseSeverityToken(t *testing.T) {
	tests := []struct {
		token string
		want  Severity
	}{
		{"DEBUG", Debug},
		{"INFO", Info},
		{"WARN", Warning},
		{"WARNING", Warning},
		{"ERR", Error},
		{"ERROR", Error},
		{"CRIT", Critical},
		{"CRITICAL", Critical},
	}

	for _, tt := range tests {
		got, ok := ParseSeverityToken(tt.token)
		if !ok {
			t.Errorf("expected %q to be recognized", tt.token)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %s, got %s", tt.token, tt.want, got)
		}
	}
}

func TestParseSeverityTokenRejects(t *testing.T) {
	for _, token := range []string{"", "info", "Error", "FATAL", "TRACE", "WARNIN", "CRITICALL"} {
		if _, ok := ParseSeverityToken(token); ok {
			t.Errorf("expected %q to be rejected", token)
		}
	}
}

func TestSeverityJSON(t *testing.T) {
	raw, err := json.Marshal(Warning)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"WARNING"` {
		t.Errorf(`expected "WARNING", got %s`, raw)
	}
}
