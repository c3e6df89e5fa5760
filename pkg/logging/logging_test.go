package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := NewWithWriter(&buf, tt.level)
			if err != nil {
				t.Fatal(err)
			}
			l.Debug("debug line")
			l.Info("info line", "faces", 12)

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.debugSeen {
				t.Errorf("debug line present = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(out, "info line"); got != tt.infoSeen {
				t.Errorf("info line present = %v, want %v", got, tt.infoSeen)
			}
			if tt.infoSeen && !strings.Contains(out, Prefix) {
				t.Errorf("output %q lacks prefix", out)
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty"); err == nil {
		t.Error("unknown level accepted")
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("dropped")
}
