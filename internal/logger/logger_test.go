package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter_Level(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if got := NewWithWriter(&buf, tt.level).GetLevel(); got != tt.want {
			t.Errorf("level %q: expected %s, got %s", tt.level, tt.want, got)
		}
	}
}

func TestNewWithWriter_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")
	log.Info().Str("ticker", "AAPL").Msg("evaluated")
	log.Debug().Msg("dropped")

	out := buf.String()
	if !strings.Contains(out, `"ticker":"AAPL"`) || !strings.Contains(out, `"time"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("debug line should be filtered at info level")
	}
}
