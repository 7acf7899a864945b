package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name  string
		level string
		want  log.Level
	}{
		{name: "empty defaults to info", level: "", want: log.InfoLevel},
		{name: "debug", level: "debug", want: log.DebugLevel},
		{name: "warn", level: "warn", want: log.WarnLevel},
		{name: "unknown falls back to info", level: "chatty", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLevel(tt.level); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "component=test") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("level filters debug output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Debug("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid uuid, got %q: %v", a, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"a": 1}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("compact = %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(pretty) != "{\n  \"a\": 1\n}" {
		t.Errorf("pretty = %s", pretty)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tui.log")

	logger, f, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("file logger ready")
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "file logger ready") {
		t.Errorf("log file missing message: %q", data)
	}
}
