// 指示: miu200521358
package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := parseLevel(raw)
		if !ok {
			t.Fatalf("expected level to parse: %q", raw)
		}
		if got != want {
			t.Fatalf("level mismatch: raw=%q got=%v want=%v", raw, got, want)
		}
	}
	if _, ok := parseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure(ProfileTest, &bytes.Buffer{}, "loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, zerolog.WarnLevel, true)
	logger.Info("hidden %d", 1)
	logger.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("warn log should be written: %s", out)
	}
}

func TestSetDefaultLoggerIgnoresNil(t *testing.T) {
	before := DefaultLogger()
	SetDefaultLogger(nil)
	if DefaultLogger() != before {
		t.Fatalf("nil logger should not replace default")
	}
}
