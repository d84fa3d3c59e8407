package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"bogus": zerolog.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoggerWritesServiceField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test-api", Output: &buf})
	logg.Info(context.Background(), "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log output: %v", err)
	}
	if entry["service"] != "test-api" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["message"] != "hello" {
		t.Fatalf("expected message, got %v", entry["message"])
	}
}

func TestContextFieldsPropagate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithFields(ctx, map[string]any{"user_id": "u-1"})
	logg.Info(ctx, "with fields")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Fatalf("missing request_id in %s", out)
	}
	if !strings.Contains(out, `"user_id":"u-1"`) {
		t.Fatalf("missing user_id in %s", out)
	}
}

func TestErrorIncludesStack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})
	logg.Error(context.Background(), "boom", context.Canceled)

	if !strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("expected stack field in %s", buf.String())
	}
}
