package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.raw); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestNewLoggerAttachesServiceFields(t *testing.T) {
	logger := NewLogger(Config{Service: "svc", Version: "1.0"})
	if logger == nil {
		t.Fatal("nil logger")
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx, nil); got != logger {
		t.Fatal("stored logger not returned")
	}

	fallback := slog.New(slog.NewTextHandler(&buf, nil))
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("fallback not returned for bare context")
	}
	if got := FromContext(nil, fallback); got != fallback { //nolint:staticcheck
		t.Fatal("fallback not returned for nil context")
	}
}

func TestNilSafeHelpers(t *testing.T) {
	Debug(nil, "msg")
	Info(nil, "msg")
	Warn(nil, "msg")
	Error(nil, "msg", errors.New("boom"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	Error(logger, "failed", errors.New("boom"), "game_id", "g1")

	out := buf.String()
	if !strings.Contains(out, "error=boom") || !strings.Contains(out, "game_id=g1") {
		t.Fatalf("log output = %s", out)
	}
}
