package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "bogus"} {
		if logger := New(lvl, "text"); logger == nil {
			t.Errorf("New(%q) returned nil", lvl)
		}
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}

	ctx = WithRequestID(ctx, "req-123")
	if got := RequestID(ctx); got != "req-123" {
		t.Errorf("expected req-123, got %q", got)
	}
}

func TestL_FallsBackToDefault(t *testing.T) {
	logger := L(context.Background())
	if logger == nil {
		t.Fatal("L returned nil")
	}
}

func TestFromContext(t *testing.T) {
	custom := New("info", "json")
	ctx := WithLogger(context.Background(), custom)
	if got := FromContext(ctx); got != custom {
		t.Error("FromContext did not return the stored logger")
	}
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Error("FromContext without logger should return slog.Default()")
	}
}
