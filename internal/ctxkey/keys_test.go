package ctxkey

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := Logger(context.Background(), fallback); got != fallback {
		t.Error("empty context should return the fallback")
	}

	enriched := fallback.With("request_id", "r-1")
	ctx := WithLogger(context.Background(), enriched)
	if got := Logger(ctx, fallback); got != enriched {
		t.Error("Logger() should return the carried logger")
	}

	if got := Logger(WithLogger(context.Background(), nil), fallback); got != fallback {
		t.Error("a nil carried logger should yield the fallback")
	}
}
