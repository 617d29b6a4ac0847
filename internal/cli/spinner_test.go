package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) *Spinner {
	s := newSpinnerWithContext(ctx, msg)
	s.w = io.Discard
	return s
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), "Rendering...")
	s.w = &buf
	s.Start()
	time.Sleep(4 * spinnerTick)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Rendering...") {
		t.Errorf("spinner output %q should contain the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner should clear its line on stop, got %q", out)
	}
	if !s.Cancelled() {
		t.Error("Cancelled() should be true after Stop")
	}
}

func TestSpinner_Elapsed(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), "svg")
	s.w = &buf
	s.draw("⠋", 1500*time.Millisecond)
	if !strings.Contains(buf.String(), "svg 1.5s") {
		t.Errorf("draw() = %q", buf.String())
	}
	s.clearLine()
	if s.width != 0 {
		t.Error("clearLine should reset the drawn width")
	}
}

func TestSpinner_ParentContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			return context.WithCancel(context.Background())
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := quietSpinner(ctx, "waiting")
			s.Start()
			cancel()
			<-s.stopped
			if !s.Cancelled() {
				t.Error("spinner should follow its parent context")
			}
			s.Stop()
		})
	}
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	s := quietSpinner(context.Background(), "idle")
	s.Stop()

	s = quietSpinner(context.Background(), "running")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinner_StopWithError(t *testing.T) {
	status := isolate(t)
	s := quietSpinner(context.Background(), "Rendering...")
	s.Start()
	s.StopWithError("Render failed")
	if !strings.Contains(status.String(), "Render failed") {
		t.Errorf("output = %q", status.String())
	}
}

func TestStopSpinner(t *testing.T) {
	status := isolate(t)

	stopSpinner(nil, errors.New("ignored"))

	ctx, cancel := context.WithCancel(context.Background())
	s := quietSpinner(ctx, "Rendering...")
	s.Start()
	cancel()
	stopSpinner(s, context.Canceled)
	if status.Len() != 0 {
		t.Errorf("interrupted render should print nothing, got %q", status.String())
	}

	s = quietSpinner(context.Background(), "Rendering...")
	s.Start()
	stopSpinner(s, errors.New("rsvg-convert not found"))
	if !strings.Contains(status.String(), "Render failed") {
		t.Errorf("failed render output = %q", status.String())
	}
}
