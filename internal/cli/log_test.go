package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/observability"
	"github.com/matzehuels/partree/pkg/pipeline"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		debug   bool
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, false, true},
		{"debug at info level", log.InfoLevel, true, false},
		{"debug at debug level", log.DebugLevel, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			if tt.debug {
				logger.Debug("msg")
			} else {
				logger.Info("msg")
			}
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Built tree with 3 nodes")

	out := buf.String()
	if !strings.Contains(out, "Built tree with 3 nodes (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext should return the stored logger")
	}
}

func TestInstallLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	c.InstallLogHooks()

	runner := pipeline.NewRunner(nil, nil, nil)
	opts := pipeline.Options{Expression: "1+2", Evaluator: eval.KindNumeric}
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	_, _ = runner.Execute(context.Background(), pipeline.Options{Expression: "1+"})

	out := buf.String()
	for _, want := range []string{"hooks", "build", "layout", "evaluate", "render", "build failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook log missing %q:\n%s", want, out)
		}
	}
}
