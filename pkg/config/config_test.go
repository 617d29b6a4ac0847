package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/partree/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.Prompt != DefaultPrompt {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.Evaluator != "symbolic" {
		t.Errorf("Evaluator = %q, want symbolic", cfg.Evaluator)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CellWidth != Default().CellWidth {
		t.Errorf("CellWidth = %d, want default", cfg.CellWidth)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
cell_width = 5
evaluator = "numeric"
precision = 128

[vars]
x = "2"
rate = "0.5"

[cache]
backend = "redis"
redis_addr = "cache:6379"
prefix = "staging:"

[history]
backend = "none"

[server]
addr = ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CellWidth != 5 || cfg.Evaluator != "numeric" || cfg.Precision != 128 {
		t.Errorf("top-level = %d %q %d", cfg.CellWidth, cfg.Evaluator, cfg.Precision)
	}
	if cfg.Vars["x"] != "2" || cfg.Vars["rate"] != "0.5" {
		t.Errorf("Vars = %v", cfg.Vars)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.Prefix != "staging:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.History.Backend != BackendNone {
		t.Errorf("History.Backend = %q", cfg.History.Backend)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	// Untouched keys keep their defaults.
	if cfg.Prompt != DefaultPrompt {
		t.Errorf("Prompt = %q, want default", cfg.Prompt)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "cell_width = ", "parse config"},
		{"unknown key", "colour = \"red\"", "unknown config keys"},
		{"cell width", "cell_width = 0", "cell_width"},
		{"evaluator", `evaluator = "maxima"`, "evaluator"},
		{"var name", "[vars]\n\"2x\" = \"1\"", "vars"},
		{"cache backend", "[cache]\nbackend = \"memcached\"", "cache.backend"},
		{"history backend", "[history]\nbackend = \"redis\"", "history.backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Vars["y"] = "3"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, string(data))
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load(Encode()) error: %v\n%s", err, data)
	}
	if back.Vars["y"] != "3" || back.Server.Addr != cfg.Server.Addr {
		t.Errorf("round trip = %+v", back)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-config", AppName, FileName); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}

	cfg := Default()
	dir, _ := cfg.CacheDir()
	if want := filepath.Join("/tmp/xdg-cache", AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}
	hist, _ := cfg.HistoryFile()
	if want := filepath.Join("/tmp/xdg-config", AppName, "history.jsonl"); hist != want {
		t.Errorf("HistoryFile() = %q, want %q", hist, want)
	}

	cfg.Cache.Dir = "/srv/cache"
	if dir, _ := cfg.CacheDir(); dir != "/srv/cache" {
		t.Errorf("CacheDir() override = %q", dir)
	}
}

func TestPathsDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}
