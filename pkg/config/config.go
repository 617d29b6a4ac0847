// Package config loads the partree configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/partree/config.toml, or
// ~/.config/partree/config.toml when XDG_CONFIG_HOME is unset. A missing
// file is not an error: [Load] returns [Default]. Command-line flags override
// whatever the file sets.
//
//	cell_width = 3
//	evaluator = "numeric"
//
//	[vars]
//	x = "2"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
)

// AppName names the configuration, cache and history directories.
const AppName = "partree"

// FileName is the name of the configuration file.
const FileName = "config.toml"

// DefaultPrompt is the REPL prompt.
const DefaultPrompt = "Enter an arithmetic expression (or 'exit' to quit): "

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the contents of the configuration file.
type Config struct {
	CellWidth int               `toml:"cell_width"`
	Evaluator string            `toml:"evaluator"`
	Precision uint              `toml:"precision"`
	Prompt    string            `toml:"prompt"`
	Vars      map[string]string `toml:"vars"`

	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir,omitempty"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	Prefix        string `toml:"prefix,omitempty"` // namespaces keys in a shared backend
}

// HistoryConfig selects the history backend.
type HistoryConfig struct {
	Backend       string `toml:"backend"`
	File          string `toml:"file,omitempty"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures `partree serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CellWidth: 3,
		Evaluator: eval.KindSymbolic,
		Precision: eval.DefaultPrecision,
		Prompt:    DefaultPrompt,
		Vars:      map[string]string{},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		History: HistoryConfig{
			Backend:       BackendFile,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: AppName,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the file at path over the defaults. An empty path means
// [Path]. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Vars == nil {
		cfg.Vars = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	if c.CellWidth < 1 || c.CellWidth > 32 {
		return errors.New(errors.ErrCodeInvalidConfig, "cell_width must be between 1 and 32, got %d", c.CellWidth)
	}
	if !slices.Contains(eval.Kinds, c.Evaluator) {
		return errors.New(errors.ErrCodeInvalidConfig, "evaluator must be one of %s, got %q", strings.Join(eval.Kinds, ", "), c.Evaluator)
	}
	if c.Precision == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "precision must be positive")
	}
	for name := range c.Vars {
		if err := errors.ValidateVarName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "vars: %s", errors.UserMessage(err))
		}
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if !slices.Contains([]string{BackendFile, BackendMongo, BackendNone}, c.History.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "history.backend must be file, mongo or none, got %q", c.History.Backend)
	}
	return nil
}

// Encode returns the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Dir returns the configuration directory (~/.config/partree/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// CacheDir returns the cache directory (~/.cache/partree/), honoring
// XDG_CACHE_HOME and a cache.dir override.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// HistoryFile returns the history file path, honoring a history.file
// override.
func (c *Config) HistoryFile() (string, error) {
	if c.History.File != "" {
		return c.History.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.jsonl"), nil
}
