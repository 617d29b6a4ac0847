// Package cli implements the partree command-line interface.
//
// Running partree without a subcommand starts the interactive read loop:
// each line is folded into a parallel tree, printed level by level and
// evaluated. The subcommands render single expressions to files, re-render
// saved trees, run a terminal UI or the HTTP server, and manage history,
// cache and configuration.
//
// Settings come from the config file (see pkg/config) and are overridden by
// the global flags --evaluator, --precision, --given and --no-cache.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/buildinfo"
	"github.com/matzehuels/partree/pkg/cache"
	"github.com/matzehuels/partree/pkg/config"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/history"
	"github.com/matzehuels/partree/pkg/pipeline"
)

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// In and Out are the REPL's input and output. They default to
	// os.Stdin and os.Stdout.
	In  io.Reader
	Out io.Writer

	flags  globalFlags
	config *config.Config
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	evaluator  string
	precision  uint
	given      []string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself runs the REPL.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "partree folds arithmetic expressions into parallel evaluation trees",
		Long: `partree reads arithmetic expressions and shows how they would be
evaluated in parallel: operands are paired level by level with the operators
in the order they appear, and the resulting balanced tree is printed as a
grid next to the evaluated result.

Run without arguments to start the interactive loop.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runREPL(cmd.Context())
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/partree/config.toml)")
	pf.StringVar(&c.flags.evaluator, "evaluator", "", "evaluator: symbolic, numeric, none")
	pf.UintVar(&c.flags.precision, "precision", 0, "numeric evaluator precision in bits")
	pf.StringArrayVar(&c.flags.given, "given", nil, "bind a variable for the numeric evaluator (name=value, repeatable)")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.replCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies the global flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}
	if c.flags.evaluator != "" {
		cfg.Evaluator = c.flags.evaluator
	}
	if c.flags.precision != 0 {
		cfg.Precision = c.flags.precision
	}
	given, err := parseGiven(c.flags.given)
	if err != nil {
		return err
	}
	for name, value := range given {
		cfg.Vars[name] = value
	}
	if err := pipeline.ValidateEvaluator(cfg.Evaluator); err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("loaded config", "evaluator", cfg.Evaluator, "cache", cfg.Cache.Backend, "history", cfg.History.Backend)
	return nil
}

// cfg returns the loaded configuration, or the defaults when a command runs
// without the root's pre-run (tests calling subcommands directly).
func (c *CLI) cfg() *config.Config {
	if c.config == nil {
		c.config = config.Default()
	}
	return c.config
}

// parseGiven parses repeated name=value flags.
func parseGiven(given []string) (map[string]string, error) {
	vars := make(map[string]string, len(given))
	for _, g := range given {
		name, value, ok := strings.Cut(g, "=")
		name = strings.TrimSpace(name)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--given must be name=value, got %q", g)
		}
		if err := errors.ValidateVarName(name); err != nil {
			return nil, err
		}
		vars[name] = strings.TrimSpace(value)
	}
	return vars, nil
}

// baseOptions returns pipeline options carrying the configured evaluator
// and layout settings.
func (c *CLI) baseOptions() pipeline.Options {
	cfg := c.cfg()
	return pipeline.Options{
		CellWidth: cfg.CellWidth,
		Evaluator: cfg.Evaluator,
		Precision: cfg.Precision,
		Vars:      cfg.Vars,
		Logger:    c.Logger,
	}
}

// =============================================================================
// Runner and Store Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.cfg().Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.cfg()
	if c.flags.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "connect redis cache at %s", cfg.Cache.RedisAddr)
		}
		return rc, nil
	case config.BackendNone:
		return cache.NewNullCache(), nil
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			c.Logger.Debug("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newHistory opens the configured history store.
func (c *CLI) newHistory(ctx context.Context) (history.Store, error) {
	cfg := c.cfg()
	switch cfg.History.Backend {
	case config.BackendMongo:
		s, err := history.NewMongoStore(ctx, history.MongoConfig{
			URI:      cfg.History.MongoURI,
			Database: cfg.History.MongoDatabase,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistory, err, "connect mongo history")
		}
		return s, nil
	case config.BackendNone:
		return history.Nop{}, nil
	default:
		path, err := cfg.HistoryFile()
		if err != nil {
			return nil, fmt.Errorf("history path: %w", err)
		}
		return history.NewFileStore(path)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatText}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
