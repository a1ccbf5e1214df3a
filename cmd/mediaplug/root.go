package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesyncim/mediaplug"
	"github.com/thesyncim/mediaplug/builtin"
	"github.com/thesyncim/mediaplug/config"
	"github.com/thesyncim/mediaplug/host"
	"github.com/thesyncim/mediaplug/observability"
)

// app is the process-scoped context shared by the subcommands.
type app struct {
	configPath string
	player     string
	static     bool
	pluginDirs []string
	logLevel   string

	cfg      *config.Config
	log      *logrus.Logger
	metrics  *observability.Metrics
	promReg  *prometheus.Registry
	types    *host.TypeRegistry
	registry *mediaplug.Registry
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "mediaplug",
		Short: "Discover and select pluggable media backends",
		Long: `mediaplug scans plugin directories (or the compiled-in engines with
--static) for media backends, and initializes one of them.

Example:
  mediaplug --plugin-dir ./plugins list
  MEDIAPLUG_BACKEND=mpv mediaplug play https://example.com/movie.mkv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", os.Getenv(config.EnvConfig), "YAML config file")
	flags.StringVar(&a.player, "player", "", "preferred backend (overrides "+config.EnvBackend+")")
	flags.BoolVar(&a.static, "static", false, "use the compiled-in engines instead of plugin files")
	flags.StringArrayVar(&a.pluginDirs, "plugin-dir", nil, "plugin search directory (repeatable)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		newListCommand(a),
		newSelectCommand(a),
		newPlayCommand(a),
		newWatchCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.player != "" {
		cfg.Backend = a.player
	}
	if a.static {
		cfg.Static = true
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	cfg.SearchPaths = append(cfg.SearchPaths, a.pluginDirs...)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = log

	a.promReg = prometheus.NewRegistry()
	a.metrics = observability.NewMetrics(a.promReg)
	a.types = host.NewTypeRegistry()

	opts := []mediaplug.Option{
		mediaplug.WithLogger(log),
		mediaplug.WithHost(a.types),
		mediaplug.WithMetrics(a.metrics),
		mediaplug.WithProbeCache(cfg.ProbeCacheSize),
		mediaplug.WithLibraries(cfg.Libraries),
	}
	if cfg.Static {
		opts = append(opts, mediaplug.WithStatic(builtin.Backends()...))
	}
	a.registry = mediaplug.NewRegistry(opts...)

	if !cfg.Static {
		for _, dir := range cfg.SearchPaths {
			a.registry.AddSearchDirectory(dir)
		}
	}
	return nil
}

// teardown releases every backend. It runs after the command, whether or not
// the command failed.
func (a *app) teardown() error {
	if a.registry == nil {
		return nil
	}
	return a.registry.Close()
}

// selectBackend applies the preferred-backend policy and returns the
// initialized backend name.
func (a *app) selectBackend() (string, error) {
	if len(a.registry.AvailableBackends()) == 0 {
		return "", backendError(fmt.Errorf("no backends found: %w", mediaplug.ErrNoBackend))
	}
	name, err := a.registry.Select(a.cfg.Backend)
	if err != nil {
		return "", backendError(err)
	}
	return name, nil
}
