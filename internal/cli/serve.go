package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardstack/internal/config"
	"github.com/matzehuels/cardstack/internal/server"
	"github.com/matzehuels/cardstack/pkg/cache"
	"github.com/matzehuels/cardstack/pkg/history"
	"github.com/matzehuels/cardstack/pkg/observability"
)

type serveOpts struct {
	config      string
	addr        string
	library     string
	printConfig bool
}

// serveCommand runs the algorithm service.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the algorithm service",
		Long: `Run the HTTP service that turns stacks into algorithm text.

Configuration comes from defaults, then the --config TOML file, then
CARDSTACK_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if opts.printConfig {
				_, err := fmt.Fprint(cmd.OutOrStdout(), cfg.String())
				return err
			}
			return runServe(cmd.Context(), cfg, opts.library)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&opts.library, "library", "l", "", "extra TOML card library served as presets")
	cmd.Flags().BoolVar(&opts.printConfig, "print-config", false, "print the effective configuration and exit")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, libPath string) error {
	logger := loggerFromContext(ctx)

	lib, err := loadLibrary(libPath)
	if err != nil {
		return err
	}

	c, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogged(logger, "cache", c)

	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogged(logger, "history", store)

	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Prefix)
	}

	metrics := server.NewMetrics()
	observability.SetCacheHooks(metrics)
	defer observability.Reset()

	logger.Info("starting service",
		"cache", cfg.Cache.Backend,
		"history", cfg.History.Backend,
		"presets", lib.Len(),
	)
	srv := server.New(cfg.Server,
		server.WithLogger(logger),
		server.WithCache(c, cfg.Cache.TTL.Duration),
		server.WithKeyer(keyer),
		server.WithHistory(store),
		server.WithLibrary(lib),
		server.WithMetrics(metrics),
	)
	return srv.ListenAndServe(ctx)
}

// openCache builds the configured cache backend.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendFile:
		return cache.NewFileCache(cfg.Cache.Dir)
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return cache.NewNullCache(), nil
	}
}

// openHistory builds the configured history store.
func openHistory(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.BackendFile:
		return history.NewFileStore(cfg.History.Dir)
	case config.BackendMongo:
		return history.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	default:
		return history.NewMemoryStore(), nil
	}
}

func closeLogged(logger *log.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "what", what, "err", err)
	}
}
