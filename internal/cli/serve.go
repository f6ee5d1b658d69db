package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/irvaudit/internal/serve"
	"github.com/matzehuels/irvaudit/pkg/cache"
	"github.com/matzehuels/irvaudit/pkg/pipeline"
	"github.com/matzehuels/irvaudit/pkg/store"
)

// serveCommand creates the serve command: the HTTP solve service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP solve service",
		Long: `Serve runs the REST service: POST problems to /api/v1/solve, list and
fetch archived solves, download CSV summaries. Backends (solve cache, record
archive) are chosen in a TOML config file; without one, file-backed defaults
are used.`,
		Example: `  # File-backed defaults on :8080
  irvaudit serve

  # Production config with Redis cache and MongoDB archive
  irvaudit serve --config /etc/irvaudit/irvaudit.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := serve.DefaultConfig()
			if configPath != "" {
				loaded, err := serve.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if listen != "" {
				cfg.Listen = listen
			}

			solveCache, err := buildCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer solveCache.Close()

			archive, err := buildStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer archive.Close(cmd.Context())

			runner := pipeline.NewRunner(solveCache, nil, c.Logger)
			server := serve.New(runner, archive, c.Logger)
			return server.ListenAndServe(cfg.Listen)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address, overriding the config")

	return cmd
}

// buildCache constructs the configured cache backend.
func buildCache(ctx context.Context, cfg serve.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "file", "":
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// buildStore constructs the configured archive backend.
func buildStore(ctx context.Context, cfg serve.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	case "file", "":
		return store.NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
