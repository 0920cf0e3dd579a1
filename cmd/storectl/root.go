package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ArtStore/internal/catalog"
	"ArtStore/internal/config"
	"ArtStore/internal/favorites"
	"ArtStore/internal/kvstore"
	"ArtStore/pkg/kit"
)

const (
	fstrConfig  = "config"
	fstrJSON    = "json"
	fstrVerbose = "verbose"
)

// rootEnv carries the global flags and the constructors for everything the
// subcommands touch, so tests can swap in memory-backed ones.
type rootEnv struct {
	configPath string
	jsonOut    bool
	verbose    bool

	loadConfig func(path string) (config.FileConfig, error)
	openKV     func(ctx context.Context, cfg kvstore.Config) (kvstore.Store, error)
	newSource  func(cfg config.FileConfig, log *zap.Logger) catalog.Source
	newLogger  func(level string) *zap.Logger

	cfg config.FileConfig
	log *zap.Logger
}

func defaultEnv() *rootEnv {
	return &rootEnv{
		loadConfig: config.Load,
		openKV:     kvstore.Open,
		newSource: func(cfg config.FileConfig, log *zap.Logger) catalog.Source {
			c := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout())
			c.Log = log
			return c
		},
		newLogger: func(level string) *zap.Logger { return kit.NewLogger("storectl", level) },
	}
}

func newRootCmd(env *rootEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "storectl",
		Short: "Browse the art store catalog and manage favorites.",
		Long: `
storectl reads the remote product catalog and the locally persisted favorites
collection. Configuration comes from the YAML file given by --config (or
$ARTSTORE_CONFIG) plus the usual environment overrides.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: env.setup,
	}

	root.PersistentFlags().StringVar(&env.configPath, fstrConfig, "", "Path to the YAML config file")
	root.PersistentFlags().BoolVar(&env.jsonOut, fstrJSON, false, "Print JSON instead of a table")
	root.PersistentFlags().BoolVar(&env.verbose, fstrVerbose, false, "Log at debug level to stderr")

	root.AddCommand(
		getProductsCmd(env),
		getBrandsCmd(env),
		getShowCmd(env),
		getFavoritesCmd(env),
	)
	return root
}

func (e *rootEnv) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := e.loadConfig(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg

	level := "warn"
	if e.verbose {
		level = "debug"
	}
	e.log = e.newLogger(level)
	return nil
}

func (e *rootEnv) source() catalog.Source {
	return e.newSource(e.cfg, e.log.Named("catalog"))
}

func (e *rootEnv) fetch(ctx context.Context) ([]catalog.Product, error) {
	products, err := e.source().FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return products, nil
}

// withFavorites opens storage, hydrates the collection, runs fn and then
// closes the store, which waits for the final write. A failed write is
// returned even when fn succeeded.
func (e *rootEnv) withFavorites(ctx context.Context, fn func(favs *favorites.Store) error) (err error) {
	kv, err := e.openKV(ctx, e.cfg.KV())
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { err = errors.Join(err, kv.Close()) }()

	favs := favorites.New(kv, favorites.Options{
		Key:     e.cfg.FavoritesKey,
		Retries: e.cfg.PersistRetries,
		Log:     e.log.Named("favorites"),
	})
	favs.Hydrate(ctx)

	fnErr := fn(favs)
	if closeErr := favs.Close(ctx); closeErr != nil {
		return errors.Join(fnErr, fmt.Errorf("persist favorites: %w", closeErr))
	}
	return fnErr
}
