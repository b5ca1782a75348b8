package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"compensation-dashboard/cache"
	"compensation-dashboard/config"
	"compensation-dashboard/fetcher"
	"compensation-dashboard/models"
	"compensation-dashboard/services"
	"compensation-dashboard/storage"
	"compensation-dashboard/utils"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the configuration and logger shared by every command.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "compdash",
		Short:         "Compensation benchmarking dashboard",
		Long:          "Downloads public salary surveys (BLS OES, H-1B LCA disclosures), normalizes them into one dataset and answers benchmark, comparison, forecast and market position queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.Load()
			a.logger = utils.NewLogger(a.cfg.LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync()
		},
	}

	root.AddCommand(
		a.fetchCmd(),
		a.reportCmd(),
		a.exportCmd(),
		a.serveCmd(),
	)
	return root
}

// openStore builds the raw payload cache selected by CACHE_BACKEND.
func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	switch a.cfg.CacheBackend {
	case "redis":
		s := cache.NewRedisStore(cache.RedisOptions{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("redis %s: %w", a.cfg.RedisAddr, err)
		}
		a.logger.Info("Cache backend: redis (%s)", a.cfg.RedisAddr)
		return s, nil
	case "file", "":
		s, err := cache.NewFileStore(a.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Cache backend: %s", s.Path(""))
		return s, nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q (want file or redis)", a.cfg.CacheBackend)
	}
}

func (a *app) transport() (fetcher.Transport, error) {
	switch a.cfg.FetchMode {
	case "browser":
		return fetcher.NewBrowserTransport(a.cfg.ChromeBin, a.logger), nil
	case "http", "":
		return fetcher.NewHTTPTransport(a.cfg.HTTPTimeout), nil
	default:
		return nil, fmt.Errorf("unknown FETCH_MODE %q (want http or browser)", a.cfg.FetchMode)
	}
}

// newLoader wires store, transport, fetcher and normalizer into a Loader.
// The returned close func releases the cache store.
func (a *app) newLoader(ctx context.Context) (*services.Loader, func(), error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	tr, err := a.transport()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	f := fetcher.New(store, tr, fetcher.Options{
		BLSBaseURL: a.cfg.BLSBaseURL,
		H1BBaseURL: a.cfg.H1BBaseURL,
		Timeout:    a.cfg.HTTPTimeout,
		MaxRetries: a.cfg.MaxRetries,
		RetryDelay: a.cfg.RetryDelay,
	}, a.logger)

	loader := services.NewLoader(f, services.NewNormalizer(a.logger), a.cfg.MaxConcurrency, a.cfg.RateLimitMs, a.logger)
	return loader, func() { _ = store.Close() }, nil
}

// loadDataset builds the dataset for years, or the configured years when empty.
func (a *app) loadDataset(ctx context.Context, years []int) (*models.Dataset, error) {
	if len(years) == 0 {
		years = a.cfg.Years
	}
	loader, closeStore, err := a.newLoader(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()
	return loader.Load(ctx, years)
}

// datasetFromDB loads the last persisted snapshot.
func (a *app) datasetFromDB() (*models.Dataset, error) {
	pg, err := storage.NewPostgresWriter(a.cfg.DSN())
	if err != nil {
		return nil, err
	}
	defer pg.Close()

	records, err := pg.FetchAll()
	if err != nil {
		return nil, err
	}
	a.logger.Info("Loaded %d records from PostgreSQL", len(records))
	return models.Combine(records), nil
}

func (a *app) persist(ds *models.Dataset) error {
	pg, err := storage.NewPostgresWriter(a.cfg.DSN())
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Write(ds.Records()); err != nil {
		return err
	}
	a.logger.Info("Stored %d records in PostgreSQL (table: compensation_records)", ds.Len())
	return nil
}
