package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"compensation-dashboard/api"
	"compensation-dashboard/models"
	"compensation-dashboard/services"
	"compensation-dashboard/storage"
)

func (a *app) fetchCmd() *cobra.Command {
	var (
		years   []int
		persist bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download, cache and normalize the source files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd.Context(), years)
			if err != nil {
				a.logger.Error("Load failed: %v", err)
				a.logger.Stack(err)
				return err
			}

			if persist {
				if err := a.persist(ds); err != nil {
					a.logger.Error("PostgreSQL write failed: %v", err)
					a.logger.Stack(err)
					return err
				}
			}

			e := services.NewStatsEngine(ds, a.logger)
			a.logger.Info("Dataset: %d records, %d job categories, %d locations",
				ds.Len(), len(e.Categories()), len(e.Locations()))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&years, "year", nil, "survey years to load (default YEARS)")
	cmd.Flags().BoolVar(&persist, "persist", false, "store the unified dataset in PostgreSQL")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var (
		years  []int
		fromDB bool
		query  services.DashboardQuery
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard for one job category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.dataset(cmd.Context(), years, fromDB)
			if err != nil {
				a.logger.Error("Load failed: %v", err)
				a.logger.Stack(err)
				return err
			}

			e := services.NewStatsEngine(ds, a.logger)
			if query.JobCategory == "" {
				cats := e.Categories()
				if len(cats) == 0 {
					return errors.New("dataset has no job categories")
				}
				query.JobCategory = cats[0]
				a.logger.Info("No --job given, using %q", query.JobCategory)
			}

			services.NewReport(os.Stdout).Print(services.BuildDashboard(e, query))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntSliceVar(&years, "year", nil, "survey years to load (default YEARS)")
	f.BoolVar(&fromDB, "from-db", false, "read the dataset from PostgreSQL instead of the sources")
	f.StringVar(&query.JobCategory, "job", "", "job category")
	f.StringVar(&query.Location, "location", services.AllOption, "location filter")
	f.StringVar(&query.ExperienceLevel, "experience", services.AllOption, "experience level filter")
	f.IntVar(&query.YearsAhead, "years-ahead", 1, "forecast horizon in years")
	f.Float64Var(&query.Salary, "salary", services.DefaultScenarioSalary, "salary for the scenario analysis")
	f.StringVar(&query.TargetLocation, "target-location", services.AllOption, "location for the scenario analysis")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		years  []int
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the unified dataset to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd.Context(), years)
			if err != nil {
				a.logger.Error("Load failed: %v", err)
				a.logger.Stack(err)
				return err
			}

			if output == "" {
				output = a.cfg.CSVOutputPath
			}
			w, err := storage.NewCSVWriter(output)
			if err != nil {
				return err
			}
			if err := w.Write(ds.Records()); err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			a.logger.Info("Exported %d records to %s", ds.Len(), output)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&years, "year", nil, "survey years to load (default YEARS)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default CSV_OUTPUT_PATH)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var (
		years  []int
		fromDB bool
		addr   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard queries over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ds, err := a.dataset(ctx, years, fromDB)
			if err != nil {
				a.logger.Error("Load failed: %v", err)
				a.logger.Stack(err)
				return err
			}

			reload := func(ctx context.Context, ys []int) (*services.StatsEngine, error) {
				if len(ys) == 0 {
					ys = years
				}
				ds, err := a.loadDataset(ctx, ys)
				if err != nil {
					return nil, err
				}
				return services.NewStatsEngine(ds, a.logger), nil
			}

			srv := api.NewServer(services.NewStatsEngine(ds, a.logger), reload, a.logger)
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Listening on %s (%d records)", addr, ds.Len())
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	f := cmd.Flags()
	f.IntSliceVar(&years, "year", nil, "survey years to load (default YEARS)")
	f.BoolVar(&fromDB, "from-db", false, "serve the dataset stored in PostgreSQL")
	f.StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}

func (a *app) dataset(ctx context.Context, years []int, fromDB bool) (*models.Dataset, error) {
	if fromDB {
		return a.datasetFromDB()
	}
	return a.loadDataset(ctx, years)
}
