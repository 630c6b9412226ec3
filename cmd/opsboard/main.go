package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"opsboard/internal/app"
	"opsboard/internal/calendar"
	"opsboard/internal/config"
	analyticsdomain "opsboard/internal/domain/analytics"
	"opsboard/internal/transport/httpserver/handler"
	"opsboard/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log := logger.NewFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(log).ExecuteContext(ctx); err != nil {
		log.Critical("app: command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd(log logger.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "opsboard",
		Short:         "Revenue, expense and seminar profitability reporting for organizational units",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(log), newMigrateCmd(log), newReportCmd(log))
	return root
}

func newServeCmd(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log logger.Logger) error {
	log.Info("app: starting", "env", cfg.Env, "backend", cfg.DataBackend)

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	var errs []error
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			errs = append(errs, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		errs = append(errs, err)
	}
	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		log.Info("app: stopped")
	}
	return errors.Join(errs...)
}

func newMigrateCmd(log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			return app.Migrate(cfg, log)
		},
	}
}

func newReportCmd(log logger.Logger) *cobra.Command {
	var (
		unitID      string
		period      string
		granularity string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard of a unit as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedPeriod, err := analyticsdomain.ParsePeriod(period)
			if err != nil {
				return err
			}
			var parsedGranularity calendar.Granularity
			if strings.TrimSpace(granularity) != "" {
				if parsedGranularity, err = calendar.ParseGranularity(granularity); err != nil {
					return err
				}
			}

			cfg, err := config.Load(log)
			if err != nil {
				return err
			}
			services, err := app.NewServices(cfg, log)
			if err != nil {
				return err
			}
			defer services.Close()

			dashboard, err := services.Analytics.Dashboard(cmd.Context(), unitID, analyticsdomain.DashboardFilter{
				Period:      parsedPeriod,
				Granularity: parsedGranularity,
			})
			if err != nil {
				return fmt.Errorf("build dashboard: %w", err)
			}
			return handler.EncodeDashboard(cmd.OutOrStdout(), dashboard)
		},
	}

	cmd.Flags().StringVar(&unitID, "unit", "", "unit id")
	cmd.Flags().StringVar(&period, "period", string(analyticsdomain.PeriodAll), "all, ytd or mtd")
	cmd.Flags().StringVar(&granularity, "granularity", "", "daily, weekly or monthly (default depends on period)")
	_ = cmd.MarkFlagRequired("unit")
	return cmd
}
