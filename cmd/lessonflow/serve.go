package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lessonflow/internal/metrics"
	"github.com/aretw0/lessonflow/internal/presentation/tui"
	httpAdapter "github.com/aretw0/lessonflow/pkg/adapters/http"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing API",
	Long:  `Serves the flows of the configured store over a JSON API with server-sent document diffs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := appConfig.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		var hooks domain.LifecycleHooks
		reg := prometheus.NewRegistry()
		if appConfig.Metrics.Enabled {
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks = metrics.New(reg).Hooks()
		}

		mgr, closer, err := newManager(appConfig, logger, hooks)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closer.Close()

		mux := http.NewServeMux()
		if appConfig.Metrics.Enabled {
			mux.Handle("/metrics", metrics.Handler(reg))
		}
		mux.Handle("/", httpAdapter.NewHandler(mgr, httpAdapter.WithLogger(logger)))

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if isTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting Lessonflow Server", "address", srv.Addr, "store", appConfig.Store.Driver)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil

		case <-ctx.Done():
			logger.Info("Start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "err", err)
				}
			}
			if err := mgr.SaveAll(shutdownCtx); err != nil {
				logger.Error("Failed to persist open flows", "err", err)
			}
			logger.Info("Lessonflow Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides http.port)")
}
