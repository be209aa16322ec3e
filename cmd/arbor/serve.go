package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/adapters/httpapi"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the interpreter in server mode, exposing dispatch, manifest
introspection and session management over a JSON API. Listen address,
timeouts and persistence are read from ARBOR_* environment variables;
the --port flag overrides the address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Server.Addr = ":" + port
		}

		// Environment store settings apply unless a flag overrides them.
		if !cmd.Flags().Changed("store") {
			_ = cmd.Flags().Set("store", cfg.Store.Backend)
		}
		if !cmd.Flags().Changed("store-path") && cfg.Store.FilePath != "" {
			_ = cmd.Flags().Set("store-path", cfg.Store.FilePath)
		}
		if !cmd.Flags().Changed("redis-url") {
			_ = cmd.Flags().Set("redis-url", cfg.Store.RedisURL)
		}

		debug, _ := cmd.Flags().GetBool("debug")
		logger := createLogger(debug || cfg.LogLevel == "debug")

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		metrics := runtime.NewMetrics(registry)

		interp, err := buildInterpreter(cmd, arbor.WithMetrics(metrics))
		if err != nil {
			return err
		}

		watchCtx, stopWatch := context.WithCancel(context.Background())
		defer stopWatch()
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			go watchManifest(watchCtx, interp)
		}

		handler := httpapi.NewHandler(interp,
			httpapi.WithLogger(logger),
			httpapi.WithMetricsRegistry(registry),
		)

		srv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
			logger.Info("server stopped")
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides ARBOR_HTTP_ADDR)")
	serveCmd.Flags().BoolP("watch", "w", false, "Hot-reload the manifest on change")
	addStoreFlags(serveCmd)
}
