package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"bookdist/internal/core"
	"bookdist/internal/httpapi"
)

func newServeCmd(load loader) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom, err := core.NewPrometheusMetricsRecorder(reg)
			if err != nil {
				return err
			}
			opts := []core.Option{
				core.WithLogger(logger),
				core.WithMetricsRecorder(core.MultiMetricsRecorder{prom, core.NewExpvarMetricsRecorder("bookdist_operations")}),
			}
			if trace {
				opts = append(opts, core.WithTracer(core.NewJSONTracer(os.Stderr)))
			}
			svc, err := core.Open(ctx, cfg, opts...)
			if err != nil {
				return err
			}
			defer svc.Close()

			gin.SetMode(gin.ReleaseMode)
			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           httpapi.NewRouter(svc, httpapi.WithLogger(logger), httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.HTTPAddr, "storage", cfg.Storage.Driver, "blob", cfg.Blob.Driver)
				errCh <- srv.ListenAndServe()
			}()
			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "write operation spans to stderr as JSON lines")
	return cmd
}
