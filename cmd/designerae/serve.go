package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/LWashington6935/designerae-site/internal/catalog"
	"github.com/LWashington6935/designerae-site/internal/orders"
	"github.com/LWashington6935/designerae-site/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	serviceName := a.cfg.Telemetry.ServiceName
	tracer := otel.Tracer(serviceName)

	router := server.NewRouter(serviceName, a.logger,
		orders.NewOrderHandler(a.orders, tracer),
		catalog.NewCatalogHandler(a.catalog, tracer),
	)
	srv := server.NewHTTPServer(a.cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
