package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LWashington6935/designerae-site/internal/catalog"
	"github.com/LWashington6935/designerae-site/internal/config"
	"github.com/LWashington6935/designerae-site/internal/ecwid"
	"github.com/LWashington6935/designerae-site/internal/logging"
	"github.com/LWashington6935/designerae-site/internal/orders"
	"github.com/LWashington6935/designerae-site/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "designerae",
		Short:        "Designerae site API and store admin tools",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newNoteCmd(),
		newOrderCmd(),
		newProductsCmd(),
	)
	return root
}

// app holds the dependencies shared by every command.
type app struct {
	cfg               *config.Config
	logger            *zap.Logger
	shutdownTelemetry telemetry.Shutdown
	orders            *orders.OrderUseCase
	catalog           *catalog.CatalogUseCase
}

// newApp validates the configuration before anything can reach the store API.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	gateway, err := ecwid.NewClient(cfg.Ecwid)
	if err != nil {
		return nil, err
	}

	orderUseCase, err := orders.NewOrderUseCase(gateway, cfg.Orders, logger.Named("orders"))
	if err != nil {
		return nil, err
	}

	catalogUseCase, err := catalog.NewCatalogUseCase(gateway, cfg.Catalog.Limit, logger.Named("catalog"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:               cfg,
		logger:            logger,
		shutdownTelemetry: shutdown,
		orders:            orderUseCase,
		catalog:           catalogUseCase,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.shutdownTelemetry(ctx); err != nil {
		a.logger.Warn("failed to shut down telemetry", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newNoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <order-id> <note...>",
		Short: "Save an operator note on an order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			if err := a.orders.Annotate(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "note saved on order %s\n", args[0])
			return nil
		},
	}
}

func newOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <order-id>",
		Short: "Print an order as returned by the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			order, err := a.orders.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	}
}

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Print the shop product listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			return printJSON(cmd.OutOrStdout(), a.catalog.ListProducts(cmd.Context()))
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
