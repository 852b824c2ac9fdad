package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/repositories"
	"storefront/internal/tracking"
)

// cli carries the state shared by the commands.
type cli struct {
	v       *viper.Viper
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	c := &cli{v: v}

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront shopping-state service",
		Long: `storefront serves the cart, compare list, login session, checkout and
order tracking of an online electronics store over a JSON HTTP API.

Run without arguments to start the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.v)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if c.verbose {
				cfg.LogLevel = "debug"
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	serveCmd.Flags().String("port", "", "Listen address, e.g. :8080 (or set APP_PORT)")
	serveCmd.Flags().String("db", "", "Database driver: memory, sqlite or postgres (or set DATABASE_DRIVER)")
	_ = v.BindPFlag("APP_PORT", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("DATABASE_DRIVER", serveCmd.Flags().Lookup("db"))

	var asJSON bool
	trackCmd := &cobra.Command{
		Use:   "track <order-id>",
		Short: "Print the tracking report of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.track(cmd, args[0], asJSON)
		},
	}
	trackCmd.Flags().String("provider", "", "Status provider: random or orders (or set TRACKING_PROVIDER)")
	trackCmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	_ = v.BindPFlag("TRACKING_PROVIDER", trackCmd.Flags().Lookup("provider"))

	rootCmd.AddCommand(serveCmd, trackCmd)
	return rootCmd
}

// serve runs the storefront until SIGINT or SIGTERM.
func (c *cli) serve(ctx context.Context) error {
	storefront, err := app.NewApp(c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumerDone, err := storefront.StartConsumer(ctx)
	if err != nil {
		c.logger.Warn("order event consumer not started", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- storefront.Listen()
	}()

	select {
	case err := <-serverErr:
		storefront.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	c.logger.Info("shutting down server")
	if err := storefront.Shutdown(); err != nil {
		c.logger.Error("error during shutdown", zap.Error(err))
	}
	if consumerDone != nil {
		<-consumerDone
	}
	c.logger.Info("server gracefully stopped")
	return nil
}

// track prints the report for orderID against the demo order collection.
func (c *cli) track(cmd *cobra.Command, orderID string, asJSON bool) error {
	orders := repositories.NewMemoryOrderRepository()
	if err := repositories.SeedOrders(orders, repositories.DemoOrders()); err != nil {
		return err
	}

	report, err := app.NewTracker(c.cfg, orders, c.logger).Track(cmd.Context(), orderID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

func printReport(out io.Writer, r tracking.Report) {
	fmt.Fprintf(out, "Order #%s\n", r.OrderID)
	fmt.Fprintf(out, "Status:             %s (%d%%)\n", r.Label, r.Progress)
	fmt.Fprintf(out, "Estimated Delivery: %s\n", r.EstimatedDelivery)
	fmt.Fprintf(out, "Shipping Method:    %s\n", r.ShippingMethod)
	for _, step := range r.Steps {
		mark := " "
		switch {
		case step.Completed:
			mark = "x"
		case step.Active:
			mark = ">"
		}
		fmt.Fprintf(out, "  [%s] %s\n", mark, step.Label)
	}
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
