package commands

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/config"
	"github.com/networth-dev/networth/internal/fx"
	"github.com/networth-dev/networth/internal/importer"
	"github.com/networth-dev/networth/internal/prices"
	"github.com/networth-dev/networth/internal/server"
	"github.com/networth-dev/networth/internal/store"
	"github.com/networth-dev/networth/internal/valuation"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the portfolio HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			provider := prices.NewYahooProvider(cfg.Provider.Proxy)
			oracle := prices.NewOracle(provider, st, logger)
			oracle.SetFetchTimeout(time.Duration(cfg.Provider.TimeoutSeconds) * time.Second)

			converter := fx.NewConverter(st, logger)
			engine := valuation.NewEngine(st, oracle, converter, cfg.BaseCurrency, logger)
			snapshotter := valuation.NewSnapshotter(engine, st, logger)
			pipeline := importer.NewPipeline(st, logger)

			srv := server.New(st, oracle, engine, snapshotter, pipeline, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting networth",
				zap.String("db", cfg.Database.Path),
				zap.String("base_currency", cfg.BaseCurrency))
			return srv.Start(ctx, cfg.Server.Listen)
		},
	}
}
