package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JWebSmart/Nft-marketplace/api"
	"github.com/JWebSmart/Nft-marketplace/api/handler"
	"github.com/JWebSmart/Nft-marketplace/auth"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/log"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/util"
)

func apiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the storefront API server",
		Long: `
Run the storefront API server.

This command serves the voucher signing route, image uploads, wallet sign in and
the indexed collection listing.

You can configure database, chain, signer, storage, logging, and server options via environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}

			logger := log.NewLogger(cfg)
			initSentry(cfg, logger)
			defer sentry_integration.Flush()

			// Initialize the request limiter
			util.InitLimiter(cfg)

			metricsServer := startMetrics(cfg, logger)
			defer stopMetrics(metricsServer, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			publisher, closePublisher, err := newPublisher(cfg, logger)
			if err != nil {
				return err
			}
			defer closePublisher()

			store := storage.New(cfg, logger)
			issuer := mint.NewIssuer(cfg, db, store, publisher, logger)

			var signerAddr string
			if signer, err := issuer.Signer(); err != nil {
				logger.Warn("voucher signing unavailable", slog.Any("error", err))
			} else {
				signerAddr = signer.Address().Hex()
			}

			server := api.New(cfg, logger, db, handler.Services{
				Issuer:   issuer,
				Uploader: store,
				Auth:     auth.NewService(cfg.GetAuthConfig()),
				Signer:   signerAddr,
			})

			// graceful shutdown
			go func() {
				<-ctx.Done()
				logger.Info("shutting down API server...")
				if err := server.Shutdown(); err != nil {
					logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
				}
			}()

			return server.Start()
		},
	}

	return cmd
}
