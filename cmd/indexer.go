package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JWebSmart/Nft-marketplace/chain"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/indexer"
	"github.com/JWebSmart/Nft-marketplace/log"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/util"
)

func indexerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexer",
		Short: "Index the minted NFTs of the storefront collection",
		Long: `
Index the minted NFTs of the storefront collection.

This command polls the collection's Transfer and TokensMintedWithSignature logs,
stores minted NFTs with their metadata and marks redeemed vouchers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}

			logger := log.NewLogger(cfg)
			initSentry(cfg, logger)
			defer sentry_integration.Flush()

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

			client, err := chain.Dial(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			publisher, closePublisher, err := newPublisher(cfg, logger)
			if err != nil {
				return err
			}
			defer closePublisher()

			chainCfg := cfg.GetChainConfig()
			collection := chain.NewCollection(chainCfg.Collection(), chainCfg.ContractType, client)
			idxer := indexer.New(cfg, logger, db, client, collection, storage.New(cfg, logger), publisher)

			return idxer.Run(ctx)
		},
	}

	return cmd
}
