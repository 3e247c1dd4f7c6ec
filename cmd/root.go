package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JWebSmart/Nft-marketplace/config"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storefront",
		Short:   "NFT minting storefront",
		Version: config.Version + " (" + config.CommitHash + ")",
	}

	cmd.AddCommand(apiCmd())
	cmd.AddCommand(indexerCmd())
	cmd.AddCommand(mintCmd())
	cmd.AddCommand(eventsCmd())
	cmd.AddCommand(migrateCmd())

	return cmd
}
