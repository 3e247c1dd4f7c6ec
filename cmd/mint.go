package cmd

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/JWebSmart/Nft-marketplace/chain"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/log"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/types"
	"github.com/JWebSmart/Nft-marketplace/util"
)

type mintFlags struct {
	image       string
	name        string
	description string
	price       string
	quantity    string
	server      string
	key         string
	login       bool
}

// form reads the image from disk. A missing image is left empty so the
// form validation reports it.
func (f mintFlags) form() (mint.Form, error) {
	form := mint.Form{
		Name:        f.name,
		Description: f.description,
		Price:       types.FlexNumber(strings.TrimSpace(f.price)),
		Quantity:    types.FlexNumber(strings.TrimSpace(f.quantity)),
	}
	if f.image == "" {
		return form, nil
	}
	data, err := os.ReadFile(f.image)
	if err != nil {
		return form, fmt.Errorf("failed to read image: %w", err)
	}
	form.Image = data
	form.ImageName = filepath.Base(f.image)
	return form, nil
}

func parseKey(raw string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(raw), "0x"))
	if err != nil {
		return nil, types.NewInvalidValueError("key", "<redacted>", "must be a 32-byte hex private key")
	}
	return key, nil
}

type minter interface {
	CheckServer(ctx context.Context, clientVersion string) error
	Login(ctx context.Context, key *ecdsa.PrivateKey) error
	Mint(ctx context.Context, form mint.Form, author common.Address) (*chain.Receipt, error)
}

// runMint drives one mint attempt and turns its outcome into the notification
// shown to the user.
func runMint(ctx context.Context, m minter, form mint.Form, key *ecdsa.PrivateKey, login bool) (mint.Notification, error) {
	if err := m.CheckServer(ctx, config.Version); err != nil {
		return mint.Failure(err), err
	}
	if login {
		if err := m.Login(ctx, key); err != nil {
			return mint.Failure(err), err
		}
	}
	if _, err := m.Mint(ctx, form, crypto.PubkeyToAddress(key.PublicKey)); err != nil {
		return mint.Failure(err), err
	}
	return mint.Success(), nil
}

func mintCmd() *cobra.Command {
	var flags mintFlags

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint an NFT through a storefront server",
		Long: `
Mint an NFT through a storefront server.

The image is uploaded to IPFS, the server signs a mint voucher for the wallet of
--key, and the voucher is redeemed on chain with mintWithSignature.

The chain and collection are read from the same environment variables as the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetClientConfig()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			logger := log.NewLogger(cfg)
			util.InitLimiter(cfg)

			if !cmd.Flags().Changed("login") {
				flags.login = cfg.GetAuthConfig().Enabled
			}
			key, err := parseKey(flags.key)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := chain.Dial(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			chainCfg := cfg.GetChainConfig()
			collection := chain.NewCollection(chainCfg.Collection(), chainCfg.ContractType, client)
			redeemer := chain.NewRedeemer(collection, client, key, chainCfg.ChainId, logger)
			m := mint.NewClient(flags.server, cfg.GetQueryTimeout(), redeemer, logger)

			form, err := flags.form()
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), mint.Failure(err))
				return err
			}

			notification, err := runMint(ctx, m, form, key, flags.login)
			fmt.Fprintln(cmd.OutOrStdout(), notification)
			if err != nil {
				cmd.SilenceErrors = true
				return errors.New(notification.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", "", "path of the png, gif or jpeg image")
	cmd.Flags().StringVar(&flags.name, "name", "", "NFT name")
	cmd.Flags().StringVar(&flags.description, "description", "", "NFT description")
	cmd.Flags().StringVar(&flags.price, "price", "0", "price per token in the native currency")
	cmd.Flags().StringVar(&flags.quantity, "quantity", "1", "number of tokens to mint")
	cmd.Flags().StringVar(&flags.server, "server", "http://localhost:8080", "storefront server URL")
	cmd.Flags().StringVar(&flags.key, "key", "", "hex private key of the minting wallet")
	cmd.Flags().BoolVar(&flags.login, "login", false, "sign in before requesting a voucher (defaults to AUTH_ENABLED)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
