package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/api/handler/minting"
	"github.com/JWebSmart/Nft-marketplace/api/handler/nft"
	"github.com/JWebSmart/Nft-marketplace/api/handler/session"
	"github.com/JWebSmart/Nft-marketplace/api/handler/status"
	"github.com/JWebSmart/Nft-marketplace/auth"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/orm"
)

// Services are the domain services the handlers delegate to.
type Services struct {
	Issuer   minting.VoucherIssuer
	Uploader minting.ImageUploader
	Auth     *auth.Service
	// Signer is the voucher signing address, empty without a key.
	Signer string
}

func Register(router fiber.Router, db *orm.Database, cfg *config.Config, logger *slog.Logger, svc Services) {
	base := common.NewBaseHandler(db, cfg, logger)
	handlers := []common.HandlerRegistrar{
		status.NewStatusHandler(base, svc.Signer),
		minting.NewMintHandler(base, svc.Issuer, svc.Uploader, svc.Auth),
		session.NewSessionHandler(base, svc.Auth),
		nft.NewNftHandler(base),
	}

	for _, handler := range handlers {
		handler.Register(router)
	}
}
