package minting

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/auth"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

type VoucherIssuer interface {
	Issue(ctx context.Context, req mint.Request) (*voucher.SignedPayload, error)
	Verify(signed *voucher.SignedPayload) (*mint.VerifyResult, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, kind, name string, data []byte) (string, error)
	Resolve(uri string) string
}

// MintHandler serves the voucher signing and image upload routes.
type MintHandler struct {
	*common.BaseHandler
	issuer   VoucherIssuer
	uploader ImageUploader
	auth     *auth.Service
}

var _ common.HandlerRegistrar = (*MintHandler)(nil)

func NewMintHandler(base *common.BaseHandler, issuer VoucherIssuer, uploader ImageUploader, authService *auth.Service) *MintHandler {
	return &MintHandler{
		BaseHandler: base,
		issuer:      issuer,
		uploader:    uploader,
		auth:        authService,
	}
}

func (h *MintHandler) Register(router fiber.Router) {
	router.Post("/server", h.auth.Middleware(), h.PostServer)
	router.Post("/verify", h.PostVerify)
	router.Post("/upload", h.auth.Middleware(), h.PostUpload)
}
