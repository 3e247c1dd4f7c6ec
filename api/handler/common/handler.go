package common

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/orm"
)

type HandlerRegistrar interface {
	Register(router fiber.Router)
}

type BaseHandler struct {
	db     *orm.Database
	cfg    *config.Config
	logger *slog.Logger
}

func NewBaseHandler(db *orm.Database, cfg *config.Config, logger *slog.Logger) *BaseHandler {
	return &BaseHandler{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

func (h *BaseHandler) GetDatabase() *orm.Database { return h.db }
func (h *BaseHandler) GetConfig() *config.Config  { return h.cfg }
func (h *BaseHandler) GetLogger() *slog.Logger    { return h.logger }
func (h *BaseHandler) GetChainConfig() *config.ChainConfig {
	return h.cfg.GetChainConfig()
}

// GetCollectionAddr returns the checksummed address of the storefront collection.
func (h *BaseHandler) GetCollectionAddr() string {
	return h.cfg.GetChainConfig().Collection().Hex()
}

// TrackError tracks errors in handlers
func (h *BaseHandler) TrackError(errorType string) {
	metrics.TrackError("api", errorType)
}
