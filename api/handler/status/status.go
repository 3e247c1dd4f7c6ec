package status

import (
	"errors"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/indexer"
	"github.com/JWebSmart/Nft-marketplace/types"
)

var lastIndexedHeight atomic.Int64

// GetStatus handles GET /api/status
// @Summary Status check
// @Description Get the server version, the storefront collection and the indexed height
// @Tags App
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/status [get]
func (h *StatusHandler) GetStatus(c *fiber.Ctx) error {
	chainCfg := h.GetChainConfig()

	var state types.CollectedIndexerState
	if err := h.GetDatabase().
		Model(&types.CollectedIndexerState{}).
		Where("name = ?", indexer.StateName(chainCfg.Collection())).
		First(&state).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	// never report a lower height than already served
	height := lastIndexedHeight.Load()
	if state.Height > height {
		if lastIndexedHeight.CompareAndSwap(height, state.Height) {
			height = state.Height
		} else {
			height = lastIndexedHeight.Load()
		}
	}

	return c.JSON(&StatusResponse{
		Version:       config.Version,
		CommitHash:    config.CommitHash,
		ChainId:       chainCfg.ChainId,
		Collection:    chainCfg.Collection().Hex(),
		ContractType:  string(chainCfg.ContractType),
		Signer:        h.signer,
		IndexedHeight: height,
	})
}
