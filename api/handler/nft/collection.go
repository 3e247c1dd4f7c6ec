package nft

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// GetCollection handles GET /api/collection
// @Summary Get the storefront collection
// @Description Get the address, name, symbol and minted count of the storefront collection
// @Tags NFT
// @Produce json
// @Success 200 {object} CollectionResponse
// @Failure 500 {object} common.ErrorResponse
// @Router /api/collection [get]
func (h *NftHandler) GetCollection(c *fiber.Ctx) error {
	collection, err := h.getCollection()
	if err != nil {
		h.TrackError("db_error")
		return fiber.NewError(fiber.StatusInternalServerError, ErrFailedToFetchCollection)
	}
	return c.JSON(CollectionResponse{Collection: ToCollectionResponse(collection)})
}

// getCollection reads the indexed collection row. A collection the indexer
// has not reached yet is reported with its address only.
func (h *NftHandler) getCollection() (types.CollectedNftCollection, error) {
	addr := h.GetCollectionAddr()
	if cached, ok := h.collections.Get(addr); ok {
		return cached, nil
	}

	var collection types.CollectedNftCollection
	err := h.GetDatabase().
		Model(&types.CollectedNftCollection{}).
		Where("addr = ?", addr).
		First(&collection).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.CollectedNftCollection{Addr: addr}, nil
	case err != nil:
		return collection, err
	}

	h.collections.Set(addr, collection)
	return collection, nil
}
