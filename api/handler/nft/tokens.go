package nft

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/types"
)

func (h *NftHandler) baseNftQuery() *gorm.DB {
	return h.GetDatabase().
		Model(&types.CollectedNft{}).
		Where("collection_addr = ?", h.GetCollectionAddr())
}

func (h *NftHandler) respondNfts(c *fiber.Ctx, pagination *common.Pagination, query *gorm.DB, countQuery *gorm.DB, hasFilters bool) error {
	var nfts []types.CollectedNft
	if err := pagination.ApplyToNft(query).Find(&nfts).Error; err != nil {
		h.TrackError("db_error")
		return fiber.NewError(fiber.StatusInternalServerError, ErrFailedToFetchNft)
	}

	total, err := common.GetOptimizedCount(countQuery, types.CollectedNft{}, hasFilters)
	if err != nil {
		h.TrackError("db_error")
		return fiber.NewError(fiber.StatusInternalServerError, ErrFailedToCountNft)
	}

	var last common.CursorRecord
	if len(nfts) > 0 {
		last = nftRow(nfts[len(nfts)-1])
	}

	return c.JSON(NftsResponse{
		Nfts:       BatchToResponseNfts(nfts, h.GetConfig().GetStorageConfig().GatewayUrl, h.GetChainConfig().NativeSymbol),
		Pagination: pagination.ToResponseWithLastRecord(total, len(nfts), last),
	})
}

// GetNfts handles GET /api/nfts
// @Summary Get minted NFTs
// @Description Get the NFTs minted in the storefront collection, newest first by default
// @Tags NFT
// @Produce json
// @Param pagination.key query string false "Pagination key"
// @Param pagination.offset query int false "Pagination offset"
// @Param pagination.limit query int false "Pagination limit" default(100)
// @Param pagination.reverse query bool false "Reverse order default(true) if set to true, the results will be ordered in descending order"
// @Success 200 {object} NftsResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /api/nfts [get]
func (h *NftHandler) GetNfts(c *fiber.Ctx) error {
	pagination, err := common.ParsePagination(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.respondNfts(c, pagination, h.baseNftQuery(), h.baseNftQuery(), false)
}

// GetNftsByOwner handles GET /api/nfts/by_owner/{owner}
// @Summary Get NFTs by owner
// @Description Get the storefront NFTs currently held by an account
// @Tags NFT
// @Produce json
// @Param owner path string true "Owner address"
// @Param pagination.key query string false "Pagination key"
// @Param pagination.offset query int false "Pagination offset"
// @Param pagination.limit query int false "Pagination limit" default(100)
// @Param pagination.reverse query bool false "Reverse order default(true) if set to true, the results will be ordered in descending order"
// @Success 200 {object} NftsResponse
// @Failure 400 {object} common.ErrorResponse
// @Router /api/nfts/by_owner/{owner} [get]
func (h *NftHandler) GetNftsByOwner(c *fiber.Ctx) error {
	owner, err := common.GetAddressParam(c, "owner")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	pagination, err := common.ParsePagination(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	query := h.baseNftQuery().Where("owner = ?", owner)
	countQuery := h.baseNftQuery().Where("owner = ?", owner)
	return h.respondNfts(c, pagination, query, countQuery, common.HasFilters(owner != ""))
}

// GetNft handles GET /api/nfts/{token_id}
// @Summary Get NFT by token id
// @Tags NFT
// @Produce json
// @Param token_id path string true "Token ID"
// @Success 200 {object} NftResponse
// @Failure 404 {object} common.ErrorResponse
// @Router /api/nfts/{token_id} [get]
func (h *NftHandler) GetNft(c *fiber.Ctx) error {
	tokenId, err := common.GetTokenIdParam(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var nft types.CollectedNft
	if err := h.baseNftQuery().Where("token_id = ?", tokenId).First(&nft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, ErrNftNotFound)
		}
		h.TrackError("db_error")
		return fiber.NewError(fiber.StatusInternalServerError, ErrFailedToFetchNft)
	}

	return c.JSON(NftResponse{Nft: ToNftResponse(nft, h.GetConfig().GetStorageConfig().GatewayUrl, h.GetChainConfig().NativeSymbol)})
}
