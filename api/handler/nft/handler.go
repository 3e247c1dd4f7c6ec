package nft

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/api/cache"
	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	localcache "github.com/JWebSmart/Nft-marketplace/cache"
	"github.com/JWebSmart/Nft-marketplace/types"
)

const collectionCacheTTL = 2 * time.Second

type NftHandler struct {
	*common.BaseHandler
	collections *localcache.TTLCache[string, types.CollectedNftCollection]
}

var _ common.HandlerRegistrar = (*NftHandler)(nil)

func NewNftHandler(base *common.BaseHandler) *NftHandler {
	return &NftHandler{
		BaseHandler: base,
		collections: localcache.NewTTL[string, types.CollectedNftCollection](16, collectionCacheTTL),
	}
}

func (h *NftHandler) Register(router fiber.Router) {
	listCache := cache.ForListings(time.Second)

	router.Get("/collection", listCache, h.GetCollection)

	nfts := router.Group("/nfts")
	nfts.Get("/", listCache, h.GetNfts)
	nfts.Get("/by_owner/:owner", listCache, h.GetNftsByOwner)
	nfts.Get("/:token_id", h.GetNft)
}
