package status

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
)

type StatusHandler struct {
	*common.BaseHandler
	signer string
}

var _ common.HandlerRegistrar = (*StatusHandler)(nil)

// NewStatusHandler reports signer as the voucher signing address; it is empty
// when no key is configured.
func NewStatusHandler(base *common.BaseHandler, signer string) *StatusHandler {
	return &StatusHandler{BaseHandler: base, signer: signer}
}

func (h *StatusHandler) Register(router fiber.Router) {
	status := router.Group("/status")

	status.Get("/", cache.New(cache.Config{Expiration: 250 * time.Millisecond}), h.GetStatus)
}
