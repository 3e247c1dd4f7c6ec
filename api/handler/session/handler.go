package session

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/auth"
)

type SessionHandler struct {
	*common.BaseHandler
	auth *auth.Service
}

var _ common.HandlerRegistrar = (*SessionHandler)(nil)

func NewSessionHandler(base *common.BaseHandler, authService *auth.Service) *SessionHandler {
	return &SessionHandler{BaseHandler: base, auth: authService}
}

func (h *SessionHandler) Register(router fiber.Router) {
	sessions := router.Group("/auth")
	sessions.Get("/nonce/:address", h.GetNonce)
	sessions.Post("/login", h.PostLogin)
}

type LoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// GetNonce handles GET /api/auth/nonce/{address}
// @Summary Get a login challenge
// @Description Get the message a wallet must personal_sign to obtain a session token
// @Tags Auth
// @Produce json
// @Param address path string true "Wallet address"
// @Success 200 {object} auth.Challenge
// @Failure 400 {object} common.ErrorResponse
// @Router /api/auth/nonce/{address} [get]
func (h *SessionHandler) GetNonce(c *fiber.Ctx) error {
	address, err := common.GetParams(c, "address")
	if err != nil {
		return common.JSONError(c, fiber.StatusBadRequest, err.Error())
	}
	challenge, err := h.auth.NewChallenge(address)
	if err != nil {
		return common.JSONError(c, common.StatusFromError(err), err.Error())
	}
	return c.JSON(challenge)
}

// PostLogin handles POST /api/auth/login
// @Summary Log in with a signed challenge
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Signed challenge"
// @Success 200 {object} auth.Session
// @Failure 400 {object} common.ErrorResponse
// @Failure 401 {object} common.ErrorResponse
// @Router /api/auth/login [post]
func (h *SessionHandler) PostLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return common.JSONError(c, fiber.StatusBadRequest, "invalid request body")
	}
	session, err := h.auth.Login(req.Address, req.Signature)
	if err != nil {
		h.TrackError("login_failed")
		return common.JSONError(c, common.StatusFromError(err), err.Error())
	}
	return c.JSON(session)
}
