package minting

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	handlercommon "github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/auth"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

const serverErrorPrefix = "Server error "

// decodeBody reads JSON whatever the Content-Type says. A body that is itself
// a JSON string holding the document is unwrapped first.
func decodeBody(body []byte, v any) error {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return err
		}
		body = []byte(inner)
	}
	return json.Unmarshal(body, v)
}

// PostServer handles POST /api/server
// @Summary Sign a mint voucher
// @Description Upload the NFT metadata and return a mint request signed with the collection key
// @Tags Mint
// @Accept json
// @Produce json
// @Param request body mint.Request true "Mint request"
// @Success 200 {object} ServerResponse
// @Failure 500 {object} common.ErrorResponse
// @Router /api/server [post]
func (h *MintHandler) PostServer(c *fiber.Ctx) error {
	var req mint.Request
	if err := decodeBody(c.Body(), &req); err != nil {
		h.TrackError("invalid_body")
		return handlercommon.JSONError(c, fiber.StatusInternalServerError, serverErrorPrefix+"invalid request body: "+err.Error())
	}

	if caller, ok := auth.Address(c); ok {
		if !common.IsHexAddress(req.AuthorAddress) || common.HexToAddress(req.AuthorAddress) != caller {
			return handlercommon.JSONError(c, fiber.StatusForbidden, "authorAddress does not match the signed in wallet")
		}
	}

	signed, err := h.issuer.Issue(c.UserContext(), req)
	switch {
	case err == nil:
		return c.JSON(ServerResponse{SignedPayload: signed})
	case mint.IsValidation(err):
		return handlercommon.JSONError(c, fiber.StatusInternalServerError, serverErrorPrefix+err.Error())
	case errors.Is(err, voucher.ErrMissingPrivateKey):
		h.TrackError("missing_private_key")
		return handlercommon.JSONError(c, fiber.StatusInternalServerError, serverErrorPrefix+err.Error())
	default:
		h.TrackError("voucher_error")
		h.GetLogger().Error("failed to issue voucher",
			slog.String("author", req.AuthorAddress),
			slog.Any("error", err))
		sentry_integration.CaptureExceptionWithTags(err, sentry.LevelError, map[string]string{"route": "server"})
		return handlercommon.JSONError(c, fiber.StatusInternalServerError, serverErrorPrefix+err.Error())
	}
}

// PostVerify handles POST /api/verify
// @Summary Verify a signed mint voucher
// @Description Recover the signer of a signed payload and check it against the collection key
// @Tags Mint
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Signed payload"
// @Success 200 {object} mint.VerifyResult
// @Failure 400 {object} common.ErrorResponse
// @Router /api/verify [post]
func (h *MintHandler) PostVerify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := decodeBody(c.Body(), &req); err != nil || req.SignedPayload == nil {
		return handlercommon.JSONError(c, fiber.StatusBadRequest, "signedPayload is required")
	}

	result, err := h.issuer.Verify(req.SignedPayload)
	if err != nil {
		status := handlercommon.StatusFromError(err)
		msg := err.Error()
		if status >= fiber.StatusInternalServerError {
			msg = serverErrorPrefix + msg
		}
		return handlercommon.JSONError(c, status, strings.TrimSpace(msg))
	}
	return c.JSON(result)
}
