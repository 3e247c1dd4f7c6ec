package minting

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/storage"
)

const uploadField = "file"

// PostUpload handles POST /api/upload
// @Summary Upload an NFT image
// @Description Pin a png, gif or jpeg image on IPFS
// @Tags Mint
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 413 {object} common.ErrorResponse
// @Failure 500 {object} common.ErrorResponse
// @Router /api/upload [post]
func (h *MintHandler) PostUpload(c *fiber.Ctx) error {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return common.JSONError(c, fiber.StatusBadRequest, mint.MsgInvalidImage)
	}
	maxBytes := h.GetConfig().GetStorageConfig().MaxUploadBytes
	if maxBytes > 0 && header.Size > int64(maxBytes) {
		return common.JSONError(c, fiber.StatusRequestEntityTooLarge, "image is too large")
	}

	file, err := header.Open()
	if err != nil {
		return common.JSONError(c, fiber.StatusBadRequest, mint.MsgInvalidImage)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return common.JSONError(c, fiber.StatusBadRequest, mint.MsgInvalidImage)
	}
	if _, ok := storage.DetectImageType(data); !ok {
		return common.JSONError(c, fiber.StatusBadRequest, mint.MsgInvalidImage)
	}

	uri, err := h.uploader.Upload(c.UserContext(), storage.KindImage, header.Filename, data)
	if err != nil {
		h.TrackError("storage_error")
		h.GetLogger().Error("failed to upload image", slog.String("name", header.Filename), slog.Any("error", err))
		return common.JSONError(c, common.StatusFromError(err), serverErrorPrefix+err.Error())
	}
	return c.JSON(UploadResponse{Uri: uri, Url: h.uploader.Resolve(uri)})
}
