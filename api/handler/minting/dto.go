package minting

import (
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

type ServerResponse struct {
	SignedPayload *voucher.SignedPayload `json:"signedPayload"`
}

type VerifyRequest struct {
	SignedPayload *voucher.SignedPayload `json:"signedPayload"`
}

type UploadResponse struct {
	Uri string `json:"uri" extensions:"x-order:0"`
	Url string `json:"url" extensions:"x-order:1"`
}
