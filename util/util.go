package util

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// NormalizeAddress validates a hex account address and returns its checksummed form.
func NormalizeAddress(addrStr string) (string, error) {
	addrStr = strings.TrimSpace(addrStr)
	if !common.IsHexAddress(addrStr) {
		return "", types.NewInvalidValueError("address", addrStr, "invalid address format")
	}
	return common.HexToAddress(addrStr).Hex(), nil
}

// NormalizeTokenId accepts a decimal or 0x-prefixed token id and returns it in decimal.
func NormalizeTokenId(tokenId string) (string, error) {
	tokenId = strings.TrimSpace(tokenId)
	n, ok := new(big.Int).SetString(tokenId, 0)
	if !ok || n.Sign() < 0 {
		return "", types.NewInvalidValueError("token_id", tokenId, "must be a non-negative integer")
	}
	return n.String(), nil
}
