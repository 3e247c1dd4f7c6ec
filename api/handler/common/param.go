package common

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/util"
)

func GetParams(c *fiber.Ctx, key string) (string, error) {
	value := c.Params(key)
	if value == "" {
		return "", fmt.Errorf("missing parameter: %s", key)
	}
	return value, nil
}

func GetTokenIdParam(c *fiber.Ctx) (string, error) {
	value, err := GetParams(c, "token_id")
	if err != nil {
		return "", err
	}

	tokenId, err := util.NormalizeTokenId(value)
	if err != nil {
		return "", fmt.Errorf("invalid token_id: %s", value)
	}
	return tokenId, nil
}

// GetAddressParam reads a hex account address path parameter and returns it checksummed.
func GetAddressParam(c *fiber.Ctx, key string) (string, error) {
	value, err := GetParams(c, key)
	if err != nil {
		return "", err
	}

	addr, err := util.NormalizeAddress(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %s", key, value)
	}
	return addr, nil
}
