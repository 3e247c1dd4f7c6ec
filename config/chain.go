package config

import (
	"fmt"
	"net/url"

	"github.com/ethereum/go-ethereum/common"

	"github.com/JWebSmart/Nft-marketplace/types"
)

type ChainConfig struct {
	ChainId           int64
	ChainName         string
	JsonRpcUrls       []string
	CollectionAddress string
	ContractType      types.ContractType
	ContractName      string
	NativeSymbol      string
}

func (cc ChainConfig) Validate() error {
	if cc.ChainId <= 0 {
		return types.NewValidationError("CHAIN_ID", "must be a positive integer")
	}

	if len(cc.JsonRpcUrls) == 0 {
		return types.NewValidationError("JSON_RPC_URL", "required field is missing")
	}
	for _, raw := range cc.JsonRpcUrls {
		u, err := url.Parse(raw)
		if err != nil {
			return types.NewInvalidValueError("JSON_RPC_URL", raw, fmt.Sprintf("invalid URL: %v", err))
		}
		if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "ws" && u.Scheme != "wss" {
			return types.NewInvalidValueError("JSON_RPC_URL", raw, fmt.Sprintf("must use http, https, ws or wss scheme, got: %s", u.Scheme))
		}
	}

	if len(cc.CollectionAddress) == 0 {
		return types.NewValidationError("NEXT_PUBLIC_NFT_COLLECTION_ADDRESS", "required field is missing")
	}
	if !common.IsHexAddress(cc.CollectionAddress) {
		return types.NewInvalidValueError("NEXT_PUBLIC_NFT_COLLECTION_ADDRESS", cc.CollectionAddress, "must be a hex address")
	}

	switch cc.ContractType {
	case types.ContractTypeNftCollection, types.ContractTypeSignatureDrop:
	default:
		return types.NewInvalidValueError("CONTRACT_TYPE", string(cc.ContractType), "must be 'nft-collection' or 'signature-drop'")
	}

	if len(cc.ContractName) == 0 {
		return types.NewValidationError("CONTRACT_NAME", "required field is missing")
	}

	return nil
}

// Collection returns the checksummed collection address.
func (cc ChainConfig) Collection() common.Address {
	return common.HexToAddress(cc.CollectionAddress)
}
