package voucher

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/JWebSmart/Nft-marketplace/types"
)

const (
	domainVersion = "1"
	primaryType   = "MintRequest"
)

// Domain is the EIP-712 domain of the collection contract.
type Domain struct {
	Name              string
	ChainId           int64
	VerifyingContract common.Address
	ContractType      types.ContractType
}

var eip712DomainType = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

var tokenERC721MintRequestType = []apitypes.Type{
	{Name: "to", Type: "address"},
	{Name: "royaltyRecipient", Type: "address"},
	{Name: "royaltyBps", Type: "uint256"},
	{Name: "primarySaleRecipient", Type: "address"},
	{Name: "uri", Type: "string"},
	{Name: "price", Type: "uint256"},
	{Name: "currency", Type: "address"},
	{Name: "validityStartTimestamp", Type: "uint128"},
	{Name: "validityEndTimestamp", Type: "uint128"},
	{Name: "uid", Type: "bytes32"},
}

var signatureDropMintRequestType = []apitypes.Type{
	{Name: "to", Type: "address"},
	{Name: "royaltyRecipient", Type: "address"},
	{Name: "royaltyBps", Type: "uint256"},
	{Name: "primarySaleRecipient", Type: "address"},
	{Name: "uri", Type: "string"},
	{Name: "quantity", Type: "uint256"},
	{Name: "pricePerToken", Type: "uint256"},
	{Name: "currency", Type: "address"},
	{Name: "validityStartTimestamp", Type: "uint128"},
	{Name: "validityEndTimestamp", Type: "uint128"},
	{Name: "uid", Type: "bytes32"},
}

// TypedData builds the EIP-712 document for req under d.
func (d Domain) TypedData(req *MintRequest) (apitypes.TypedData, error) {
	if req == nil {
		return apitypes.TypedData{}, fmt.Errorf("nil mint request")
	}

	message := apitypes.TypedDataMessage{
		"to":                     req.To.Hex(),
		"royaltyRecipient":       req.RoyaltyRecipient.Hex(),
		"royaltyBps":             bigString(req.RoyaltyBps),
		"primarySaleRecipient":   req.PrimarySaleRecipient.Hex(),
		"uri":                    req.Uri,
		"currency":               req.Currency.Hex(),
		"validityStartTimestamp": bigString(req.ValidityStartTimestamp),
		"validityEndTimestamp":   bigString(req.ValidityEndTimestamp),
		"uid":                    hexutil.Encode(req.Uid[:]),
	}

	var fields []apitypes.Type
	switch d.ContractType {
	case types.ContractTypeNftCollection, "":
		fields = tokenERC721MintRequestType
		message["price"] = bigString(req.Price)
	case types.ContractTypeSignatureDrop:
		fields = signatureDropMintRequestType
		message["quantity"] = bigString(req.Quantity)
		message["pricePerToken"] = bigString(req.Price)
	default:
		return apitypes.TypedData{}, fmt.Errorf("unsupported contract type %q", d.ContractType)
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": eip712DomainType,
			primaryType:    fields,
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           domainVersion,
			ChainId:           math.NewHexOrDecimal256(d.ChainId),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: message,
	}, nil
}

// Hash returns the EIP-712 digest that is signed for req.
func (d Domain) Hash(req *MintRequest) ([]byte, error) {
	typedData, err := d.TypedData(req)
	if err != nil {
		return nil, err
	}
	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return hash, nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
