package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// Collection reads and decodes a single NFT collection contract.
type Collection struct {
	address common.Address
	kind    types.ContractType
	abi     abi.ABI
	caller  bind.ContractCaller
}

func NewCollection(address common.Address, kind types.ContractType, caller bind.ContractCaller) *Collection {
	return &Collection{
		address: address,
		kind:    kind,
		abi:     ABIFor(kind),
		caller:  caller,
	}
}

func (c *Collection) Address() common.Address {
	return c.address
}

func (c *Collection) Kind() types.ContractType {
	return c.kind
}

func (c *Collection) ABI() abi.ABI {
	return c.abi
}

func (c *Collection) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: input}, nil)
	if err != nil {
		return nil, types.NewChainError(method, err)
	}
	res, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, types.NewChainError(method, fmt.Errorf("failed to unpack: %w", err))
	}
	if len(res) == 0 {
		return nil, types.NewChainError(method, errors.New("empty result"))
	}
	return res, nil
}

func (c *Collection) callString(ctx context.Context, method string, args ...any) (string, error) {
	res, err := c.call(ctx, method, args...)
	if err != nil {
		return "", err
	}
	s, ok := res[0].(string)
	if !ok {
		return "", types.NewChainError(method, fmt.Errorf("unexpected result type %T", res[0]))
	}
	return s, nil
}

func (c *Collection) callBig(ctx context.Context, method string, args ...any) (*big.Int, error) {
	res, err := c.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	n, ok := res[0].(*big.Int)
	if !ok {
		return nil, types.NewChainError(method, fmt.Errorf("unexpected result type %T", res[0]))
	}
	return n, nil
}

func (c *Collection) Name(ctx context.Context) (string, error) {
	return c.callString(ctx, "name")
}

func (c *Collection) Symbol(ctx context.Context) (string, error) {
	return c.callString(ctx, "symbol")
}

func (c *Collection) TokenURI(ctx context.Context, tokenId *big.Int) (string, error) {
	return c.callString(ctx, "tokenURI", tokenId)
}

// MintedCount returns the number of tokens minted so far. Token ids run
// from 0 to MintedCount-1. Collections without nextTokenIdToMint fall back to
// totalSupply.
func (c *Collection) MintedCount(ctx context.Context) (*big.Int, error) {
	n, err := c.callBig(ctx, "nextTokenIdToMint")
	if err == nil {
		return n, nil
	}
	fallback, ferr := c.callBig(ctx, "totalSupply")
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return fallback, nil
}

// EventTopics are the topic0 values the indexer filters on.
func (c *Collection) EventTopics() []common.Hash {
	return []common.Hash{
		c.abi.Events["Transfer"].ID,
		c.abi.Events["TokensMintedWithSignature"].ID,
	}
}

// Transfer is a decoded ERC721 Transfer log.
type Transfer struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
}

func (t Transfer) IsMint() bool {
	return t.From == (common.Address{})
}

func (t Transfer) IsBurn() bool {
	return t.To == (common.Address{})
}

// SignatureMint is a decoded TokensMintedWithSignature log. For drops
// TokenId is the first of Quantity consecutive ids.
type SignatureMint struct {
	Signer   common.Address
	MintedTo common.Address
	TokenId  *big.Int
	Uid      [32]byte
	Uri      string
	Quantity *big.Int
	Price    *big.Int
}

// TokenIds expands a drop mint into every id it produced, up to
// types.MaxMintQuantity ids.
func (m SignatureMint) TokenIds() []*big.Int {
	n := int64(1)
	if m.Quantity != nil && m.Quantity.Cmp(big.NewInt(1)) > 0 {
		n = types.MaxMintQuantity
		if m.Quantity.IsInt64() && m.Quantity.Int64() < n {
			n = m.Quantity.Int64()
		}
	}
	ids := make([]*big.Int, 0, n)
	for i := int64(0); i < n; i++ {
		ids = append(ids, new(big.Int).Add(m.TokenId, big.NewInt(i)))
	}
	return ids
}

type tokenERC721Request struct {
	To                     common.Address
	RoyaltyRecipient       common.Address
	RoyaltyBps             *big.Int
	PrimarySaleRecipient   common.Address
	Uri                    string
	Price                  *big.Int
	Currency               common.Address
	ValidityStartTimestamp *big.Int
	ValidityEndTimestamp   *big.Int
	Uid                    [32]byte
}

type signatureDropRequest struct {
	To                     common.Address
	RoyaltyRecipient       common.Address
	RoyaltyBps             *big.Int
	PrimarySaleRecipient   common.Address
	Uri                    string
	Quantity               *big.Int
	PricePerToken          *big.Int
	Currency               common.Address
	ValidityStartTimestamp *big.Int
	ValidityEndTimestamp   *big.Int
	Uid                    [32]byte
}

// ParseTransfer decodes an ERC721 Transfer log.
func (c *Collection) ParseTransfer(log ethtypes.Log) (*Transfer, error) {
	if len(log.Topics) != 4 || log.Topics[0] != c.abi.Events["Transfer"].ID {
		return nil, fmt.Errorf("not an ERC721 Transfer log")
	}
	return &Transfer{
		From:    common.BytesToAddress(log.Topics[1].Bytes()),
		To:      common.BytesToAddress(log.Topics[2].Bytes()),
		TokenId: new(big.Int).SetBytes(log.Topics[3].Bytes()),
	}, nil
}

// ParseSignatureMint decodes a TokensMintedWithSignature log.
func (c *Collection) ParseSignatureMint(log ethtypes.Log) (*SignatureMint, error) {
	event := c.abi.Events["TokensMintedWithSignature"]
	if len(log.Topics) != 4 || log.Topics[0] != event.ID {
		return nil, fmt.Errorf("not a TokensMintedWithSignature log")
	}
	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack mint request: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected mint request field count %d", len(values))
	}

	mint := &SignatureMint{
		Signer:   common.BytesToAddress(log.Topics[1].Bytes()),
		MintedTo: common.BytesToAddress(log.Topics[2].Bytes()),
		TokenId:  new(big.Int).SetBytes(log.Topics[3].Bytes()),
		Quantity: big.NewInt(1),
	}
	if c.kind == types.ContractTypeSignatureDrop {
		req := *abi.ConvertType(values[0], new(signatureDropRequest)).(*signatureDropRequest)
		mint.Uid, mint.Uri, mint.Quantity, mint.Price = req.Uid, req.Uri, req.Quantity, req.PricePerToken
	} else {
		req := *abi.ConvertType(values[0], new(tokenERC721Request)).(*tokenERC721Request)
		mint.Uid, mint.Uri, mint.Price = req.Uid, req.Uri, req.Price
	}
	return mint, nil
}
