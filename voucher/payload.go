package voucher

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// Payload is the JSON form of a signed mint request handed to the minter.
type Payload struct {
	To                   string            `json:"to"`
	RoyaltyRecipient     string            `json:"royaltyRecipient"`
	RoyaltyBps           int64             `json:"royaltyBps"`
	PrimarySaleRecipient string            `json:"primarySaleRecipient"`
	Uri                  string            `json:"uri"`
	Price                string            `json:"price"`
	CurrencyAddress      string            `json:"currencyAddress"`
	MintStartTime        time.Time         `json:"mintStartTime"`
	MintEndTime          time.Time         `json:"mintEndTime"`
	Uid                  string            `json:"uid"`
	Quantity             string            `json:"quantity"`
	Metadata             types.NftMetadata `json:"metadata"`
}

type SignedPayload struct {
	Payload   Payload `json:"payload"`
	Signature string  `json:"signature"`
}

// NewSignedPayload renders req and sig for transport.
func NewSignedPayload(req *MintRequest, sig []byte, metadata types.NftMetadata) *SignedPayload {
	return &SignedPayload{
		Payload: Payload{
			To:                   req.To.Hex(),
			RoyaltyRecipient:     req.RoyaltyRecipient.Hex(),
			RoyaltyBps:           req.RoyaltyBps.Int64(),
			PrimarySaleRecipient: req.PrimarySaleRecipient.Hex(),
			Uri:                  req.Uri,
			Price:                FormatPrice(req.Price, NativeDecimals),
			CurrencyAddress:      req.Currency.Hex(),
			MintStartTime:        req.ValidityStart(),
			MintEndTime:          req.ValidityEnd(),
			Uid:                  UidHex(req.Uid),
			Quantity:             bigString(req.Quantity),
			Metadata:             metadata,
		},
		Signature: hexutil.Encode(sig),
	}
}

// MintRequest rebuilds the signed struct from its JSON form.
func (p Payload) MintRequest() (*MintRequest, error) {
	for name, addr := range map[string]string{
		"to":                   p.To,
		"royaltyRecipient":     p.RoyaltyRecipient,
		"primarySaleRecipient": p.PrimarySaleRecipient,
		"currencyAddress":      p.CurrencyAddress,
	} {
		if !common.IsHexAddress(addr) {
			return nil, types.NewInvalidValueError(name, addr, "not a hex address")
		}
	}

	price, err := ParsePrice(p.Price, NativeDecimals)
	if err != nil {
		return nil, types.NewInvalidValueError("price", p.Price, err.Error())
	}
	quantity := big.NewInt(1)
	if p.Quantity != "" {
		if _, ok := quantity.SetString(p.Quantity, 10); !ok || quantity.Sign() <= 0 {
			return nil, types.NewInvalidValueError("quantity", p.Quantity, "must be a positive integer")
		}
	}
	uid, err := ParseUid(p.Uid)
	if err != nil {
		return nil, types.NewInvalidValueError("uid", p.Uid, err.Error())
	}

	return &MintRequest{
		To:                     common.HexToAddress(p.To),
		RoyaltyRecipient:       common.HexToAddress(p.RoyaltyRecipient),
		RoyaltyBps:             big.NewInt(p.RoyaltyBps),
		PrimarySaleRecipient:   common.HexToAddress(p.PrimarySaleRecipient),
		Uri:                    p.Uri,
		Quantity:               quantity,
		Price:                  price,
		Currency:               common.HexToAddress(p.CurrencyAddress),
		ValidityStartTimestamp: big.NewInt(p.MintStartTime.Unix()),
		ValidityEndTimestamp:   big.NewInt(p.MintEndTime.Unix()),
		Uid:                    uid,
	}, nil
}

// Decode returns the request and raw signature of sp.
func (sp *SignedPayload) Decode() (*MintRequest, []byte, error) {
	req, err := sp.Payload.MintRequest()
	if err != nil {
		return nil, nil, err
	}
	sig, err := hexutil.Decode(sp.Signature)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid signature: %w", err)
	}
	return req, sig, nil
}
