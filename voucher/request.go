package voucher

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/JWebSmart/Nft-marketplace/types"
)

// MintRequest is the payload the collection contract verifies before minting.
// Quantity is only part of the signed struct for signature-drop contracts;
// Price is the per-token price in base units.
type MintRequest struct {
	To                     common.Address
	RoyaltyRecipient       common.Address
	RoyaltyBps             *big.Int
	PrimarySaleRecipient   common.Address
	Uri                    string
	Quantity               *big.Int
	Price                  *big.Int
	Currency               common.Address
	ValidityStartTimestamp *big.Int
	ValidityEndTimestamp   *big.Int
	Uid                    [32]byte
}

// NewUid returns a random request id: the hex text of a v4 UUID, which is
// exactly 32 bytes long.
func NewUid() [32]byte {
	id := uuid.New()
	var uid [32]byte
	hex.Encode(uid[:], id[:])
	return uid
}

func UidHex(uid [32]byte) string {
	return hexutil.Encode(uid[:])
}

func ParseUid(s string) ([32]byte, error) {
	var uid [32]byte
	b, err := hexutil.Decode(s)
	if err != nil {
		return uid, fmt.Errorf("invalid uid %q: %w", s, err)
	}
	if len(b) != len(uid) {
		return uid, fmt.Errorf("invalid uid %q: expected 32 bytes, got %d", s, len(b))
	}
	copy(uid[:], b)
	return uid, nil
}

// TotalValue returns the native value a redeemer must attach.
func (r *MintRequest) TotalValue(kind types.ContractType) *big.Int {
	if r.Currency != common.HexToAddress(types.NativeTokenAddress) {
		return big.NewInt(0)
	}
	if kind == types.ContractTypeSignatureDrop {
		return TotalPrice(r.Price, r.Quantity)
	}
	return TotalPrice(r.Price, nil)
}

func (r *MintRequest) ValidityStart() time.Time {
	return unixTime(r.ValidityStartTimestamp)
}

func (r *MintRequest) ValidityEnd() time.Time {
	return unixTime(r.ValidityEndTimestamp)
}

// ActiveAt reports whether t is inside the validity window.
func (r *MintRequest) ActiveAt(t time.Time) bool {
	return !t.Before(r.ValidityStart()) && !t.After(r.ValidityEnd())
}

func unixTime(v *big.Int) time.Time {
	if v == nil || !v.IsInt64() {
		return time.Unix(0, 0).UTC()
	}
	return time.Unix(v.Int64(), 0).UTC()
}
