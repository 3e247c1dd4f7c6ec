package voucher

import (
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// NativeDecimals is the number of decimals of the chain's native token.
const NativeDecimals = 18

// ParsePrice converts a decimal display price such as "0.25" into base units.
func ParsePrice(price string, decimals int) (*big.Int, error) {
	price = strings.TrimSpace(price)
	if price == "" {
		return big.NewInt(0), nil
	}
	dec, err := sdkmath.LegacyNewDecFromStr(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if dec.IsNegative() {
		return nil, fmt.Errorf("invalid price %q: must not be negative", price)
	}

	scaled := dec.MulInt(sdkmath.NewIntWithDecimal(1, decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("invalid price %q: more than %d decimals", price, decimals)
	}
	return scaled.TruncateInt().BigInt(), nil
}

// FormatPrice renders base units as a trimmed decimal string.
func FormatPrice(amount *big.Int, decimals int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	s := sdkmath.LegacyNewDecFromBigIntWithPrec(amount, int64(decimals)).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// TotalPrice is the value sent with a redeem transaction.
func TotalPrice(pricePerToken *big.Int, quantity *big.Int) *big.Int {
	if pricePerToken == nil {
		return big.NewInt(0)
	}
	if quantity == nil || quantity.Sign() == 0 {
		return new(big.Int).Set(pricePerToken)
	}
	return new(big.Int).Mul(pricePerToken, quantity)
}
