package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	// MaxMintQuantity bounds the quantity of a single voucher and the number
	// of token ids expanded from one mint event.
	MaxMintQuantity = 10_000

	decimalPlaces = 18
	maxExponent   = 64
)

// FlexNumber holds a decimal number that may arrive as a JSON number or a
// numeric string. It is written back as a JSON number whenever possible.
type FlexNumber string

func (n FlexNumber) String() string {
	return string(n)
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(n)) && isNumeric(string(n)) {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = FlexNumber(normalizeDecimal(strings.TrimSpace(s)))
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("expected number or numeric string, got %s", string(data))
		}
		*n = FlexNumber(normalizeDecimal(num.String()))
		return nil
	}
}

// normalizeDecimal rewrites exponent notation such as 1e-7 or 1e2 as a plain
// decimal with at most 18 fractional digits. Other input is returned as is.
func normalizeDecimal(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	exp, err := strconv.Atoi(s[idx+1:])
	if err != nil || exp > maxExponent || exp < -maxExponent {
		return s
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return s
	}
	out := r.FloatString(decimalPlaces)
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}

func isNumeric(s string) bool {
	var num json.Number
	return json.Unmarshal([]byte(s), &num) == nil
}

// NftMetadata is the JSON document stored behind a token URI.
type NftMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Properties  map[string]any `json:"properties"`
	Price       FlexNumber     `json:"price,omitempty"`
	Quantity    FlexNumber     `json:"quantity,omitempty"`
}
