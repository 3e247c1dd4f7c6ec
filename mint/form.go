package mint

import (
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/types"
)

const (
	MsgInvalidImage       = "Please select a valid image"
	MsgInvalidName        = "Please enter a valid name"
	MsgInvalidDescription = "Please enter a valid description"
	MsgInvalidQuantity    = "Please enter a valid quantity"
	MsgInvalidPrice       = "Please enter a valid price"
)

// FieldError is a user-facing validation failure for one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// ValidationErrors lists every failing field in form order.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Form holds the values of the mint form. Quantity and Price default to 1 and 0.
type Form struct {
	Image       []byte
	ImageName   string
	Name        string
	Description string
	Quantity    types.FlexNumber
	Price       types.FlexNumber
}

// Validate checks every field and returns ValidationErrors, or nil.
func (f Form) Validate() error {
	var errs ValidationErrors
	if _, ok := storage.DetectImageType(f.Image); len(f.Image) == 0 || !ok {
		errs = append(errs, &FieldError{Field: "image", Message: MsgInvalidImage})
	}
	errs = append(errs, validateFields(f.Name, f.Description, f.Quantity, f.Price)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateFields(name, description string, quantity, price types.FlexNumber) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(name) == "" {
		errs = append(errs, &FieldError{Field: "name", Message: MsgInvalidName})
	}
	if strings.TrimSpace(description) == "" {
		errs = append(errs, &FieldError{Field: "description", Message: MsgInvalidDescription})
	}
	if _, ok := ParseQuantity(quantity); !ok {
		errs = append(errs, &FieldError{Field: "quantity", Message: MsgInvalidQuantity})
	}
	if !positiveDecimal(price) {
		errs = append(errs, &FieldError{Field: "price", Message: MsgInvalidPrice})
	}
	return errs
}

// ParseQuantity accepts a whole number from 1 to types.MaxMintQuantity.
// An empty value means 1.
func ParseQuantity(q types.FlexNumber) (*big.Int, bool) {
	s := strings.TrimSpace(q.String())
	if s == "" {
		return big.NewInt(1), true
	}
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil || !dec.IsPositive() || !dec.IsInteger() {
		return nil, false
	}
	n := dec.TruncateInt()
	if !n.IsInt64() || n.Int64() > types.MaxMintQuantity {
		return nil, false
	}
	return n.BigInt(), true
}

// positiveDecimal reports whether p parses as a decimal greater than zero.
// An empty price is the form default of 0 and fails.
func positiveDecimal(p types.FlexNumber) bool {
	s := strings.TrimSpace(p.String())
	if s == "" {
		return false
	}
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	return err == nil && dec.IsPositive()
}
