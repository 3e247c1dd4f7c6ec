package types

// ContractType selects the mint request layout signed for the collection.
type ContractType string

const (
	// ContractTypeNftCollection mints exactly one token per voucher.
	ContractTypeNftCollection ContractType = "nft-collection"
	// ContractTypeSignatureDrop carries a quantity and a per-token price.
	ContractTypeSignatureDrop ContractType = "signature-drop"
)

// NativeTokenAddress is the sentinel currency address for the chain's native token.
const NativeTokenAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"
