package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/JWebSmart/Nft-marketplace/types"
)

const erc721ReadABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"tokenURI","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"nextTokenIdToMint","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true}]}
`

const tokenERC721MintABI = `,
	{"type":"function","name":"mintWithSignature","stateMutability":"payable","inputs":[
		{"name":"_req","type":"tuple","components":[
			{"name":"to","type":"address"},
			{"name":"royaltyRecipient","type":"address"},
			{"name":"royaltyBps","type":"uint256"},
			{"name":"primarySaleRecipient","type":"address"},
			{"name":"uri","type":"string"},
			{"name":"price","type":"uint256"},
			{"name":"currency","type":"address"},
			{"name":"validityStartTimestamp","type":"uint128"},
			{"name":"validityEndTimestamp","type":"uint128"},
			{"name":"uid","type":"bytes32"}]},
		{"name":"_signature","type":"bytes"}],
		"outputs":[{"name":"tokenIdMinted","type":"uint256"}]},
	{"type":"event","name":"TokensMintedWithSignature","anonymous":false,"inputs":[
		{"name":"signer","type":"address","indexed":true},
		{"name":"mintedTo","type":"address","indexed":true},
		{"name":"tokenIdMinted","type":"uint256","indexed":true},
		{"name":"mintRequest","type":"tuple","indexed":false,"components":[
			{"name":"to","type":"address"},
			{"name":"royaltyRecipient","type":"address"},
			{"name":"royaltyBps","type":"uint256"},
			{"name":"primarySaleRecipient","type":"address"},
			{"name":"uri","type":"string"},
			{"name":"price","type":"uint256"},
			{"name":"currency","type":"address"},
			{"name":"validityStartTimestamp","type":"uint128"},
			{"name":"validityEndTimestamp","type":"uint128"},
			{"name":"uid","type":"bytes32"}]}]}
]`

const signatureDropMintABI = `,
	{"type":"function","name":"mintWithSignature","stateMutability":"payable","inputs":[
		{"name":"_req","type":"tuple","components":[
			{"name":"to","type":"address"},
			{"name":"royaltyRecipient","type":"address"},
			{"name":"royaltyBps","type":"uint256"},
			{"name":"primarySaleRecipient","type":"address"},
			{"name":"uri","type":"string"},
			{"name":"quantity","type":"uint256"},
			{"name":"pricePerToken","type":"uint256"},
			{"name":"currency","type":"address"},
			{"name":"validityStartTimestamp","type":"uint128"},
			{"name":"validityEndTimestamp","type":"uint128"},
			{"name":"uid","type":"bytes32"}]},
		{"name":"_signature","type":"bytes"}],
		"outputs":[{"name":"signer","type":"address"}]},
	{"type":"event","name":"TokensMintedWithSignature","anonymous":false,"inputs":[
		{"name":"signer","type":"address","indexed":true},
		{"name":"mintedTo","type":"address","indexed":true},
		{"name":"startTokenId","type":"uint256","indexed":true},
		{"name":"mintRequest","type":"tuple","indexed":false,"components":[
			{"name":"to","type":"address"},
			{"name":"royaltyRecipient","type":"address"},
			{"name":"royaltyBps","type":"uint256"},
			{"name":"primarySaleRecipient","type":"address"},
			{"name":"uri","type":"string"},
			{"name":"quantity","type":"uint256"},
			{"name":"pricePerToken","type":"uint256"},
			{"name":"currency","type":"address"},
			{"name":"validityStartTimestamp","type":"uint128"},
			{"name":"validityEndTimestamp","type":"uint128"},
			{"name":"uid","type":"bytes32"}]}]}
]`

var (
	tokenERC721ABI   = mustParseABI(erc721ReadABI + tokenERC721MintABI)
	signatureDropABI = mustParseABI(erc721ReadABI + signatureDropMintABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ABIFor returns the collection ABI for the contract type.
func ABIFor(kind types.ContractType) abi.ABI {
	if kind == types.ContractTypeSignatureDrop {
		return signatureDropABI
	}
	return tokenERC721ABI
}
