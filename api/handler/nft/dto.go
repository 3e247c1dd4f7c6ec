package nft

import (
	"encoding/json"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/types"
)

type Collection struct {
	Address  string `json:"address" extensions:"x-order:0"`
	Name     string `json:"name" extensions:"x-order:1"`
	Symbol   string `json:"symbol" extensions:"x-order:2"`
	NftCount int64  `json:"nft_count" extensions:"x-order:3"`
	Height   int64  `json:"height" extensions:"x-order:4"`
}

type CollectionResponse struct {
	Collection Collection `json:"collection"`
}

type Nft struct {
	CollectionAddr string          `json:"collection_addr" extensions:"x-order:0"`
	TokenId        string          `json:"token_id" extensions:"x-order:1"`
	Owner          string          `json:"owner" extensions:"x-order:2"`
	Uri            string          `json:"uri" extensions:"x-order:3"`
	Name           string          `json:"name" extensions:"x-order:4"`
	Description    string          `json:"description" extensions:"x-order:5"`
	Image          string          `json:"image" extensions:"x-order:6"`
	Price          string          `json:"price" extensions:"x-order:7"`
	Currency       string          `json:"currency" extensions:"x-order:8"`
	Quantity       int64           `json:"quantity" extensions:"x-order:9"`
	Height         int64           `json:"height" extensions:"x-order:10"`
	TxHash         string          `json:"tx_hash" extensions:"x-order:11"`
	Metadata       json.RawMessage `json:"metadata,omitempty" swaggertype:"object" extensions:"x-order:12"`
}

type NftsResponse struct {
	Nfts       []Nft                     `json:"nfts" extensions:"x-order:0"`
	Pagination common.PaginationResponse `json:"pagination" extensions:"x-order:1"`
}

type NftResponse struct {
	Nft Nft `json:"nft"`
}

// nftRow adds the cursor key to an indexed NFT row.
type nftRow types.CollectedNft

func (r nftRow) Cursor() common.Cursor {
	return common.Cursor{Height: &r.Height, TokenId: &r.TokenId}
}

func ToCollectionResponse(collection types.CollectedNftCollection) Collection {
	return Collection{
		Address:  collection.Addr,
		Name:     collection.Name,
		Symbol:   collection.Symbol,
		NftCount: collection.NftCount,
		Height:   collection.Height,
	}
}

// ToNftResponse resolves the image through gateway and labels the price with
// the native currency symbol.
func ToNftResponse(nft types.CollectedNft, gateway, currency string) Nft {
	res := Nft{
		CollectionAddr: nft.CollectionAddr,
		TokenId:        nft.TokenId,
		Owner:          nft.Owner,
		Uri:            nft.Uri,
		Name:           nft.Name,
		Description:    nft.Description,
		Image:          nft.Image,
		Price:          nft.Price,
		Quantity:       nft.Quantity,
		Height:         nft.Height,
		TxHash:         nft.TxHash,
		Metadata:       nft.Metadata,
	}
	if res.Image != "" {
		res.Image = storage.ResolveWith(gateway, res.Image)
	}
	if res.Price != "" {
		res.Currency = currency
	}
	return res
}

func BatchToResponseNfts(nfts []types.CollectedNft, gateway, currency string) []Nft {
	res := make([]Nft, 0, len(nfts))
	for _, nft := range nfts {
		res = append(res, ToNftResponse(nft, gateway, currency))
	}
	return res
}
