package types

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

type Table struct {
	Model interface{}
	Name  string
}

type VoucherStatus string

const (
	VoucherStatusIssued   VoucherStatus = "issued"
	VoucherStatusRedeemed VoucherStatus = "redeemed"
)

type CollectedIndexerState struct {
	Name   string `gorm:"type:text;primaryKey"`
	Height int64  `gorm:"type:bigint"`
}

type CollectedNftCollection struct {
	Addr     string `gorm:"type:text;primaryKey"`
	Height   int64  `gorm:"type:bigint;index:nft_collection_height"`
	Name     string `gorm:"type:text"`
	Symbol   string `gorm:"type:text"`
	NftCount int64  `gorm:"type:bigint"`
}

type CollectedNft struct {
	CollectionAddr string          `gorm:"type:text;primaryKey"`
	TokenId        string          `gorm:"type:text;primaryKey;index:nft_token_id"`
	Height         int64           `gorm:"type:bigint;index:nft_height"`
	Owner          string          `gorm:"type:text;index:nft_owner"`
	Uri            string          `gorm:"type:text"`
	Name           string          `gorm:"type:text"`
	Description    string          `gorm:"type:text"`
	Image          string          `gorm:"type:text"`
	Price          string          `gorm:"type:text"`
	Quantity       int64           `gorm:"type:bigint"`
	TxHash         string          `gorm:"type:text"`
	Metadata       json.RawMessage `gorm:"type:jsonb"`
}

type CollectedMintVoucher struct {
	Uid            string         `gorm:"type:text;primaryKey"`
	CollectionAddr string         `gorm:"type:text;index:mint_voucher_collection_addr"`
	Signer         string         `gorm:"type:text"`
	ToAddr         string         `gorm:"type:text;index:mint_voucher_to_addr"`
	Uri            string         `gorm:"type:text"`
	Price          string         `gorm:"type:text"`
	PriceWei       string         `gorm:"type:text"`
	Currency       string         `gorm:"type:text"`
	Quantity       int64          `gorm:"type:bigint"`
	ValidityStart  time.Time      `gorm:"type:timestamptz"`
	ValidityEnd    time.Time      `gorm:"type:timestamptz"`
	Signature      string         `gorm:"type:text"`
	Status         VoucherStatus  `gorm:"type:text;index:mint_voucher_status"`
	TokenIds       pq.StringArray `gorm:"type:text[]"`
	TxHash         string         `gorm:"type:text"`
	RedeemedHeight int64          `gorm:"type:bigint"`
	CreatedAt      time.Time      `gorm:"type:timestamptz;index:mint_voucher_created_at,sort:desc"`
}

func (CollectedIndexerState) TableName() string {
	return "indexer_state"
}

func (CollectedNftCollection) TableName() string {
	return "nft_collection"
}

func (CollectedNft) TableName() string {
	return "nft"
}

func (CollectedMintVoucher) TableName() string {
	return "mint_voucher"
}

// AllTables lists every model managed by the migrations.
func AllTables() []Table {
	return []Table{
		{Model: &CollectedIndexerState{}, Name: "indexer_state"},
		{Model: &CollectedNftCollection{}, Name: "nft_collection"},
		{Model: &CollectedNft{}, Name: "nft"},
		{Model: &CollectedMintVoucher{}, Name: "mint_voucher"},
	}
}
