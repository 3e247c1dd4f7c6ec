package mq

import "time"

type EventType string

const (
	EventVoucherIssued EventType = "voucher_issued"
	EventNftMinted     EventType = "nft_minted"
	EventNftTransfer   EventType = "nft_transferred"
	EventNftBurned     EventType = "nft_burned"
)

// Event is the message published on the storefront stream.
type Event struct {
	Type       EventType `json:"type"`
	Collection string    `json:"collection"`
	Uid        string    `json:"uid,omitempty"`
	To         string    `json:"to,omitempty"`
	TokenIds   []string  `json:"token_ids,omitempty"`
	TxHash     string    `json:"tx_hash,omitempty"`
	Height     int64     `json:"height"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoutingKey keeps every event of one voucher or token on the same partition.
func (e Event) RoutingKey() string {
	switch {
	case e.Uid != "":
		return e.Uid
	case len(e.TokenIds) > 0:
		return e.Collection + "/" + e.TokenIds[0]
	default:
		return e.Collection
	}
}
