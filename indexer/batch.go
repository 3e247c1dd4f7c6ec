package indexer

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"sort"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/sync/errgroup"

	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/mq"
	"github.com/JWebSmart/Nft-marketplace/types"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

type mintInfo struct {
	owner  string
	height int64
	txHash string
}

type ownerInfo struct {
	owner  string
	height int64
}

type redemption struct {
	uid      string
	to       string
	tokenIds []string
	txHash   string
	height   int64
}

// batch is the decoded content of one block range.
type batch struct {
	from, to    uint64
	mintMap     map[string]mintInfo
	transferMap map[string]ownerInfo
	burnMap     map[string]int64
	redemptions []redemption
	nfts        []types.CollectedNft
	events      []mq.Event
}

func newBatch(from, to uint64) *batch {
	return &batch{
		from:        from,
		to:          to,
		mintMap:     make(map[string]mintInfo),
		transferMap: make(map[string]ownerInfo),
		burnMap:     make(map[string]int64),
	}
}

// decode sorts logs into mints, transfers, burns and voucher redemptions.
// Later logs win, so a token minted and burned in the same range is dropped.
func (i *Indexer) decode(b *batch, logs []ethtypes.Log) error {
	sort.Slice(logs, func(x, y int) bool {
		if logs[x].BlockNumber != logs[y].BlockNumber {
			return logs[x].BlockNumber < logs[y].BlockNumber
		}
		return logs[x].Index < logs[y].Index
	})

	storefront := metrics.GetMetrics().Storefront
	collection := i.collection.Address().Hex()
	topics := i.collection.EventTopics()
	transferTopic, mintTopic := topics[0], topics[1]

	for _, log := range logs {
		if log.Removed || len(log.Topics) == 0 || log.Address != i.collection.Address() {
			continue
		}
		height := int64(log.BlockNumber)
		txHash := log.TxHash.Hex()

		switch log.Topics[0] {
		case transferTopic:
			transfer, err := i.collection.ParseTransfer(log)
			if err != nil {
				// ERC20-style Transfer with a non-indexed amount
				continue
			}
			tokenId := transfer.TokenId.String()
			to := transfer.To.Hex()

			switch {
			case transfer.IsMint():
				b.mintMap[tokenId] = mintInfo{owner: to, height: height, txHash: txHash}
				delete(b.burnMap, tokenId)
				storefront.NftEventsTotal.WithLabelValues("mint").Inc()
			case transfer.IsBurn():
				b.burnMap[tokenId] = height
				delete(b.mintMap, tokenId)
				delete(b.transferMap, tokenId)
				storefront.NftEventsTotal.WithLabelValues("burn").Inc()
				b.events = append(b.events, mq.Event{
					Type: mq.EventNftBurned, Collection: collection, TokenIds: []string{tokenId},
					TxHash: txHash, Height: height,
				})
			default:
				if m, ok := b.mintMap[tokenId]; ok {
					m.owner = to
					b.mintMap[tokenId] = m
				} else {
					b.transferMap[tokenId] = ownerInfo{owner: to, height: height}
				}
				storefront.NftEventsTotal.WithLabelValues("transfer").Inc()
				b.events = append(b.events, mq.Event{
					Type: mq.EventNftTransfer, Collection: collection, To: to, TokenIds: []string{tokenId},
					TxHash: txHash, Height: height,
				})
			}

		case mintTopic:
			sigMint, err := i.collection.ParseSignatureMint(log)
			if err != nil {
				return err
			}
			var tokenIds []string
			for _, id := range sigMint.TokenIds() {
				tokenIds = append(tokenIds, id.String())
			}
			r := redemption{
				uid:      voucher.UidHex(sigMint.Uid),
				to:       sigMint.MintedTo.Hex(),
				tokenIds: tokenIds,
				txHash:   txHash,
				height:   height,
			}
			b.redemptions = append(b.redemptions, r)
			storefront.NftEventsTotal.WithLabelValues("signature_mint").Inc()
			b.events = append(b.events, mq.Event{
				Type: mq.EventNftMinted, Collection: collection, Uid: r.uid, To: r.to,
				TokenIds: tokenIds, TxHash: txHash, Height: height,
			})
		}
	}
	return nil
}

// prepare reads the token URI and metadata of every minted token in parallel.
// Token URI failures abort the batch; metadata failures only leave the
// metadata columns empty.
func (i *Indexer) prepare(ctx context.Context, b *batch) error {
	tokenIds := make([]string, 0, len(b.mintMap))
	for tokenId := range b.mintMap {
		tokenIds = append(tokenIds, tokenId)
	}
	sort.Strings(tokenIds)

	b.nfts = make([]types.CollectedNft, len(tokenIds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.cfg.GetIndexerConfig().GetFetchWorkers())

	collection := i.collection.Address().Hex()
	for idx, tokenId := range tokenIds {
		info := b.mintMap[tokenId]
		g.Go(func() error {
			id, _ := new(big.Int).SetString(tokenId, 10)
			uri, err := i.collection.TokenURI(gctx, id)
			if err != nil {
				return err
			}

			nft := types.CollectedNft{
				CollectionAddr: collection,
				TokenId:        tokenId,
				Height:         info.height,
				Owner:          info.owner,
				Uri:            uri,
				TxHash:         info.txHash,
				Quantity:       1,
			}
			if md, err := i.fetcher.FetchMetadata(gctx, uri); err != nil {
				i.logger.Warn("failed to fetch token metadata",
					slog.String("token_id", tokenId),
					slog.String("uri", uri),
					slog.Any("error", err))
			} else {
				applyMetadata(&nft, md.NftMetadata, md.Raw)
			}
			b.nfts[idx] = nft
			return nil
		})
	}
	return g.Wait()
}

func applyMetadata(nft *types.CollectedNft, md types.NftMetadata, raw json.RawMessage) {
	nft.Name = md.Name
	nft.Description = md.Description
	nft.Image = md.Image
	nft.Price = md.Price.String()
	if q, ok := mint.ParseQuantity(md.Quantity); ok {
		nft.Quantity = q.Int64()
	}
	if json.Valid(raw) {
		nft.Metadata = raw
	}
}
