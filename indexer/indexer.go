package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math/big"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/JWebSmart/Nft-marketplace/chain"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/mq"
	"github.com/JWebSmart/Nft-marketplace/orm"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/types"
)

type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
}

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, uri string) (*storage.Metadata, error)
}

type EventPublisher interface {
	Publish(event mq.Event) error
}

// Indexer follows the collection's logs and mirrors minted NFTs and voucher
// redemptions into the database.
type Indexer struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *orm.Database
	source     LogSource
	collection *chain.Collection
	fetcher    MetadataFetcher
	publisher  EventPublisher
	next       uint64

	name   string
	symbol string
}

func New(cfg *config.Config, logger *slog.Logger, db *orm.Database, source LogSource, collection *chain.Collection, fetcher MetadataFetcher, publisher EventPublisher) *Indexer {
	return &Indexer{
		cfg:        cfg,
		logger:     logger.With("component", "indexer"),
		db:         db,
		source:     source,
		collection: collection,
		fetcher:    fetcher,
		publisher:  publisher,
	}
}

// StateName keys the indexer_state row of a collection.
func StateName(collection common.Address) string {
	return "collection:" + collection.Hex()
}

// computeStartHeight resumes after the last indexed block, or at startBlock
// when nothing was indexed yet or startBlock is further ahead.
func computeStartHeight(lastIndexed int64, hasState bool, startBlock uint64) uint64 {
	if !hasState || lastIndexed < 0 {
		return startBlock
	}
	next := uint64(lastIndexed) + 1
	if startBlock > next {
		return startBlock
	}
	return next
}

func (i *Indexer) loadState(ctx context.Context) error {
	var state types.CollectedIndexerState
	err := i.db.WithContext(ctx).
		Where("name = ?", StateName(i.collection.Address())).
		First(&state).Error
	switch {
	case err == nil:
		i.next = computeStartHeight(state.Height, true, i.cfg.GetIndexerConfig().StartBlock)
	case errors.Is(err, gorm.ErrRecordNotFound):
		i.next = computeStartHeight(0, false, i.cfg.GetIndexerConfig().StartBlock)
	default:
		return types.NewDatabaseError("get indexer state", err)
	}
	return nil
}

func (i *Indexer) loadCollectionInfo(ctx context.Context) {
	if i.name != "" {
		return
	}
	name, err := i.collection.Name(ctx)
	if err != nil {
		i.logger.Warn("failed to read collection name", slog.Any("error", err))
		return
	}
	symbol, err := i.collection.Symbol(ctx)
	if err != nil {
		i.logger.Warn("failed to read collection symbol", slog.Any("error", err))
	}
	i.name, i.symbol = name, symbol
}

// Run indexes until ctx is cancelled.
func (i *Indexer) Run(ctx context.Context) error {
	if err := i.loadState(ctx); err != nil {
		return err
	}
	i.logger.Info("starting indexer",
		slog.String("collection", i.collection.Address().Hex()),
		slog.Uint64("from", i.next))

	interval := i.cfg.GetIndexerConfig().GetPollingInterval()
	for {
		progressed, err := i.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			i.logger.Error("failed to index block range", slog.Uint64("from", i.next), slog.Any("error", err))
			metrics.TrackError("indexer", "step_error")
			metrics.SetComponentHealth("indexer", false)
		} else {
			metrics.SetComponentHealth("indexer", true)
		}

		if progressed && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// step indexes the next confirmed block range. It reports false when there
// was nothing to do.
func (i *Indexer) step(ctx context.Context) (bool, error) {
	indexerCfg := i.cfg.GetIndexerConfig()
	head, err := i.source.BlockNumber(ctx)
	if err != nil {
		return false, err
	}
	if head < indexerCfg.Confirmations {
		return false, nil
	}
	safe := head - indexerCfg.Confirmations
	if i.next > safe {
		return false, nil
	}
	to := min(i.next+indexerCfg.GetBlockRange()-1, safe)

	transaction, ctx := sentry_integration.StartSentryTransaction(ctx, "index_range", fmt.Sprintf("Index blocks %d-%d", i.next, to))
	defer transaction.Finish()

	i.loadCollectionInfo(ctx)

	storefront := metrics.GetMetrics().Storefront
	start := time.Now()
	logs, err := i.source.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(i.next),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{i.collection.Address()},
		Topics:    [][]common.Hash{i.collection.EventTopics()},
	})
	if err != nil {
		storefront.ProcessingErrors.WithLabelValues("filter", "rpc_error").Inc()
		return false, err
	}
	storefront.BatchProcessingTime.WithLabelValues("filter").Observe(time.Since(start).Seconds())

	b := newBatch(i.next, to)
	if err := i.decode(b, logs); err != nil {
		storefront.ProcessingErrors.WithLabelValues("decode", "abi_error").Inc()
		return false, err
	}

	start = time.Now()
	if err := i.prepare(ctx, b); err != nil {
		storefront.ProcessingErrors.WithLabelValues("fetch", "rpc_error").Inc()
		return false, err
	}
	storefront.BatchProcessingTime.WithLabelValues("fetch").Observe(time.Since(start).Seconds())

	start = time.Now()
	if err := i.collect(ctx, b); err != nil {
		storefront.ProcessingErrors.WithLabelValues("store", "db_error").Inc()
		return false, err
	}
	storefront.BatchProcessingTime.WithLabelValues("store").Observe(time.Since(start).Seconds())
	storefront.IndexedBlockHeight.Set(float64(to))
	storefront.VouchersRedeemedTotal.Add(float64(len(b.redemptions)))

	if len(logs) > 0 {
		i.logger.Info("indexed block range",
			slog.Uint64("from", b.from),
			slog.Uint64("to", b.to),
			slog.Int("logs", len(logs)),
			slog.Int("minted", len(b.nfts)),
			slog.Int("redeemed", len(b.redemptions)))
	}

	i.next = to + 1
	i.publish(b.events)
	i.trackMintedCount(ctx)
	return true, nil
}

// trackMintedCount exports the contract's own mint counter next to the
// indexed height. Failures only log; not every collection exposes it.
func (i *Indexer) trackMintedCount(ctx context.Context) {
	count, err := i.collection.MintedCount(ctx)
	if err != nil {
		i.logger.Debug("failed to read minted count", slog.Any("error", err))
		return
	}
	minted, _ := count.Float64()
	metrics.GetMetrics().Storefront.OnchainMintedCount.Set(minted)
}

// collect writes the batch and the new indexer height in one transaction.
func (i *Indexer) collect(ctx context.Context, b *batch) error {
	batchSize := i.db.GetBatchSize()
	collection := i.collection.Address().Hex()
	height := int64(b.to)

	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(b.nfts) > 0 {
			if res := tx.Clauses(orm.DoNothingWhenConflict).CreateInBatches(b.nfts, batchSize); res.Error != nil {
				return res.Error
			}
		}

		// transfers only move ownership; height stays the mint height
		for _, tokenId := range slices.Sorted(maps.Keys(b.transferMap)) {
			res := tx.Model(&types.CollectedNft{}).
				Where("collection_addr = ? AND token_id = ?", collection, tokenId).
				Update("owner", b.transferMap[tokenId].owner)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				i.logger.Debug("transfer of a token minted before the start block", slog.String("token_id", tokenId))
			}
		}

		if len(b.burnMap) > 0 {
			var burned []string
			for tokenId := range b.burnMap {
				burned = append(burned, tokenId)
			}
			if res := tx.Where("collection_addr = ? AND token_id IN ?", collection, burned).
				Delete(&types.CollectedNft{}); res.Error != nil {
				return res.Error
			}
		}

		for _, r := range b.redemptions {
			res := tx.Model(&types.CollectedMintVoucher{}).
				Where("uid = ?", r.uid).
				Updates(map[string]any{
					"status":          types.VoucherStatusRedeemed,
					"token_ids":       pq.StringArray(r.tokenIds),
					"tx_hash":         r.txHash,
					"redeemed_height": r.height,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				i.logger.Warn("redeemed voucher not issued by this server", slog.String("uid", r.uid))
			}
		}

		var nftCount int64
		if err := tx.Model(&types.CollectedNft{}).Where("collection_addr = ?", collection).Count(&nftCount).Error; err != nil {
			return err
		}
		if res := tx.Clauses(orm.UpdateAllWhenConflict).Create(&types.CollectedNftCollection{
			Addr:     collection,
			Height:   height,
			Name:     i.name,
			Symbol:   i.symbol,
			NftCount: nftCount,
		}); res.Error != nil {
			return res.Error
		}

		return tx.Clauses(orm.UpdateAllWhenConflict).Create(&types.CollectedIndexerState{
			Name:   StateName(i.collection.Address()),
			Height: height,
		}).Error
	})
}

func (i *Indexer) publish(events []mq.Event) {
	if i.publisher == nil {
		return
	}
	now := time.Now().UTC()
	for _, event := range events {
		event.Timestamp = now
		if err := i.publisher.Publish(event); err != nil {
			i.logger.Warn("failed to publish event", slog.String("type", string(event.Type)), slog.Any("error", err))
			return
		}
	}
}
