package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JWebSmart/Nft-marketplace/chain"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/mq"
	"github.com/JWebSmart/Nft-marketplace/orm/testutil"
	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/types"
)

var (
	testLogger     = slog.New(slog.NewTextHandler(io.Discard, nil))
	testCollection = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	alice          = common.HexToAddress("0x00000000000000000000000000000000000A11CE")
	bob            = common.HexToAddress("0x0000000000000000000000000000000000000B0B")
	signerAddr     = common.HexToAddress("0x71562b71999873DB5b286dF957af199Ec94617F7")
)

type fakeCaller struct {
	collection *chain.Collection
	uris       map[int64]string
	failUri    bool
	minted     *big.Int
}

func (f *fakeCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

func (f *fakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	contractABI := f.collection.ABI()
	method, err := contractABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack("Cats")
	case "symbol":
		return method.Outputs.Pack("CAT")
	case "tokenURI":
		if f.failUri {
			return nil, errors.New("execution reverted")
		}
		args, err := method.Inputs.Unpack(call.Data[4:])
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(f.uris[args[0].(*big.Int).Int64()])
	case "nextTokenIdToMint":
		if f.minted != nil {
			return method.Outputs.Pack(f.minted)
		}
	}
	return nil, errors.New("unexpected call " + method.Name)
}

type fakeSource struct {
	head  uint64
	logs  []ethtypes.Log
	query ethereum.FilterQuery
}

func (f *fakeSource) BlockNumber(ctx context.Context) (uint64, error) {
	return f.head, nil
}

func (f *fakeSource) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	f.query = q
	return f.logs, nil
}

type fakeFetcher struct {
	docs map[string]string
}

func (f *fakeFetcher) FetchMetadata(ctx context.Context, uri string) (*storage.Metadata, error) {
	raw, ok := f.docs[uri]
	if !ok {
		return nil, errors.New("gateway timeout")
	}
	md := &storage.Metadata{Raw: json.RawMessage(raw)}
	if err := json.Unmarshal([]byte(raw), &md.NftMetadata); err != nil {
		return nil, err
	}
	return md, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []mq.Event
}

func (f *fakePublisher) Publish(event mq.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SetIndexerConfig(&config.IndexerConfig{
		StartBlock:    10,
		Confirmations: 2,
		BlockRange:    100,
		FetchWorkers:  2,
	})
	return cfg
}

func newTestIndexer(t *testing.T, source *fakeSource, fetcher *fakeFetcher) (*Indexer, *fakeCaller, sqlmock.Sqlmock, *fakePublisher) {
	t.Helper()
	db, mock, err := testutil.NewMockDB()
	require.NoError(t, err)

	caller := &fakeCaller{uris: map[int64]string{}}
	collection := chain.NewCollection(testCollection, types.ContractTypeNftCollection, caller)
	caller.collection = collection

	publisher := &fakePublisher{}
	return New(testConfig(), testLogger, db, source, collection, fetcher, publisher), caller, mock, publisher
}

func transferLog(from, to common.Address, tokenId int64, block uint64, index uint) ethtypes.Log {
	c := chain.NewCollection(testCollection, types.ContractTypeNftCollection, nil)
	return ethtypes.Log{
		Address: testCollection,
		Topics: []common.Hash{
			c.EventTopics()[0],
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(tokenId)),
		},
		BlockNumber: block,
		Index:       index,
		TxHash:      common.BigToHash(big.NewInt(int64(block))),
	}
}

type mintRequestTuple struct {
	To                     common.Address
	RoyaltyRecipient       common.Address
	RoyaltyBps             *big.Int
	PrimarySaleRecipient   common.Address
	Uri                    string
	Price                  *big.Int
	Currency               common.Address
	ValidityStartTimestamp *big.Int
	ValidityEndTimestamp   *big.Int
	Uid                    [32]byte
}

func signatureMintLog(t *testing.T, to common.Address, tokenId int64, uid [32]byte, block uint64, index uint) ethtypes.Log {
	t.Helper()
	contractABI := chain.ABIFor(types.ContractTypeNftCollection)
	event := contractABI.Events["TokensMintedWithSignature"]
	data, err := event.Inputs.NonIndexed().Pack(mintRequestTuple{
		To: to, RoyaltyBps: big.NewInt(0), Uri: "ipfs://meta", Price: big.NewInt(0),
		ValidityStartTimestamp: big.NewInt(0), ValidityEndTimestamp: big.NewInt(1), Uid: uid,
	})
	require.NoError(t, err)
	return ethtypes.Log{
		Address: testCollection,
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(signerAddr.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(tokenId)),
		},
		Data:        data,
		BlockNumber: block,
		Index:       index,
		TxHash:      common.BigToHash(big.NewInt(int64(block))),
	}
}

func TestComputeStartHeight(t *testing.T) {
	tests := []struct {
		name        string
		lastIndexed int64
		hasState    bool
		startBlock  uint64
		want        uint64
	}{
		{name: "fresh database uses start block", startBlock: 10, want: 10},
		{name: "fresh database from genesis", want: 0},
		{name: "resume after last indexed", lastIndexed: 41, hasState: true, startBlock: 10, want: 42},
		{name: "start block ahead of state skips forward", lastIndexed: 41, hasState: true, startBlock: 100, want: 100},
		{name: "start block equal to resume height", lastIndexed: 41, hasState: true, startBlock: 42, want: 42},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, computeStartHeight(tc.lastIndexed, tc.hasState, tc.startBlock))
		})
	}
}

func TestLoadState(t *testing.T) {
	t.Run("resumes from stored height", func(t *testing.T) {
		i, _, mock, _ := newTestIndexer(t, &fakeSource{}, &fakeFetcher{})
		mock.ExpectQuery(`SELECT \* FROM "indexer_state" WHERE name = \$1`).
			WithArgs(StateName(testCollection), 1).
			WillReturnRows(sqlmock.NewRows([]string{"name", "height"}).AddRow(StateName(testCollection), 41))

		require.NoError(t, i.loadState(context.Background()))
		assert.Equal(t, uint64(42), i.next)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("starts at start block without state", func(t *testing.T) {
		i, _, mock, _ := newTestIndexer(t, &fakeSource{}, &fakeFetcher{})
		mock.ExpectQuery(`SELECT \* FROM "indexer_state"`).
			WillReturnRows(sqlmock.NewRows([]string{"name", "height"}))

		require.NoError(t, i.loadState(context.Background()))
		assert.Equal(t, uint64(10), i.next)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		i, _, mock, _ := newTestIndexer(t, &fakeSource{}, &fakeFetcher{})
		mock.ExpectQuery(`SELECT \* FROM "indexer_state"`).WillReturnError(errors.New("connection refused"))

		err := i.loadState(context.Background())
		var stdErr *types.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, types.ErrTypeDatabase, stdErr.Type)
	})
}

func TestDecode(t *testing.T) {
	i, _, _, _ := newTestIndexer(t, &fakeSource{}, &fakeFetcher{})
	uid := [32]byte{0xab}

	logs := []ethtypes.Log{
		transferLog(alice, bob, 7, 12, 0),
		transferLog(common.Address{}, alice, 2, 11, 2),
		transferLog(alice, common.Address{}, 2, 11, 3),
		transferLog(common.Address{}, alice, 1, 11, 0),
		signatureMintLog(t, alice, 1, uid, 11, 1),
		transferLog(alice, bob, 1, 13, 0),
	}
	removed := transferLog(common.Address{}, alice, 99, 13, 1)
	removed.Removed = true
	logs = append(logs, removed)

	b := newBatch(10, 20)
	require.NoError(t, i.decode(b, logs))

	assert.Equal(t, map[string]mintInfo{
		"1": {owner: bob.Hex(), height: 11, txHash: common.BigToHash(big.NewInt(11)).Hex()},
	}, b.mintMap)
	assert.Equal(t, map[string]ownerInfo{"7": {owner: bob.Hex(), height: 12}}, b.transferMap)
	assert.Equal(t, map[string]int64{"2": 11}, b.burnMap)

	require.Len(t, b.redemptions, 1)
	assert.Equal(t, "0xab00000000000000000000000000000000000000000000000000000000000000", b.redemptions[0].uid)
	assert.Equal(t, []string{"1"}, b.redemptions[0].tokenIds)

	var kinds []mq.EventType
	for _, e := range b.events {
		kinds = append(kinds, e.Type)
	}
	assert.Equal(t, []mq.EventType{mq.EventNftMinted, mq.EventNftBurned, mq.EventNftTransfer, mq.EventNftTransfer}, kinds)
}

func TestPrepare(t *testing.T) {
	fetcher := &fakeFetcher{docs: map[string]string{
		"ipfs://meta/1": `{"name":"Cat","description":"A cat","image":"ipfs://img","price":0.5,"quantity":"1"}`,
	}}
	i, caller, _, _ := newTestIndexer(t, &fakeSource{}, fetcher)
	caller.uris[1] = "ipfs://meta/1"
	caller.uris[2] = "ipfs://meta/2"

	b := newBatch(10, 20)
	b.mintMap["1"] = mintInfo{owner: alice.Hex(), height: 11, txHash: "0x1"}
	b.mintMap["2"] = mintInfo{owner: bob.Hex(), height: 12, txHash: "0x2"}
	require.NoError(t, i.prepare(context.Background(), b))

	require.Len(t, b.nfts, 2)
	assert.Equal(t, "Cat", b.nfts[0].Name)
	assert.Equal(t, "ipfs://img", b.nfts[0].Image)
	assert.Equal(t, "0.5", b.nfts[0].Price)
	assert.JSONEq(t, fetcher.docs["ipfs://meta/1"], string(b.nfts[0].Metadata))

	// metadata failures keep the token with empty metadata
	assert.Equal(t, "2", b.nfts[1].TokenId)
	assert.Equal(t, "ipfs://meta/2", b.nfts[1].Uri)
	assert.Empty(t, b.nfts[1].Name)
	assert.Equal(t, bob.Hex(), b.nfts[1].Owner)

	caller.failUri = true
	assert.Error(t, i.prepare(context.Background(), b))
}

func TestStepWaitsForConfirmations(t *testing.T) {
	source := &fakeSource{head: 11}
	i, _, mock, _ := newTestIndexer(t, source, &fakeFetcher{})
	i.next = 10

	progressed, err := i.step(context.Background())
	require.NoError(t, err)
	assert.False(t, progressed)
	assert.Nil(t, source.query.FromBlock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStep(t *testing.T) {
	uid := [32]byte{0xab}
	source := &fakeSource{
		head: 30,
		logs: []ethtypes.Log{
			transferLog(common.Address{}, alice, 1, 11, 0),
			signatureMintLog(t, alice, 1, uid, 11, 1),
		},
	}
	fetcher := &fakeFetcher{docs: map[string]string{
		"ipfs://meta/1": `{"name":"Cat","description":"A cat","image":"ipfs://img"}`,
	}}
	i, caller, mock, publisher := newTestIndexer(t, source, fetcher)
	caller.uris[1] = "ipfs://meta/1"
	caller.minted = big.NewInt(2)
	i.next = 10

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "nft"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "mint_voucher" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "nft" WHERE collection_addr = \$1`).
		WithArgs(testCollection.Hex()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO "nft_collection"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "indexer_state"`).
		WithArgs(StateName(testCollection), 28).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	progressed, err := i.step(context.Background())
	require.NoError(t, err)
	assert.True(t, progressed)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(10), source.query.FromBlock.Int64())
	assert.Equal(t, int64(28), source.query.ToBlock.Int64())
	assert.Equal(t, []common.Address{testCollection}, source.query.Addresses)
	assert.Equal(t, uint64(29), i.next)
	assert.Equal(t, "Cats", i.name)
	assert.Equal(t, float64(2), promtestutil.ToFloat64(metrics.GetMetrics().Storefront.OnchainMintedCount))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, mq.EventNftMinted, publisher.events[0].Type)
	assert.Equal(t, []string{"1"}, publisher.events[0].TokenIds)
	assert.False(t, publisher.events[0].Timestamp.IsZero())
}

func TestStepRollsBackOnStoreError(t *testing.T) {
	source := &fakeSource{head: 30, logs: []ethtypes.Log{transferLog(alice, bob, 7, 12, 0)}}
	i, _, mock, publisher := newTestIndexer(t, source, &fakeFetcher{})
	i.next = 10

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "nft" SET "owner"`).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	progressed, err := i.step(context.Background())
	assert.Error(t, err)
	assert.False(t, progressed)
	assert.Equal(t, uint64(10), i.next)
	assert.Empty(t, publisher.events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectTransfersOnlyMoveOwner(t *testing.T) {
	i, _, mock, _ := newTestIndexer(t, &fakeSource{}, &fakeFetcher{})
	b := newBatch(20, 30)
	b.transferMap["7"] = ownerInfo{owner: bob.Hex(), height: 25}
	b.transferMap["10"] = ownerInfo{owner: alice.Hex(), height: 26}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "nft" SET "owner"=\$1 WHERE collection_addr = \$2 AND token_id = \$3`).
		WithArgs(alice.Hex(), testCollection.Hex(), "10").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE "nft" SET "owner"=\$1 WHERE collection_addr = \$2 AND token_id = \$3`).
		WithArgs(bob.Hex(), testCollection.Hex(), "7").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "nft"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO "nft_collection"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "indexer_state"`).
		WithArgs(StateName(testCollection), 30).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, i.collect(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())
}
