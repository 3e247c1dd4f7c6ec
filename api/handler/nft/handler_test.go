package nft

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/orm/testutil"
	"github.com/JWebSmart/Nft-marketplace/types"
)

var (
	collectionAddr = ethcommon.HexToAddress("0x00000000000000000000000000000000000000c1").Hex()
	ownerAddr      = ethcommon.HexToAddress("0x0000000000000000000000000000000000000b0b").Hex()
	nftColumns     = []string{"collection_addr", "token_id", "height", "owner", "uri", "name", "image", "price", "quantity"}
)

func setup(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	db, mock, err := testutil.NewMockDB()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.SetChainConfig(&config.ChainConfig{CollectionAddress: collectionAddr, NativeSymbol: "ETH"})
	cfg.SetStorageConfig(&config.StorageConfig{GatewayUrl: "https://gateway.example/ipfs/"})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewNftHandler(common.NewBaseHandler(db, cfg, logger))

	app := fiber.New()
	app.Get("/collection", h.GetCollection)
	app.Get("/nfts", h.GetNfts)
	app.Get("/nfts/by_owner/:owner", h.GetNftsByOwner)
	app.Get("/nfts/:token_id", h.GetNft)
	return app, mock
}

func get(t *testing.T, app *fiber.App, path string, v any) int {
	t.Helper()
	req, _ := http.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestGetCollection(t *testing.T) {
	t.Run("indexed", func(t *testing.T) {
		app, mock := setup(t)
		mock.ExpectQuery(`SELECT \* FROM "nft_collection" WHERE addr = \$1`).
			WithArgs(collectionAddr, 1).
			WillReturnRows(sqlmock.NewRows([]string{"addr", "height", "name", "symbol", "nft_count"}).
				AddRow(collectionAddr, 42, "Cats", "CAT", 3))

		var body CollectionResponse
		require.Equal(t, http.StatusOK, get(t, app, "/collection", &body))
		assert.Equal(t, Collection{Address: collectionAddr, Name: "Cats", Symbol: "CAT", NftCount: 3, Height: 42}, body.Collection)

		// served from the local cache
		require.Equal(t, http.StatusOK, get(t, app, "/collection", &body))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not indexed yet", func(t *testing.T) {
		app, mock := setup(t)
		mock.ExpectQuery(`SELECT \* FROM "nft_collection"`).
			WillReturnRows(sqlmock.NewRows([]string{"addr"}))

		var body CollectionResponse
		require.Equal(t, http.StatusOK, get(t, app, "/collection", &body))
		assert.Equal(t, collectionAddr, body.Collection.Address)
		assert.Zero(t, body.Collection.NftCount)
	})

	t.Run("database error", func(t *testing.T) {
		app, mock := setup(t)
		mock.ExpectQuery(`SELECT \* FROM "nft_collection"`).WillReturnError(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, get(t, app, "/collection", nil))
	})
}

func TestGetNfts(t *testing.T) {
	app, mock := setup(t)
	mock.ExpectQuery(`SELECT \* FROM "nft" WHERE collection_addr = \$1 ORDER BY height DESC, token_id::numeric DESC LIMIT \$2`).
		WithArgs(collectionAddr, 2).
		WillReturnRows(sqlmock.NewRows(nftColumns).
			AddRow(collectionAddr, "2", 11, ownerAddr, "ipfs://m2", "Dog", "ipfs://img2", "0.5", 1).
			AddRow(collectionAddr, "1", 10, ownerAddr, "ipfs://m1", "Cat", "https://cdn.example/cat.png", "", 0))
	mock.ExpectQuery(`FROM pg_class`).WithArgs("nft").
		WillReturnRows(sqlmock.NewRows([]string{"reltuples"}).AddRow(7))

	var body NftsResponse
	require.Equal(t, http.StatusOK, get(t, app, "/nfts?pagination.limit=2", &body))
	require.Len(t, body.Nfts, 2)

	assert.Equal(t, "2", body.Nfts[0].TokenId)
	assert.Equal(t, "https://gateway.example/ipfs/img2", body.Nfts[0].Image)
	assert.Equal(t, "ETH", body.Nfts[0].Currency)
	assert.Equal(t, "https://cdn.example/cat.png", body.Nfts[1].Image)
	assert.Empty(t, body.Nfts[1].Currency)

	assert.Equal(t, "7", body.Pagination.Total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNftsByOwner(t *testing.T) {
	t.Run("lowercase owner is normalized", func(t *testing.T) {
		app, mock := setup(t)
		mock.ExpectQuery(`SELECT \* FROM "nft" WHERE collection_addr = \$1 AND owner = \$2`).
			WithArgs(collectionAddr, ownerAddr, 100).
			WillReturnRows(sqlmock.NewRows(nftColumns).
				AddRow(collectionAddr, "1", 10, ownerAddr, "ipfs://m1", "Cat", "", "", 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "nft" WHERE collection_addr = \$1 AND owner = \$2`).
			WithArgs(collectionAddr, ownerAddr).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		var body NftsResponse
		require.Equal(t, http.StatusOK, get(t, app, "/nfts/by_owner/0x0000000000000000000000000000000000000b0b", &body))
		require.Len(t, body.Nfts, 1)
		assert.Equal(t, ownerAddr, body.Nfts[0].Owner)
		assert.Equal(t, "1", body.Pagination.Total)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid owner", func(t *testing.T) {
		app, _ := setup(t)
		assert.Equal(t, http.StatusBadRequest, get(t, app, "/nfts/by_owner/nobody", nil))
	})
}

func TestGetNft(t *testing.T) {
	t.Run("hex token id", func(t *testing.T) {
		app, mock := setup(t)
		mock.ExpectQuery(`SELECT \* FROM "nft" WHERE collection_addr = \$1 AND token_id = \$2`).
			WithArgs(collectionAddr, "16", 1).
			WillReturnRows(sqlmock.NewRows(nftColumns).
				AddRow(collectionAddr, "16", 10, ownerAddr, "ipfs://m16", "Cat", "ipfs://img", "", 0))

		var body NftResponse
		require.Equal(t, http.StatusOK, get(t, app, "/nfts/0x10", &body))
		assert.Equal(t, "16", body.Nft.TokenId)
		assert.Equal(t, "https://gateway.example/ipfs/img", body.Nft.Image)
	})

	t.Run("not found", func(t *testing.T) {
		app, mock := setup(t)
		mock.ExpectQuery(`SELECT \* FROM "nft"`).WillReturnRows(sqlmock.NewRows(nftColumns))
		assert.Equal(t, http.StatusNotFound, get(t, app, "/nfts/99", nil))
	})

	t.Run("invalid token id", func(t *testing.T) {
		app, _ := setup(t)
		assert.Equal(t, http.StatusBadRequest, get(t, app, "/nfts/abc", nil))
	})
}

func TestToNftResponse(t *testing.T) {
	nft := types.CollectedNft{
		CollectionAddr: collectionAddr,
		TokenId:        "3",
		Image:          "ipfs://bafy/cat.png",
		Price:          "1.25",
		Metadata:       json.RawMessage(`{"name":"Cat"}`),
	}
	res := ToNftResponse(nft, "https://gateway.example/ipfs/", "ETH")
	assert.Equal(t, "https://gateway.example/ipfs/bafy/cat.png", res.Image)
	assert.Equal(t, "ETH", res.Currency)
	assert.JSONEq(t, `{"name":"Cat"}`, string(res.Metadata))

	assert.Empty(t, BatchToResponseNfts(nil, "", ""))
}
