package mint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JWebSmart/Nft-marketplace/chain"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/mq"
	"github.com/JWebSmart/Nft-marketplace/orm/testutil"
	"github.com/JWebSmart/Nft-marketplace/types"
	"github.com/JWebSmart/Nft-marketplace/util"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	author     = common.HexToAddress("0x000000000000000000000000000000000000bEEF")
)

func testConfig(privateKey string) *config.Config {
	cfg := &config.Config{}
	cfg.SetChainConfig(&config.ChainConfig{
		ChainId:           80001,
		CollectionAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ContractType:      types.ContractTypeNftCollection,
		ContractName:      config.DefaultContractName,
	})
	cfg.SetSignerConfig(&config.SignerConfig{
		PrivateKey:      privateKey,
		VoucherValidity: time.Hour,
	})
	cfg.SetMaxConcurrentRequests(4)
	return cfg
}

func validRequest() Request {
	return Request{
		AuthorAddress: author.Hex(),
		Name:          "Cat",
		Description:   "A cat",
		Price:         "0.5",
		Quantity:      "1",
		ImagePath:     "ipfs://bafkreicat",
	}
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	out := make([]string, len(verrs))
	for i, e := range verrs {
		out[i] = e.Message
	}
	return out
}

func TestFormValidate(t *testing.T) {
	valid := Form{Image: pngHeader, Name: "Cat", Description: "A cat", Quantity: "2", Price: "0.1"}
	require.NoError(t, valid.Validate())

	assert.Equal(t, []string{
		MsgInvalidImage, MsgInvalidName, MsgInvalidDescription, MsgInvalidQuantity, MsgInvalidPrice,
	}, messages(t, Form{Quantity: "0"}.Validate()))

	tests := []struct {
		name   string
		mutate func(*Form)
		want   string
	}{
		{"svg image", func(f *Form) { f.Image = []byte("<svg></svg>") }, MsgInvalidImage},
		{"blank name", func(f *Form) { f.Name = "   " }, MsgInvalidName},
		{"blank description", func(f *Form) { f.Description = "" }, MsgInvalidDescription},
		{"zero quantity", func(f *Form) { f.Quantity = "0" }, MsgInvalidQuantity},
		{"fractional quantity", func(f *Form) { f.Quantity = "1.5" }, MsgInvalidQuantity},
		{"negative quantity", func(f *Form) { f.Quantity = "-3" }, MsgInvalidQuantity},
		{"default price", func(f *Form) { f.Price = "" }, MsgInvalidPrice},
		{"zero price", func(f *Form) { f.Price = "0" }, MsgInvalidPrice},
		{"text price", func(f *Form) { f.Price = "free" }, MsgInvalidPrice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := valid
			tc.mutate(&f)
			assert.Equal(t, []string{tc.want}, messages(t, f.Validate()))
		})
	}
}

func TestParseQuantityDefault(t *testing.T) {
	q, ok := ParseQuantity("")
	require.True(t, ok)
	assert.Equal(t, int64(1), q.Int64())

	q, ok = ParseQuantity("7")
	require.True(t, ok)
	assert.Equal(t, int64(7), q.Int64())
}

func TestRequestDecodesExponentNumbers(t *testing.T) {
	var r Request
	body := `{"authorAddress":"` + author.Hex() + `","name":"Cat","description":"A cat","price":1e-7,"quantity":1e2,"imagePath":"ipfs://bafkreicat"}`
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	require.NoError(t, r.Validate())
	assert.Equal(t, types.FlexNumber("0.0000001"), r.Price)

	q, ok := ParseQuantity(r.Quantity)
	require.True(t, ok)
	assert.Equal(t, int64(100), q.Int64())

	price, err := voucher.ParsePrice(r.Price.String(), voucher.NativeDecimals)
	require.NoError(t, err)
	assert.Equal(t, "100000000000", price.String())
}

func TestParseQuantityBounds(t *testing.T) {
	for _, q := range []types.FlexNumber{"100000000000000000000", "10001", "0", "-1", "1.5"} {
		_, ok := ParseQuantity(q)
		assert.False(t, ok, q)
	}
	q, ok := ParseQuantity("10000")
	require.True(t, ok)
	assert.Equal(t, int64(types.MaxMintQuantity), q.Int64())

	r := validRequest()
	r.Quantity = "100000000000000000000"
	assert.Equal(t, []string{MsgInvalidQuantity}, messages(t, r.Validate()))
}

func TestIssueRespectsConfiguredQuantityCap(t *testing.T) {
	db, _, err := testutil.NewMockDB()
	require.NoError(t, err)
	cfg := testConfig(testKey)
	cfg.GetSignerConfig().MaxMintQuantity = 5
	uploader := &fakeUploader{uri: "ipfs://bafymeta"}
	issuer := NewIssuer(cfg, db, uploader, nil, testLogger)

	r := validRequest()
	r.Quantity = "6"
	_, err = issuer.Issue(context.Background(), r)
	assert.Equal(t, []string{MsgInvalidQuantity}, messages(t, err))
	assert.Empty(t, uploader.metadata)
}

func TestRequestValidate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	r := validRequest()
	r.ImagePath = "/tmp/cat.png"
	assert.Equal(t, []string{MsgInvalidImage}, messages(t, r.Validate()))

	r = validRequest()
	r.AuthorAddress = "0x12"
	assert.Len(t, messages(t, r.Validate()), 1)
}

type fakeUploader struct {
	uri      string
	err      error
	metadata []types.NftMetadata
}

func (f *fakeUploader) UploadMetadata(ctx context.Context, md types.NftMetadata) (string, error) {
	f.metadata = append(f.metadata, md)
	return f.uri, f.err
}

type fakePublisher struct {
	events []mq.Event
}

func (f *fakePublisher) Publish(event mq.Event) error {
	f.events = append(f.events, event)
	return errors.New("broker down")
}

func TestIssue(t *testing.T) {
	db, mock, err := testutil.NewMockDB()
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "mint_voucher"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	uploader := &fakeUploader{uri: "ipfs://bafymeta"}
	publisher := &fakePublisher{}
	issuer := NewIssuer(testConfig(testKey), db, uploader, publisher, testLogger)

	signed, err := issuer.Issue(context.Background(), validRequest())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, author.Hex(), signed.Payload.To)
	assert.Equal(t, "ipfs://bafymeta", signed.Payload.Uri)
	assert.Equal(t, "0.5", signed.Payload.Price)
	assert.Equal(t, types.NativeTokenAddress, signed.Payload.CurrencyAddress)
	assert.Equal(t, "Cat", signed.Payload.Metadata.Name)
	assert.Equal(t, time.Unix(0, 0).UTC(), signed.Payload.MintStartTime)

	require.Len(t, uploader.metadata, 1)
	assert.Equal(t, "ipfs://bafkreicat", uploader.metadata[0].Image)
	assert.Equal(t, types.FlexNumber("0.5"), uploader.metadata[0].Price)

	// publish failures do not fail the request
	require.Len(t, publisher.events, 1)
	assert.Equal(t, mq.EventVoucherIssued, publisher.events[0].Type)
	assert.Equal(t, signed.Payload.Uid, publisher.events[0].Uid)

	result, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	signer, err := issuer.Signer()
	require.NoError(t, err)
	assert.Equal(t, signer.Address().Hex(), result.Signer)
}

func TestIssueMissingPrivateKey(t *testing.T) {
	db, _, err := testutil.NewMockDB()
	require.NoError(t, err)
	uploader := &fakeUploader{uri: "ipfs://bafymeta"}
	issuer := NewIssuer(testConfig(""), db, uploader, nil, testLogger)

	_, err = issuer.Issue(context.Background(), validRequest())
	assert.ErrorIs(t, err, voucher.ErrMissingPrivateKey)
	assert.Empty(t, uploader.metadata)
}

func TestIssueValidationFailsFirst(t *testing.T) {
	db, _, err := testutil.NewMockDB()
	require.NoError(t, err)
	issuer := NewIssuer(testConfig(""), db, &fakeUploader{}, nil, testLogger)

	r := validRequest()
	r.Price = "0"
	_, err = issuer.Issue(context.Background(), r)
	assert.True(t, IsValidation(err))
}

func TestIssueUploadError(t *testing.T) {
	db, _, err := testutil.NewMockDB()
	require.NoError(t, err)
	issuer := NewIssuer(testConfig(testKey), db, &fakeUploader{err: errors.New("ipfs down")}, nil, testLogger)

	_, err = issuer.Issue(context.Background(), validRequest())
	assert.EqualError(t, err, "ipfs down")
}

func TestVerifyRejectsForeignSigner(t *testing.T) {
	db, _, err := testutil.NewMockDB()
	require.NoError(t, err)
	issuer := NewIssuer(testConfig(testKey), db, &fakeUploader{}, nil, testLogger)

	other, err := voucher.NewSigner(testConfig("8a1f9a8f95be41cd7ccb6168179afb4504aefe388d1e14474d32c45c72ce7b7a"))
	require.NoError(t, err)
	req, sig, err := other.Generate(voucher.Params{To: author, Uri: "ipfs://x", Price: big.NewInt(1)})
	require.NoError(t, err)

	result, err := issuer.Verify(voucher.NewSignedPayload(req, sig, types.NftMetadata{}))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, other.Address().Hex(), result.Signer)
}

type fakeRedeemer struct {
	req *voucher.MintRequest
	sig []byte
}

func (f *fakeRedeemer) Redeem(ctx context.Context, req *voucher.MintRequest, sig []byte) (*chain.Receipt, error) {
	f.req, f.sig = req, sig
	return &chain.Receipt{TxHash: common.HexToHash("0x01"), TokenIds: []*big.Int{big.NewInt(0)}}, nil
}

func TestClientMint(t *testing.T) {
	cfg := testConfig(testKey)
	util.InitLimiter(cfg)
	signer, err := voucher.NewSigner(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/upload":
			_, _ = w.Write([]byte(`{"uri":"ipfs://bafkreicat","url":"https://ipfs.io/ipfs/bafkreicat"}`))
		case "/api/server":
			var req Request
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImagePath != "ipfs://bafkreicat" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"bad request"}`))
				return
			}
			price, _ := voucher.ParsePrice(req.Price.String(), voucher.NativeDecimals)
			mintReq, sig, _ := signer.Generate(voucher.Params{To: common.HexToAddress(req.AuthorAddress), Uri: "ipfs://bafymeta", Price: price})
			_ = json.NewEncoder(w).Encode(map[string]any{"signedPayload": voucher.NewSignedPayload(mintReq, sig, req.Metadata())})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	redeemer := &fakeRedeemer{}
	client := NewClient(srv.URL+"/", time.Second, redeemer, testLogger)

	receipt, err := client.Mint(context.Background(), Form{
		Image: pngHeader, ImageName: "cat.png", Name: "Cat", Description: "A cat", Price: "0.5",
	}, author)
	require.NoError(t, err)
	assert.Len(t, receipt.TokenIds, 1)

	require.NotNil(t, redeemer.req)
	assert.Equal(t, author, redeemer.req.To)
	assert.Equal(t, "500000000000000000", redeemer.req.Price.String())
	ok, err := signer.Domain().Verify(redeemer.req, redeemer.sig, signer.Address())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClientMintServerError(t *testing.T) {
	util.InitLimiter(testConfig(""))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/upload" {
			_, _ = w.Write([]byte(`{"uri":"ipfs://bafkreicat"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"You're missing PRIVATE_KEY in your .env.local file."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, &fakeRedeemer{}, testLogger)
	_, err := client.Mint(context.Background(), Form{
		Image: pngHeader, Name: "Cat", Description: "A cat", Price: "1",
	}, author)
	require.Error(t, err)
	assert.Equal(t, "Mint Failed: You're missing PRIVATE_KEY in your .env.local file.", Failure(err).String())
	assert.Equal(t, "Mint Success: Successfully minted NFT with signature", Success().String())
}

func TestCheckServer(t *testing.T) {
	util.InitLimiter(testConfig(""))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"v1.4.0"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil, testLogger)
	assert.NoError(t, client.CheckServer(context.Background(), "1.2.3"))
	assert.NoError(t, client.CheckServer(context.Background(), "dev"))
	assert.Error(t, client.CheckServer(context.Background(), "v2.0.0"))
}
