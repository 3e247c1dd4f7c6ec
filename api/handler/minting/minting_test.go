package minting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handlercommon "github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/auth"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/mint"
	"github.com/JWebSmart/Nft-marketplace/storage"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

var (
	author    = common.HexToAddress("0x000000000000000000000000000000000000bEEF")
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

type fakeIssuer struct {
	err      error
	received *mint.Request
	result   *mint.VerifyResult
}

func (f *fakeIssuer) Issue(ctx context.Context, req mint.Request) (*voucher.SignedPayload, error) {
	f.received = &req
	if f.err != nil {
		return nil, f.err
	}
	return &voucher.SignedPayload{
		Payload:   voucher.Payload{To: req.AuthorAddress, Uri: "ipfs://meta", Uid: "0x01"},
		Signature: "0xsig",
	}, nil
}

func (f *fakeIssuer) Verify(signed *voucher.SignedPayload) (*mint.VerifyResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeUploader struct {
	err  error
	name string
	data []byte
}

func (f *fakeUploader) Upload(ctx context.Context, kind, name string, data []byte) (string, error) {
	f.name, f.data = name, data
	if f.err != nil {
		return "", f.err
	}
	return "ipfs://bafyimage", nil
}

func (f *fakeUploader) Resolve(uri string) string {
	return storage.ResolveWith("https://gateway.example/ipfs/", uri)
}

func setup(authEnabled bool) (*fiber.App, *fakeIssuer, *fakeUploader, *auth.Service) {
	cfg := &config.Config{}
	cfg.SetStorageConfig(&config.StorageConfig{MaxUploadBytes: 1024})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	issuer := &fakeIssuer{}
	uploader := &fakeUploader{}
	authService := auth.NewService(&config.AuthConfig{
		Enabled:   authEnabled,
		JwtSecret: "0123456789abcdef0123456789abcdef",
		TokenTTL:  time.Hour,
	})

	app := fiber.New()
	h := NewMintHandler(handlercommon.NewBaseHandler(nil, cfg, logger), issuer, uploader, authService)
	h.Register(app.Group("/api"))
	return app, issuer, uploader, authService
}

func requestBody() string {
	return `{"authorAddress":"` + author.Hex() + `","name":"Cat","description":"A cat","price":0.5,"quantity":"1","imagePath":"ipfs://bafyimage"}`
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestPostServer(t *testing.T) {
	t.Run("success without content type", func(t *testing.T) {
		app, issuer, _, _ := setup(false)
		code, body := do(t, app, httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody())))

		require.Equal(t, http.StatusOK, code)
		require.Contains(t, body, "signedPayload")
		signed := body["signedPayload"].(map[string]any)
		assert.Equal(t, "0xsig", signed["signature"])
		require.NotNil(t, issuer.received)
		assert.Equal(t, "0.5", issuer.received.Price.String())
		assert.Equal(t, "Cat", issuer.received.Name)
	})

	t.Run("json string body", func(t *testing.T) {
		app, issuer, _, _ := setup(false)
		wrapped, err := json.Marshal(requestBody())
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/server", bytes.NewReader(wrapped))
		req.Header.Set("Content-Type", "text/plain")

		code, _ := do(t, app, req)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "A cat", issuer.received.Description)
	})

	t.Run("malformed body", func(t *testing.T) {
		app, _, _, _ := setup(false)
		code, body := do(t, app, httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader("{")))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Contains(t, body["error"], "Server error invalid request body")
	})

	t.Run("validation error", func(t *testing.T) {
		app, issuer, _, _ := setup(false)
		issuer.err = mint.ValidationErrors{{Field: "name", Message: mint.MsgInvalidName}}
		code, body := do(t, app, httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody())))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Server error "+mint.MsgInvalidName, body["error"])
	})

	t.Run("missing private key", func(t *testing.T) {
		app, issuer, _, _ := setup(false)
		issuer.err = voucher.ErrMissingPrivateKey
		code, body := do(t, app, httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody())))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Server error You're missing PRIVATE_KEY in your .env.local file.", body["error"])
	})

	t.Run("other failure", func(t *testing.T) {
		app, issuer, _, _ := setup(false)
		issuer.err = errors.New("ipfs unreachable")
		code, body := do(t, app, httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody())))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Server error ipfs unreachable", body["error"])
	})
}

func TestPostServerWithAuth(t *testing.T) {
	app, _, _, authService := setup(true)

	code, _ := do(t, app, httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody())))
	assert.Equal(t, http.StatusUnauthorized, code)

	other, err := authService.Issue(common.HexToAddress("0x0000000000000000000000000000000000000B0B"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody()))
	req.Header.Set("Authorization", "Bearer "+other.Token)
	code, body := do(t, app, req)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, body["error"], "authorAddress")

	session, err := authService.Issue(author)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/server", strings.NewReader(requestBody()))
	req.Header.Set("Authorization", "Bearer "+session.Token)
	code, _ = do(t, app, req)
	assert.Equal(t, http.StatusOK, code)
}

func TestPostVerify(t *testing.T) {
	app, issuer, _, _ := setup(false)
	issuer.result = &mint.VerifyResult{Valid: true, Signer: author.Hex()}

	code, body := do(t, app, httptest.NewRequest(http.MethodPost, "/api/verify",
		strings.NewReader(`{"signedPayload":{"payload":{"to":"`+author.Hex()+`"},"signature":"0x01"}}`)))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, author.Hex(), body["signer"])

	code, body = do(t, app, httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "signedPayload is required", body["error"])
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestPostUpload(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		app, _, uploader, _ := setup(false)
		code, body := do(t, app, multipartRequest(t, "file", "cat.png", pngHeader))
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ipfs://bafyimage", body["uri"])
		assert.Equal(t, "https://gateway.example/ipfs/bafyimage", body["url"])
		assert.Equal(t, "cat.png", uploader.name)
		assert.Equal(t, pngHeader, uploader.data)
	})

	t.Run("not an image", func(t *testing.T) {
		app, _, _, _ := setup(false)
		code, body := do(t, app, multipartRequest(t, "file", "cat.txt", []byte("meow")))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, mint.MsgInvalidImage, body["error"])
	})

	t.Run("missing file", func(t *testing.T) {
		app, _, _, _ := setup(false)
		code, body := do(t, app, multipartRequest(t, "other", "cat.png", pngHeader))
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, mint.MsgInvalidImage, body["error"])
	})

	t.Run("too large", func(t *testing.T) {
		app, _, _, _ := setup(false)
		large := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)
		code, _ := do(t, app, multipartRequest(t, "file", "cat.png", large))
		assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	})

	t.Run("storage failure", func(t *testing.T) {
		app, _, uploader, _ := setup(false)
		uploader.err = errors.New("connection refused")
		code, body := do(t, app, multipartRequest(t, "file", "cat.png", pngHeader))
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "Server error connection refused", body["error"])
	})
}

func TestDecodeBody(t *testing.T) {
	var req mint.Request
	require.NoError(t, decodeBody([]byte(`  {"name":"Cat","quantity":2}  `), &req))
	assert.Equal(t, "Cat", req.Name)
	assert.Equal(t, "2", req.Quantity.String())

	assert.Error(t, decodeBody([]byte(`"{broken"`), &req))
}
