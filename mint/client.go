package mint

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/mod/semver"

	"github.com/JWebSmart/Nft-marketplace/auth"
	"github.com/JWebSmart/Nft-marketplace/chain"
	"github.com/JWebSmart/Nft-marketplace/util"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

const (
	SuccessTitle   = "Mint Success"
	SuccessMessage = "Successfully minted NFT with signature"
	FailureTitle   = "Mint Failed"
)

// Notification is what the minter shows the user after a mint attempt.
type Notification struct {
	Title   string
	Message string
}

func (n Notification) String() string {
	return n.Title + ": " + n.Message
}

func Success() Notification {
	return Notification{Title: SuccessTitle, Message: SuccessMessage}
}

func Failure(err error) Notification {
	return Notification{Title: FailureTitle, Message: err.Error()}
}

type Redeemer interface {
	Redeem(ctx context.Context, req *voucher.MintRequest, sig []byte) (*chain.Receipt, error)
}

// Client drives the minting flow against a storefront server: upload the
// image, request a voucher, then redeem it on chain.
type Client struct {
	server   string
	http     *fiber.Client
	timeout  time.Duration
	redeemer Redeemer
	token    string
	logger   *slog.Logger
}

func NewClient(server string, timeout time.Duration, redeemer Redeemer, logger *slog.Logger) *Client {
	return &Client{
		server:   strings.TrimRight(server, "/"),
		http:     fiber.AcquireClient(),
		timeout:  timeout,
		redeemer: redeemer,
		logger:   logger.With("component", "minter"),
	}
}

// SetToken sets the bearer token sent with upload and voucher requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) headers() map[string]string {
	if c.token == "" {
		return nil
	}
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + c.token}
}

type errorResponse struct {
	Error string `json:"error"`
}

// serverError extracts the {error} message from a failed response.
func serverError(code int, body []byte) error {
	var res errorResponse
	if err := json.Unmarshal(body, &res); err == nil && res.Error != "" {
		return errors.New(res.Error)
	}
	return fmt.Errorf("server responded with status %d", code)
}

type statusResponse struct {
	Version string `json:"version"`
}

// CheckServer fails when the server reports a different major version than
// clientVersion. Non-semver versions, such as dev builds, are not compared.
func (c *Client) CheckServer(ctx context.Context, clientVersion string) error {
	body, err := util.Get(ctx, c.http, c.timeout, c.server+"/api/status", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	var status statusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("invalid status response: %w", err)
	}

	server, client := canonicalVersion(status.Version), canonicalVersion(clientVersion)
	if server == "" || client == "" {
		return nil
	}
	if semver.Major(server) != semver.Major(client) {
		return fmt.Errorf("server version %s is incompatible with client version %s", status.Version, clientVersion)
	}
	return nil
}

func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

type uploadResponse struct {
	Uri string `json:"uri"`
	Url string `json:"url"`
}

// UploadImage stores the form image through the server and returns its URI.
func (c *Client) UploadImage(ctx context.Context, form Form) (string, error) {
	name := filepath.Base(form.ImageName)
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	body, err := util.PostFile(ctx, c.http, c.timeout, c.server+"/api/upload", &fiber.FormFile{
		Fieldname: "file",
		Name:      name,
		Content:   form.Image,
	}, c.headers())
	if err != nil {
		var statusErr *util.HTTPStatusError
		if errors.As(err, &statusErr) {
			return "", serverError(statusErr.Code, statusErr.Body)
		}
		return "", err
	}

	var res uploadResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("invalid upload response: %w", err)
	}
	if res.Uri == "" {
		return "", errors.New("upload response has no uri")
	}
	return res.Uri, nil
}

type voucherResponse struct {
	SignedPayload *voucher.SignedPayload `json:"signedPayload"`
}

// RequestVoucher asks the server to sign a mint request.
func (c *Client) RequestVoucher(ctx context.Context, req Request) (*voucher.SignedPayload, error) {
	code, body, err := util.PostJSON(ctx, c.http, c.timeout, c.server+"/api/server", req, c.headers())
	if err != nil {
		return nil, err
	}
	if code != fiber.StatusOK {
		return nil, serverError(code, body)
	}

	var res voucherResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("invalid voucher response: %w", err)
	}
	if res.SignedPayload == nil {
		return nil, errors.New("voucher response has no signedPayload")
	}
	return res.SignedPayload, nil
}

// Mint runs the whole flow for author and returns the redeem receipt.
func (c *Client) Mint(ctx context.Context, form Form, author common.Address) (*chain.Receipt, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	imageUri, err := c.UploadImage(ctx, form)
	if err != nil {
		return nil, err
	}
	c.logger.Info("uploaded image", slog.String("uri", imageUri))

	quantity := form.Quantity
	if quantity == "" {
		quantity = "1"
	}
	signed, err := c.RequestVoucher(ctx, Request{
		AuthorAddress: author.Hex(),
		Name:          form.Name,
		Description:   form.Description,
		Price:         form.Price,
		Quantity:      quantity,
		ImagePath:     imageUri,
	})
	if err != nil {
		return nil, err
	}

	req, sig, err := signed.Decode()
	if err != nil {
		return nil, err
	}
	receipt, err := c.redeemer.Redeem(ctx, req, sig)
	if err != nil {
		return nil, err
	}
	c.logger.Info("minted with signature",
		slog.String("tx_hash", receipt.TxHash.Hex()),
		slog.Int("tokens", len(receipt.TokenIds)))
	return receipt, nil
}

// Login signs the server's challenge with key and keeps the session token.
func (c *Client) Login(ctx context.Context, key *ecdsa.PrivateKey) error {
	address := crypto.PubkeyToAddress(key.PublicKey)
	body, err := util.Get(ctx, c.http, c.timeout, c.server+"/api/auth/nonce/"+address.Hex(), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch login challenge: %w", err)
	}
	var challenge auth.Challenge
	if err := json.Unmarshal(body, &challenge); err != nil {
		return fmt.Errorf("invalid login challenge: %w", err)
	}

	signature, err := auth.SignPersonal(challenge.Message, func(hash []byte) ([]byte, error) {
		return crypto.Sign(hash, key)
	})
	if err != nil {
		return err
	}

	code, body, err := util.PostJSON(ctx, c.http, c.timeout, c.server+"/api/auth/login", map[string]string{
		"address":   address.Hex(),
		"signature": signature,
	}, nil)
	if err != nil {
		return err
	}
	if code != fiber.StatusOK {
		return serverError(code, body)
	}
	var session auth.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return fmt.Errorf("invalid login response: %w", err)
	}
	c.SetToken(session.Token)
	return nil
}
