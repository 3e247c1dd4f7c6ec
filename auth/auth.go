package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"

	"github.com/JWebSmart/Nft-marketplace/cache"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/types"
)

const (
	maxPendingNonces = 10_000
	issuer           = "nft-storefront"
)

// Challenge is the message a wallet must personal_sign to log in.
type Challenge struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is an issued access token.
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	cfg    *config.AuthConfig
	nonces *cache.TTLCache[common.Address, Challenge]
	now    func() time.Time
}

func NewService(cfg *config.AuthConfig) *Service {
	nonceTTL := cfg.NonceTTL
	if nonceTTL <= 0 {
		nonceTTL = config.DefaultAuthNonceTTL
	}
	return &Service{
		cfg:    cfg,
		nonces: cache.NewTTL[common.Address, Challenge](maxPendingNonces, nonceTTL),
		now:    time.Now,
	}
}

func (s *Service) Enabled() bool {
	return s.cfg.Enabled
}

// ChallengeMessage is the text signed by the wallet.
func ChallengeMessage(address common.Address, nonce string) string {
	return fmt.Sprintf("Sign in to the NFT storefront.\n\nAddress: %s\nNonce: %s", address.Hex(), nonce)
}

// NewChallenge creates a single-use nonce for address, replacing any pending one.
func (s *Service) NewChallenge(address string) (*Challenge, error) {
	if !common.IsHexAddress(address) {
		return nil, types.NewInvalidValueError("address", address, "not a hex address")
	}
	addr := common.HexToAddress(address)

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, types.NewInternalError("failed to generate nonce", err)
	}

	nonceTTL := s.cfg.NonceTTL
	if nonceTTL <= 0 {
		nonceTTL = config.DefaultAuthNonceTTL
	}
	challenge := Challenge{
		Message:   ChallengeMessage(addr, hex.EncodeToString(buf)),
		ExpiresAt: s.now().Add(nonceTTL).UTC(),
	}
	s.nonces.Set(addr, challenge)
	return &challenge, nil
}

// Login consumes the pending challenge for address and checks signature
// against it. The challenge cannot be reused whatever the outcome.
func (s *Service) Login(address, signature string) (*Session, error) {
	if !common.IsHexAddress(address) {
		return nil, types.NewInvalidValueError("address", address, "not a hex address")
	}
	addr := common.HexToAddress(address)

	challenge, ok := s.nonces.Take(addr)
	if !ok || s.now().After(challenge.ExpiresAt) {
		return nil, types.NewUnauthorizedError("no pending login challenge")
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, types.NewInvalidValueError("signature", signature, "not hex encoded")
	}
	signer, err := RecoverPersonalSign(challenge.Message, sig)
	if err != nil {
		return nil, types.NewUnauthorizedError(err.Error())
	}
	if signer != addr {
		return nil, types.NewUnauthorizedError("signature does not match address")
	}

	return s.Issue(addr)
}

// Issue signs a session token for address.
func (s *Service) Issue(address common.Address) (*Session, error) {
	tokenTTL := s.cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = config.DefaultAuthTokenTTL
	}
	now := s.now()
	expiresAt := now.Add(tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   address.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(s.cfg.JwtSecret))
	if err != nil {
		return nil, types.NewInternalError("failed to sign session token", err)
	}
	return &Session{Token: signed, Address: address.Hex(), ExpiresAt: expiresAt.UTC()}, nil
}

// Verify parses token and returns the address it was issued to.
func (s *Service) Verify(token string) (common.Address, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return common.Address{}, types.NewUnauthorizedError(fmt.Sprintf("invalid token: %v", err))
	}
	if !common.IsHexAddress(claims.Subject) {
		return common.Address{}, types.NewUnauthorizedError("invalid token subject")
	}
	return common.HexToAddress(claims.Subject), nil
}

// RecoverPersonalSign returns the signer of an eth_sign / personal_sign message.
func RecoverPersonalSign(message string, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.New("invalid signature length")
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// SignPersonal produces a personal_sign signature with V in {27, 28}.
func SignPersonal(message string, sign func(hash []byte) ([]byte, error)) (string, error) {
	sig, err := sign(accounts.TextHash([]byte(message)))
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
