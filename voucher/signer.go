package voucher

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/types"
)

// ErrMissingPrivateKey is returned when no signing key is configured.
var ErrMissingPrivateKey = errors.New("You're missing PRIVATE_KEY in your .env.local file.")

// Signer produces mint vouchers for a single collection.
type Signer struct {
	key    *ecdsa.PrivateKey
	domain Domain
	cfg    *config.SignerConfig
	now    func() time.Time
}

// Params are the per-request fields of a voucher. Everything else comes from
// the signer configuration.
type Params struct {
	To       common.Address
	Uri      string
	Price    *big.Int
	Quantity *big.Int
	Currency common.Address
}

func NewSigner(cfg *config.Config) (*Signer, error) {
	signerCfg := cfg.GetSignerConfig()
	chainCfg := cfg.GetChainConfig()
	if signerCfg == nil || signerCfg.PrivateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(signerCfg.PrivateKey, "0x"))
	if err != nil {
		return nil, types.NewSigningError("invalid PRIVATE_KEY", err)
	}

	return &Signer{
		key: key,
		domain: Domain{
			Name:              chainCfg.ContractName,
			ChainId:           chainCfg.ChainId,
			VerifyingContract: chainCfg.Collection(),
			ContractType:      chainCfg.ContractType,
		},
		cfg: signerCfg,
		now: time.Now,
	}, nil
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *Signer) Domain() Domain {
	return s.domain
}

// Generate fills in a fresh request for p and signs it.
func (s *Signer) Generate(p Params) (*MintRequest, []byte, error) {
	req := s.NewRequest(p)
	sig, err := s.Sign(req)
	if err != nil {
		return nil, nil, err
	}
	return req, sig, nil
}

// NewRequest builds an unsigned request valid from the epoch until now plus
// the configured voucher validity.
func (s *Signer) NewRequest(p Params) *MintRequest {
	royaltyRecipient := s.Address()
	if s.cfg.RoyaltyRecipient != "" {
		royaltyRecipient = common.HexToAddress(s.cfg.RoyaltyRecipient)
	}
	saleRecipient := s.Address()
	if s.cfg.PrimarySaleRecipient != "" {
		saleRecipient = common.HexToAddress(s.cfg.PrimarySaleRecipient)
	}
	currency := p.Currency
	if currency == (common.Address{}) {
		currency = common.HexToAddress(types.NativeTokenAddress)
	}
	quantity := p.Quantity
	if quantity == nil || quantity.Sign() <= 0 {
		quantity = big.NewInt(1)
	}
	price := p.Price
	if price == nil {
		price = big.NewInt(0)
	}

	end := s.now().Add(s.cfg.VoucherValidity)

	return &MintRequest{
		To:                     p.To,
		RoyaltyRecipient:       royaltyRecipient,
		RoyaltyBps:             big.NewInt(s.cfg.RoyaltyBps),
		PrimarySaleRecipient:   saleRecipient,
		Uri:                    p.Uri,
		Quantity:               quantity,
		Price:                  price,
		Currency:               currency,
		ValidityStartTimestamp: big.NewInt(0),
		ValidityEndTimestamp:   big.NewInt(end.Unix()),
		Uid:                    NewUid(),
	}
}

// Sign returns a 65 byte signature with V in {27, 28}.
func (s *Signer) Sign(req *MintRequest) ([]byte, error) {
	hash, err := s.domain.Hash(req)
	if err != nil {
		return nil, types.NewSigningError("failed to hash mint request", err)
	}
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, types.NewSigningError("failed to sign mint request", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// RecoverSigner returns the address that produced sig over req.
func (d Domain) RecoverSigner(req *MintRequest, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}
	hash, err := d.Hash(req)
	if err != nil {
		return common.Address{}, err
	}

	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(hash, normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether sig over req was produced by expected.
func (d Domain) Verify(req *MintRequest, sig []byte, expected common.Address) (bool, error) {
	recovered, err := d.RecoverSigner(req, sig)
	if err != nil {
		return false, err
	}
	return recovered == expected, nil
}
