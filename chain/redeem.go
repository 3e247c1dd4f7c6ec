package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/types"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

// Backend used by the redeemer: contract calls plus receipt polling.
type TxBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Receipt summarises a mined redeem transaction.
type Receipt struct {
	TxHash   common.Hash
	Height   uint64
	TokenIds []*big.Int
}

// Redeemer submits signed mint requests on behalf of a wallet key.
type Redeemer struct {
	collection *Collection
	backend    TxBackend
	key        *ecdsa.PrivateKey
	chainId    *big.Int
	logger     *slog.Logger
}

func NewRedeemer(collection *Collection, backend TxBackend, key *ecdsa.PrivateKey, chainId int64, logger *slog.Logger) *Redeemer {
	return &Redeemer{
		collection: collection,
		backend:    backend,
		key:        key,
		chainId:    big.NewInt(chainId),
		logger:     logger.With("component", "redeemer"),
	}
}

// contractRequest converts req into the tuple the collection ABI expects.
func (r *Redeemer) contractRequest(req *voucher.MintRequest) any {
	if r.collection.Kind() == types.ContractTypeSignatureDrop {
		return signatureDropRequest{
			To:                     req.To,
			RoyaltyRecipient:       req.RoyaltyRecipient,
			RoyaltyBps:             req.RoyaltyBps,
			PrimarySaleRecipient:   req.PrimarySaleRecipient,
			Uri:                    req.Uri,
			Quantity:               req.Quantity,
			PricePerToken:          req.Price,
			Currency:               req.Currency,
			ValidityStartTimestamp: req.ValidityStartTimestamp,
			ValidityEndTimestamp:   req.ValidityEndTimestamp,
			Uid:                    req.Uid,
		}
	}
	return tokenERC721Request{
		To:                     req.To,
		RoyaltyRecipient:       req.RoyaltyRecipient,
		RoyaltyBps:             req.RoyaltyBps,
		PrimarySaleRecipient:   req.PrimarySaleRecipient,
		Uri:                    req.Uri,
		Price:                  req.Price,
		Currency:               req.Currency,
		ValidityStartTimestamp: req.ValidityStartTimestamp,
		ValidityEndTimestamp:   req.ValidityEndTimestamp,
		Uid:                    req.Uid,
	}
}

// Submit sends mintWithSignature and returns the pending transaction.
func (r *Redeemer) Submit(ctx context.Context, req *voucher.MintRequest, sig []byte) (*ethtypes.Transaction, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(r.key, r.chainId)
	if err != nil {
		return nil, types.NewSigningError("failed to build transactor", err)
	}
	opts.Context = ctx
	opts.Value = req.TotalValue(r.collection.Kind())

	contract := bind.NewBoundContract(r.collection.Address(), r.collection.ABI(), r.backend, r.backend, r.backend)
	tx, err := contract.Transact(opts, "mintWithSignature", r.contractRequest(req), sig)
	if err != nil {
		metrics.GetMetrics().Chain.TransactionsSent.WithLabelValues("mintWithSignature", "error").Inc()
		return nil, types.NewChainError("mintWithSignature", err)
	}
	metrics.GetMetrics().Chain.TransactionsSent.WithLabelValues("mintWithSignature", "sent").Inc()
	r.logger.Info("submitted mint transaction",
		slog.String("tx_hash", tx.Hash().Hex()),
		slog.String("value", opts.Value.String()))
	return tx, nil
}

// Redeem submits req, waits for it to be mined and reports the minted ids.
func (r *Redeemer) Redeem(ctx context.Context, req *voucher.MintRequest, sig []byte) (*Receipt, error) {
	tx, err := r.Submit(ctx, req, sig)
	if err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, r.backend, tx)
	if err != nil {
		return nil, types.NewChainError("waitMined", err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		metrics.GetMetrics().Chain.TransactionsSent.WithLabelValues("mintWithSignature", "reverted").Inc()
		return nil, types.NewChainError("mintWithSignature", fmt.Errorf("transaction %s reverted", tx.Hash().Hex()))
	}
	metrics.GetMetrics().Chain.TransactionsSent.WithLabelValues("mintWithSignature", "mined").Inc()

	out := &Receipt{TxHash: receipt.TxHash, Height: receipt.BlockNumber.Uint64()}
	for _, log := range receipt.Logs {
		if log == nil || log.Address != r.collection.Address() {
			continue
		}
		mint, err := r.collection.ParseSignatureMint(*log)
		if err != nil {
			continue
		}
		out.TokenIds = append(out.TokenIds, mint.TokenIds()...)
	}
	return out, nil
}
