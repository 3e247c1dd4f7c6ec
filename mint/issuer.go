package mint

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/mq"
	"github.com/JWebSmart/Nft-marketplace/orm"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
	"github.com/JWebSmart/Nft-marketplace/types"
	"github.com/JWebSmart/Nft-marketplace/voucher"
)

// Request is the body of POST /api/server.
type Request struct {
	AuthorAddress string           `json:"authorAddress"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         types.FlexNumber `json:"price"`
	Quantity      types.FlexNumber `json:"quantity"`
	ImagePath     string           `json:"imagePath"`
}

// Validate applies the form rules to a request whose image is already uploaded.
func (r Request) Validate() error {
	var errs ValidationErrors
	if !common.IsHexAddress(r.AuthorAddress) {
		errs = append(errs, &FieldError{Field: "authorAddress", Message: "Please connect a valid wallet address"})
	}
	if !validImagePath(r.ImagePath) {
		errs = append(errs, &FieldError{Field: "image", Message: MsgInvalidImage})
	}
	errs = append(errs, validateFields(r.Name, r.Description, r.Quantity, r.Price)...)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validImagePath(p string) bool {
	p = strings.TrimSpace(p)
	for _, prefix := range []string{"ipfs://", "https://", "http://"} {
		if strings.HasPrefix(p, prefix) && len(p) > len(prefix) {
			return true
		}
	}
	return false
}

// Metadata is the token metadata document built from the request.
func (r Request) Metadata() types.NftMetadata {
	return types.NftMetadata{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Image:       strings.TrimSpace(r.ImagePath),
		Properties:  map[string]any{},
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

type MetadataUploader interface {
	UploadMetadata(ctx context.Context, md types.NftMetadata) (string, error)
}

type EventPublisher interface {
	Publish(event mq.Event) error
}

// Issuer turns mint requests into signed vouchers.
type Issuer struct {
	cfg       *config.Config
	db        *orm.Database
	uploader  MetadataUploader
	publisher EventPublisher
	signer    *voucher.Signer
	signerErr error
	logger    *slog.Logger
	now       func() time.Time
}

// NewIssuer builds an issuer. A missing or invalid PRIVATE_KEY does not fail
// construction; every Issue call reports it instead. publisher may be nil.
func NewIssuer(cfg *config.Config, db *orm.Database, uploader MetadataUploader, publisher EventPublisher, logger *slog.Logger) *Issuer {
	signer, err := voucher.NewSigner(cfg)
	return &Issuer{
		cfg:       cfg,
		db:        db,
		uploader:  uploader,
		publisher: publisher,
		signer:    signer,
		signerErr: err,
		logger:    logger.With("component", "issuer"),
		now:       time.Now,
	}
}

func (i *Issuer) maxQuantity() int64 {
	if sc := i.cfg.GetSignerConfig(); sc != nil {
		return sc.GetMaxMintQuantity()
	}
	return types.MaxMintQuantity
}

// Signer returns the configured signer or the reason there is none.
func (i *Issuer) Signer() (*voucher.Signer, error) {
	return i.signer, i.signerErr
}

// Issue validates req, uploads its metadata, signs a mint request for the
// author and records the voucher.
func (i *Issuer) Issue(ctx context.Context, req Request) (*voucher.SignedPayload, error) {
	storefront := metrics.GetMetrics().Storefront
	start := time.Now()

	if err := req.Validate(); err != nil {
		storefront.VoucherFailuresTotal.WithLabelValues("validation").Inc()
		return nil, err
	}
	if i.signerErr != nil {
		storefront.VoucherFailuresTotal.WithLabelValues("signer").Inc()
		return nil, i.signerErr
	}

	price, err := voucher.ParsePrice(req.Price.String(), voucher.NativeDecimals)
	if err != nil {
		storefront.VoucherFailuresTotal.WithLabelValues("validation").Inc()
		return nil, ValidationErrors{{Field: "price", Message: MsgInvalidPrice}}
	}
	quantity, _ := ParseQuantity(req.Quantity)
	if quantity.Int64() > i.maxQuantity() {
		storefront.VoucherFailuresTotal.WithLabelValues("validation").Inc()
		return nil, ValidationErrors{{Field: "quantity", Message: MsgInvalidQuantity}}
	}

	metadata := req.Metadata()
	span, spanCtx := sentry_integration.StartSentrySpan(ctx, "upload_metadata", "Pin voucher metadata")
	uri, err := i.uploader.UploadMetadata(spanCtx, metadata)
	span.Finish()
	if err != nil {
		storefront.VoucherFailuresTotal.WithLabelValues("storage").Inc()
		return nil, err
	}

	mintReq, sig, err := i.signer.Generate(voucher.Params{
		To:       common.HexToAddress(req.AuthorAddress),
		Uri:      uri,
		Price:    price,
		Quantity: quantity,
	})
	if err != nil {
		storefront.VoucherFailuresTotal.WithLabelValues("signer").Inc()
		return nil, err
	}
	signed := voucher.NewSignedPayload(mintReq, sig, metadata)

	record := types.CollectedMintVoucher{
		Uid:            signed.Payload.Uid,
		CollectionAddr: i.signer.Domain().VerifyingContract.Hex(),
		Signer:         i.signer.Address().Hex(),
		ToAddr:         signed.Payload.To,
		Uri:            uri,
		Price:          signed.Payload.Price,
		PriceWei:       price.String(),
		Currency:       signed.Payload.CurrencyAddress,
		Quantity:       quantity.Int64(),
		ValidityStart:  signed.Payload.MintStartTime,
		ValidityEnd:    signed.Payload.MintEndTime,
		Signature:      signed.Signature,
		Status:         types.VoucherStatusIssued,
		CreatedAt:      i.now().UTC(),
	}
	if err := i.db.WithContext(ctx).Create(&record).Error; err != nil {
		reason := "database"
		if orm.IsUniqueViolation(err) {
			reason = "duplicate_uid"
		}
		storefront.VoucherFailuresTotal.WithLabelValues(reason).Inc()
		return nil, types.NewDatabaseError("save voucher", err)
	}

	storefront.VouchersIssuedTotal.WithLabelValues(string(i.signer.Domain().ContractType)).Inc()
	storefront.VoucherDuration.Observe(time.Since(start).Seconds())
	i.logger.Info("issued mint voucher",
		slog.String("uid", record.Uid),
		slog.String("to", record.ToAddr),
		slog.String("uri", uri))

	i.publish(mq.Event{
		Type:       mq.EventVoucherIssued,
		Collection: record.CollectionAddr,
		Uid:        record.Uid,
		To:         record.ToAddr,
		Timestamp:  record.CreatedAt,
	})
	return signed, nil
}

// publish is best effort; the voucher is already stored.
func (i *Issuer) publish(event mq.Event) {
	if i.publisher == nil {
		return
	}
	if err := i.publisher.Publish(event); err != nil {
		i.logger.Warn("failed to publish event", slog.String("type", string(event.Type)), slog.Any("error", err))
	}
}

// VerifyResult is the response of POST /api/verify.
type VerifyResult struct {
	Valid  bool   `json:"valid"`
	Signer string `json:"signer"`
}

// Verify recovers the signer of a signed payload and checks that it is the
// configured key and that the voucher is still inside its validity window.
func (i *Issuer) Verify(signed *voucher.SignedPayload) (*VerifyResult, error) {
	if i.signerErr != nil {
		return nil, i.signerErr
	}
	req, sig, err := signed.Decode()
	if err != nil {
		return nil, types.NewBadRequestError(err.Error())
	}
	recovered, err := i.signer.Domain().RecoverSigner(req, sig)
	if err != nil {
		return nil, types.NewBadRequestError(err.Error())
	}
	return &VerifyResult{
		Valid:  recovered == i.signer.Address() && req.ActiveAt(i.now()),
		Signer: recovered.Hex(),
	}, nil
}

// IsValidation reports whether err is a user input problem.
func IsValidation(err error) bool {
	var verrs ValidationErrors
	return errors.As(err, &verrs)
}
