package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/JWebSmart/Nft-marketplace/cache"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/types"
	"github.com/JWebSmart/Nft-marketplace/util"
)

const (
	ipfsScheme = "ipfs://"
	addPath    = "/api/v0/add"

	KindImage    = "image"
	KindMetadata = "metadata"
)

// ImageContentTypes are the media types accepted for NFT images.
var ImageContentTypes = map[string]bool{
	"image/png":  true,
	"image/gif":  true,
	"image/jpeg": true,
}

// Client uploads files to an IPFS node and reads them back through a gateway.
type Client struct {
	cfg      *config.StorageConfig
	client   *fiber.Client
	timeout  time.Duration
	logger   *slog.Logger
	metadata *cache.Cache[string, *Metadata]
	// mutable holds documents served from http(s) URIs, which may change.
	mutable metadataLoader
}

type metadataLoader interface {
	GetOrLoad(key string, load func() (*Metadata, error)) (*Metadata, error)
}

// Metadata is a decoded token metadata document along with its raw bytes.
type Metadata struct {
	types.NftMetadata
	Raw json.RawMessage
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

func New(cfg *config.Config, logger *slog.Logger) *Client {
	cacheSize := cfg.GetCacheSize()
	if cacheSize <= 0 {
		cacheSize = config.DefaultCacheSize
	}
	c := &Client{
		cfg:      cfg.GetStorageConfig(),
		client:   fiber.AcquireClient(),
		timeout:  cfg.GetQueryTimeout(),
		logger:   logger.With("component", "storage"),
		metadata: cache.New[string, *Metadata](cacheSize),
	}
	c.mutable = c.metadata
	if ttl := cfg.GetCacheTTL(); ttl > 0 {
		c.mutable = cache.NewTTL[string, *Metadata](cacheSize, ttl)
	}
	return c
}

// DetectImageType sniffs data and returns its content type if it is an
// accepted image type.
func DetectImageType(data []byte) (string, bool) {
	contentType := http.DetectContentType(data)
	return contentType, ImageContentTypes[contentType]
}

func (c *Client) headers() map[string]string {
	if c.cfg.ApiToken == "" {
		return nil
	}
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + c.cfg.ApiToken}
}

// Upload pins data on IPFS and returns its ipfs:// URI.
func (c *Client) Upload(ctx context.Context, kind, name string, data []byte) (string, error) {
	storefront := metrics.GetMetrics().Storefront
	if c.cfg.MaxUploadBytes > 0 && len(data) > c.cfg.MaxUploadBytes {
		storefront.UploadsTotal.WithLabelValues(kind, "rejected").Inc()
		return "", types.NewInvalidValueError("file", name, fmt.Sprintf("exceeds %d bytes", c.cfg.MaxUploadBytes))
	}

	endpoint := strings.TrimRight(c.cfg.ApiUrl, "/") + addPath + "?pin=true&cid-version=1"
	body, err := util.PostFile(ctx, c.client, c.timeout, endpoint, &fiber.FormFile{
		Fieldname: "file",
		Name:      name,
		Content:   data,
	}, c.headers())
	if err != nil {
		storefront.UploadsTotal.WithLabelValues(kind, "error").Inc()
		return "", types.NewStorageError("upload", err)
	}

	var res addResponse
	if err := json.Unmarshal(body, &res); err != nil {
		storefront.UploadsTotal.WithLabelValues(kind, "error").Inc()
		return "", types.NewStorageError("upload", fmt.Errorf("invalid add response: %w", err))
	}
	if res.Hash == "" {
		storefront.UploadsTotal.WithLabelValues(kind, "error").Inc()
		return "", types.NewStorageError("upload", fmt.Errorf("add response has no hash"))
	}

	storefront.UploadsTotal.WithLabelValues(kind, "success").Inc()
	storefront.UploadBytes.Add(float64(len(data)))
	c.logger.Debug("uploaded file", slog.String("kind", kind), slog.String("cid", res.Hash), slog.Int("bytes", len(data)))
	return ipfsScheme + res.Hash, nil
}

// UploadMetadata serializes md and uploads it as metadata.json.
func (c *Client) UploadMetadata(ctx context.Context, md types.NftMetadata) (string, error) {
	data, err := json.Marshal(md)
	if err != nil {
		return "", err
	}
	return c.Upload(ctx, KindMetadata, "metadata.json", data)
}

// Resolve maps an ipfs:// URI to its gateway URL. Other URIs pass through.
func (c *Client) Resolve(uri string) string {
	return ResolveWith(c.cfg.GatewayUrl, uri)
}

func ResolveWith(gateway, uri string) string {
	if !strings.HasPrefix(uri, ipfsScheme) {
		return uri
	}
	path := strings.TrimPrefix(uri, ipfsScheme)
	path = strings.TrimPrefix(path, "ipfs/")
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}
	return gateway + path
}

// FetchMetadata downloads and decodes the metadata document behind uri.
// Successful results are cached. ipfs documents are kept until evicted,
// anything else expires after CACHE_TTL.
func (c *Client) FetchMetadata(ctx context.Context, uri string) (*Metadata, error) {
	if uri == "" {
		return nil, types.NewInvalidValueError("uri", uri, "empty token URI")
	}
	var loader metadataLoader = c.metadata
	if !strings.HasPrefix(uri, ipfsScheme) {
		loader = c.mutable
	}
	return loader.GetOrLoad(uri, func() (*Metadata, error) {
		body, err := util.Get(ctx, c.client, c.timeout, c.Resolve(uri), nil, nil)
		if err != nil {
			return nil, types.NewStorageError("fetch metadata", err)
		}
		md := &Metadata{Raw: json.RawMessage(body)}
		if err := json.Unmarshal(body, &md.NftMetadata); err != nil {
			return nil, types.NewStorageError("decode metadata", err)
		}
		return md, nil
	})
}
