package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/getsentry/sentry-go"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
	"github.com/JWebSmart/Nft-marketplace/types"
)

const (
	maxRetriesPerURL  = 3
	maxBackoffDelay   = 10 * time.Second
	backoffMultiplier = 2.0
)

// overridden in tests
var baseBackoffDelay = 500 * time.Millisecond

// Backend is the part of ethclient.Client the storefront talks to.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

var (
	_ Backend              = (*ethclient.Client)(nil)
	_ bind.ContractBackend = (*Client)(nil)
	_ bind.DeployBackend   = (*Client)(nil)
)

// Client spreads JSON-RPC calls over several endpoints, rotating away from
// endpoints that keep failing.
type Client struct {
	endpoints []string
	backends  []Backend
	health    *healthTracker
	timeout   time.Duration
	logger    *slog.Logger
}

// Dial connects to every configured JSON-RPC url.
func Dial(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	urls := cfg.GetChainConfig().JsonRpcUrls
	backends := make([]Backend, 0, len(urls))
	for _, u := range urls {
		ec, err := ethclient.DialContext(ctx, u)
		if err != nil {
			for _, b := range backends {
				b.(*ethclient.Client).Close()
			}
			return nil, types.NewChainError("dial", fmt.Errorf("%s: %w", redact(u), err))
		}
		backends = append(backends, ec)
	}
	return NewClient(urls, backends, cfg.GetQueryTimeout(), logger)
}

func NewClient(endpoints []string, backends []Backend, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if len(backends) == 0 {
		return nil, types.NewConfigError("no JSON-RPC endpoints configured", nil)
	}
	if len(endpoints) != len(backends) {
		return nil, fmt.Errorf("endpoint count %d does not match backend count %d", len(endpoints), len(backends))
	}
	return &Client{
		endpoints: endpoints,
		backends:  backends,
		health:    newHealthTracker(len(backends)),
		timeout:   timeout,
		logger:    logger.With("component", "chain"),
	}, nil
}

func (c *Client) Close() {
	for _, b := range c.backends {
		if ec, ok := b.(*ethclient.Client); ok {
			ec.Close()
		}
	}
}

// execute runs fn with endpoint rotation and backoff. It starts at the first
// healthy endpoint and gives up once every endpoint has used its retries.
func execute[T any](ctx context.Context, c *Client, method string, fn func(ctx context.Context, b Backend) (T, error)) (T, error) {
	var zero T
	chainMetrics := metrics.GetMetrics().Chain
	start := time.Now()
	defer func() {
		chainMetrics.RPCLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	startIndex := c.health.firstHealthy()
	current := startIndex
	retries := 0
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		if retries >= maxRetriesPerURL {
			current = (current + 1) % len(c.backends)
			retries = 0
			chainMetrics.EndpointRotations.Inc()
			if current == startIndex {
				chainMetrics.RPCRequestsTotal.WithLabelValues(method, "error").Inc()
				sentry_integration.CaptureCurrentHubException(lastErr, sentry.LevelError)
				return zero, types.NewChainError(method, fmt.Errorf("exhausted all endpoints: %w", lastErr))
			}
			c.logger.Warn("rotating JSON-RPC endpoint",
				slog.String("method", method),
				slog.String("endpoint", redact(c.endpoints[current])),
				slog.Any("error", lastErr))
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		res, err := fn(callCtx, c.backends[current])
		cancel()
		if err == nil {
			c.health.success(current)
			chainMetrics.EndpointHealth.WithLabelValues(redact(c.endpoints[current])).Set(1)
			chainMetrics.RPCRequestsTotal.WithLabelValues(method, "success").Inc()
			return res, nil
		}
		if !retryable(err) {
			chainMetrics.RPCRequestsTotal.WithLabelValues(method, "error").Inc()
			return zero, err
		}

		lastErr = err
		retries++
		c.health.failure(current)
		if !c.health.healthy(current) {
			chainMetrics.EndpointHealth.WithLabelValues(redact(c.endpoints[current])).Set(0)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(calculateBackoffDelay(retries)):
		}
	}
}

// retryable is false for errors the node produced deliberately, such as a
// reverted call, which another endpoint would return as well.
func retryable(err error) bool {
	var rpcErr interface{ ErrorCode() int }
	if errors.As(err, &rpcErr) {
		return false
	}
	return !errors.Is(err, ethereum.NotFound)
}

func calculateBackoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return baseBackoffDelay
	}
	delay := float64(baseBackoffDelay) * math.Pow(backoffMultiplier, float64(attempt-1))
	if delay > float64(maxBackoffDelay) {
		delay = float64(maxBackoffDelay)
	}
	delay += delay * 0.1 * (2*rand.Float64() - 1)
	return time.Duration(delay)
}

// redact drops credentials and paths, which often embed API keys.
func redact(rawUrl string) string {
	u, err := url.Parse(rawUrl)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Scheme + "://" + u.Host
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	height, err := execute(ctx, c, "eth_blockNumber", func(ctx context.Context, b Backend) (uint64, error) {
		return b.BlockNumber(ctx)
	})
	if err == nil {
		metrics.GetMetrics().Chain.LatestChainHeight.Set(float64(height))
	}
	return height, err
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return execute(ctx, c, "eth_chainId", func(ctx context.Context, b Backend) (*big.Int, error) {
		return b.ChainID(ctx)
	})
}

func (c *Client) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return execute(ctx, c, "eth_call", func(ctx context.Context, b Backend) ([]byte, error) {
		return b.CallContract(ctx, call, blockNumber)
	})
}

func (c *Client) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return execute(ctx, c, "eth_getCode", func(ctx context.Context, b Backend) ([]byte, error) {
		return b.CodeAt(ctx, contract, blockNumber)
	})
}

func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return execute(ctx, c, "eth_getLogs", func(ctx context.Context, b Backend) ([]ethtypes.Log, error) {
		return b.FilterLogs(ctx, q)
	})
}

// SubscribeFilterLogs uses the first endpoint only; subscriptions are not rotated.
func (c *Client) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- ethtypes.Log) (ethereum.Subscription, error) {
	return c.backends[c.health.firstHealthy()].SubscribeFilterLogs(ctx, q, ch)
}

func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	return execute(ctx, c, "eth_getBlockByNumber", func(ctx context.Context, b Backend) (*ethtypes.Header, error) {
		return b.HeaderByNumber(ctx, number)
	})
}

func (c *Client) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return execute(ctx, c, "eth_getCode", func(ctx context.Context, b Backend) ([]byte, error) {
		return b.PendingCodeAt(ctx, account)
	})
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return execute(ctx, c, "eth_getTransactionCount", func(ctx context.Context, b Backend) (uint64, error) {
		return b.PendingNonceAt(ctx, account)
	})
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return execute(ctx, c, "eth_gasPrice", func(ctx context.Context, b Backend) (*big.Int, error) {
		return b.SuggestGasPrice(ctx)
	})
}

func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return execute(ctx, c, "eth_maxPriorityFeePerGas", func(ctx context.Context, b Backend) (*big.Int, error) {
		return b.SuggestGasTipCap(ctx)
	})
}

func (c *Client) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return execute(ctx, c, "eth_estimateGas", func(ctx context.Context, b Backend) (uint64, error) {
		return b.EstimateGas(ctx, call)
	})
}

// SendTransaction is not retried: a timeout may still have delivered the tx.
func (c *Client) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	b := c.backends[c.health.firstHealthy()]
	err := b.SendTransaction(ctx, tx)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GetMetrics().Chain.RPCRequestsTotal.WithLabelValues("eth_sendRawTransaction", status).Inc()
	return err
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return execute(ctx, c, "eth_getTransactionReceipt", func(ctx context.Context, b Backend) (*ethtypes.Receipt, error) {
		return b.TransactionReceipt(ctx, txHash)
	})
}
