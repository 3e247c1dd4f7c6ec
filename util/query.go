package util

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/semaphore"

	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/types"
)

const (
	maxRetries        = 5
	maxBackoffDelay   = 30 * time.Second
	backoffMultiplier = 2.0
	jitterFactor      = 0.1
)

var (
	limiter *semaphore.Weighted

	// overridden in tests
	baseBackoffDelay = 1 * time.Second
)

// HTTPStatusError is returned for non-2xx responses.
type HTTPStatusError struct {
	Code int
	Body []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http response: %d, body: %s", e.Code, string(e.Body))
}

func (e *HTTPStatusError) retryable() bool {
	return e.Code == fiber.StatusTooManyRequests || e.Code >= fiber.StatusInternalServerError
}

func InitLimiter(cfg *config.Config) {
	limiter = semaphore.NewWeighted(int64(cfg.GetMaxConcurrentRequests()))
}

// calculateBackoffDelay calculates exponential backoff delay with jitter
func calculateBackoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return baseBackoffDelay
	}

	baseSeconds := baseBackoffDelay.Seconds()
	maxSeconds := maxBackoffDelay.Seconds()

	delaySeconds := baseSeconds * math.Pow(backoffMultiplier, float64(attempt-1))
	if delaySeconds > maxSeconds {
		delaySeconds = maxSeconds
	}

	// +/- jitterFactor to avoid thundering herd
	delaySeconds += delaySeconds * jitterFactor * (2*rand.Float64() - 1)
	if delaySeconds < baseSeconds {
		delaySeconds = baseSeconds
	}

	return time.Duration(delaySeconds*1000+0.5) * time.Millisecond
}

// Get fetches rawUrl, retrying network errors, 429 and 5xx responses with backoff.
func Get(ctx context.Context, client *fiber.Client, timeout time.Duration, rawUrl string, params, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := getRaw(ctx, client, timeout, rawUrl, params, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			if !statusErr.retryable() {
				return nil, err
			}
			if statusErr.Code == fiber.StatusTooManyRequests {
				metrics.RateLimitHitsTotal().WithLabelValues(endpointLabel(rawUrl)).Inc()
			}
		}
		if ctx.Err() != nil {
			return nil, contextError(ctx, rawUrl)
		}

		select {
		case <-ctx.Done():
			return nil, contextError(ctx, rawUrl)
		case <-time.After(calculateBackoffDelay(attempt)):
		}
	}

	var statusErr *HTTPStatusError
	if errors.As(lastErr, &statusErr) && statusErr.Code == fiber.StatusTooManyRequests {
		return nil, types.NewRateLimitError(endpointLabel(rawUrl))
	}
	return nil, fmt.Errorf("failed to fetch %s after %d retries: %w", rawUrl, maxRetries, lastErr)
}

func contextError(ctx context.Context, rawUrl string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return types.NewTimeoutError("GET " + endpointLabel(rawUrl))
	}
	return ctx.Err()
}

func getRaw(ctx context.Context, client *fiber.Client, timeout time.Duration, rawUrl string, params, headers map[string]string) ([]byte, error) {
	parsedUrl, err := url.Parse(rawUrl)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		query := parsedUrl.Query()
		for key, value := range params {
			query.Set(key, value)
		}
		parsedUrl.RawQuery = query.Encode()
	}

	return do(ctx, rawUrl, func() *fiber.Agent {
		req := client.Get(parsedUrl.String())
		for key, value := range headers {
			req.Set(key, value)
		}
		return req.Timeout(timeout)
	})
}

// PostFile uploads a single multipart file field. It is not retried.
func PostFile(ctx context.Context, client *fiber.Client, timeout time.Duration, rawUrl string, file *fiber.FormFile, headers map[string]string) ([]byte, error) {
	return do(ctx, rawUrl, func() *fiber.Agent {
		req := client.Post(rawUrl)
		for key, value := range headers {
			req.Set(key, value)
		}
		return req.FileData(file).MultipartForm(nil).Timeout(timeout)
	})
}

// PostJSON sends payload as JSON and returns the status code and body whatever the status.
// It is not retried: callers use it for non-idempotent requests.
func PostJSON(ctx context.Context, client *fiber.Client, timeout time.Duration, rawUrl string, payload any, headers map[string]string) (int, []byte, error) {
	if err := acquire(ctx); err != nil {
		return 0, nil, err
	}
	defer limiter.Release(1)

	req := client.Post(rawUrl).JSON(payload)
	for key, value := range headers {
		req.Set(key, value)
	}
	code, body, errs := req.Timeout(timeout).Bytes()
	if err := errors.Join(errs...); err != nil {
		return 0, nil, types.NewNetworkError(rawUrl, err)
	}
	return code, body, nil
}

func acquire(ctx context.Context) error {
	if limiter == nil {
		return types.NewLimiterNotInitializedError()
	}
	semaphoreStart := time.Now()
	if err := limiter.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	metrics.SemaphoreWaitDuration().Observe(time.Since(semaphoreStart).Seconds())
	return nil
}

func do(ctx context.Context, rawUrl string, build func() *fiber.Agent) ([]byte, error) {
	start := time.Now()
	endpoint := endpointLabel(rawUrl)

	if err := acquire(ctx); err != nil {
		return nil, err
	}
	defer limiter.Release(1)

	metrics.ConcurrentRequestsActive().Inc()
	defer func() {
		metrics.ConcurrentRequestsActive().Dec()
		metrics.ExternalAPILatency().WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	code, body, errs := build().Bytes()
	if err := errors.Join(errs...); err != nil {
		metrics.ExternalAPIRequestsTotal().WithLabelValues(endpoint, "error").Inc()
		return nil, types.NewNetworkError(rawUrl, err)
	}
	metrics.ExternalAPIRequestsTotal().WithLabelValues(endpoint, fmt.Sprintf("%d", code)).Inc()

	if code >= 200 && code < 300 {
		return body, nil
	}
	return nil, &HTTPStatusError{Code: code, Body: body}
}

// endpointLabel keeps metric cardinality bounded to scheme and host.
func endpointLabel(rawUrl string) string {
	u, err := url.Parse(rawUrl)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Scheme + "://" + u.Host
}
