package cache_test

import (
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/JWebSmart/Nft-marketplace/api/cache"
)

func get(t *testing.T, app *fiber.App, target string, header map[string]string) (string, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.Header.Get("X-Cache"), string(body)
}

func newApp(opts cache.Options) (*fiber.App, *atomic.Int64) {
	var calls atomic.Int64
	app := fiber.New()
	app.Get("/nfts", cache.New(opts), func(c *fiber.Ctx) error {
		calls.Add(1)
		return c.SendString(c.Query("pagination.limit", "default"))
	})
	return app, &calls
}

func TestCacheHitAndExpiry(t *testing.T) {
	app, calls := newApp(cache.Options{TTL: time.Second, KeyOnQuery: true})

	status, body := get(t, app, "/nfts", nil)
	require.Equal(t, "miss", status)
	require.Equal(t, "default", body)

	status, _ = get(t, app, "/nfts", nil)
	require.Equal(t, "hit", status)
	require.Equal(t, int64(1), calls.Load())

	time.Sleep(1100 * time.Millisecond)
	status, _ = get(t, app, "/nfts", nil)
	require.Equal(t, "miss", status)
	require.Equal(t, int64(2), calls.Load())
}

func TestCacheKeysOnQuery(t *testing.T) {
	app, _ := newApp(cache.Options{TTL: time.Minute, KeyOnQuery: true})

	_, body := get(t, app, "/nfts?pagination.limit=5", nil)
	require.Equal(t, "5", body)

	status, body := get(t, app, "/nfts?pagination.limit=10", nil)
	require.Equal(t, "miss", status)
	require.Equal(t, "10", body)
}

func TestCacheBypass(t *testing.T) {
	app, calls := newApp(cache.Options{TTL: time.Minute, KeyOnQuery: true})

	get(t, app, "/nfts", nil)
	get(t, app, "/nfts", map[string]string{fiber.HeaderCacheControl: "no-cache"})
	require.Equal(t, int64(2), calls.Load())
}
