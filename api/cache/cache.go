package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
)

const minTTL = time.Second

// Options configure the response cache placed in front of the listing routes.
type Options struct {
	// TTL is rounded up to whole seconds by the fiber storage.
	TTL time.Duration
	// KeyOnQuery keeps a separate entry per raw query string, so each
	// pagination page is cached on its own.
	KeyOnQuery bool
}

// New returns a response cache for read-only routes. Requests sent with
// "Cache-Control: no-cache" skip it.
func New(opts Options) fiber.Handler {
	cfg := cache.Config{
		Expiration: max(opts.TTL, minTTL),
		Next:       skipCache,
	}
	if opts.KeyOnQuery {
		cfg.KeyGenerator = keyWithQuery
	}
	return cache.New(cfg)
}

// ForListings caches paginated listings for ttl.
func ForListings(ttl time.Duration) fiber.Handler {
	return New(Options{TTL: ttl, KeyOnQuery: true})
}

func skipCache(c *fiber.Ctx) bool {
	return c.Get(fiber.HeaderCacheControl) == "no-cache"
}

func keyWithQuery(c *fiber.Ctx) string {
	key := c.Method() + ":" + c.Path()
	if q := c.Request().URI().QueryString(); len(q) > 0 {
		key += "?" + string(q)
	}
	return key
}
