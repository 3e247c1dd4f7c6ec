package api

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"

	"github.com/JWebSmart/Nft-marketplace/api/docs"
	"github.com/JWebSmart/Nft-marketplace/api/handler"
	"github.com/JWebSmart/Nft-marketplace/api/handler/common"
	"github.com/JWebSmart/Nft-marketplace/config"
	"github.com/JWebSmart/Nft-marketplace/metrics"
	"github.com/JWebSmart/Nft-marketplace/orm"
	"github.com/JWebSmart/Nft-marketplace/sentry_integration"
)

type Api struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *orm.Database
	app    *fiber.App
}

func New(cfg *config.Config, logger *slog.Logger, db *orm.Database, svc handler.Services) *Api {
	logger = logger.With("component", "api")
	app := fiber.New(fiber.Config{
		AppName:               "NFT Storefront API",
		DisableStartupMessage: true,
		BodyLimit:             bodyLimit(cfg),
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			metrics.TrackPanic("api")
			logger.Error("panic while serving request",
				slog.String("path", c.Path()),
				slog.Any("panic", e),
				slog.String("stack", string(debug.Stack())))
		},
	}))
	app.Use(requestid.New())
	app.Use(requestMetrics())
	addCORS(app, cfg, logger)

	app.Get("/health", health)

	api := app.Group("/api")
	addRateLimit(api, cfg)
	handler.Register(api, db, cfg, logger, svc)

	addSwagger(app)

	return &Api{
		cfg:    cfg,
		logger: logger,
		db:     db,
		app:    app,
	}
}

// @title NFT Storefront API
// @version 1.0
// @description NFT storefront API documentation
// @BasePath /

// @tag.name Mint
// @tag.description Voucher signing and image upload

// @tag.name NFT
// @tag.description Minted NFT listing

// @tag.name Auth
// @tag.description Wallet sign in
func addSwagger(app *fiber.App) {
	swaggerConfig := swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
		TagsSorter: template.JS(`function(a, b) {
			const order = ["Mint", "NFT", "Auth"];
			return order.indexOf(a) - order.indexOf(b);
		}`),
	}
	app.Get("/swagger/*", swagger.New(swaggerConfig))
}

// App exposes the fiber app, mainly for tests.
func (a *Api) App() *fiber.App {
	return a.app
}

func (a *Api) Start() error {
	port := a.cfg.GetListenPort()

	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%s", port)

	a.logger.Info("starting API server", slog.String("addr", fmt.Sprintf("http://localhost:%s", port)))
	return a.app.Listen(":" + port)
}

func (a *Api) Shutdown() error {
	return a.app.Shutdown()
}

func bodyLimit(cfg *config.Config) int {
	limit := fiber.DefaultBodyLimit
	if storageCfg := cfg.GetStorageConfig(); storageCfg.MaxUploadBytes+(1<<20) > limit {
		// room for the multipart envelope around the largest accepted image
		limit = storageCfg.MaxUploadBytes + (1 << 20)
	}
	return limit
}

// errorHandler renders every error as {error} and reports server errors.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := common.StatusFromError(err)
		msg := err.Error()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			msg = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			metrics.GetMetrics().HTTP.ErrorsTotal.WithLabelValues(metrics.GetHandlerPattern(c.Path()), "server_error").Inc()
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err))
			sentry_integration.CaptureExceptionWithTags(err, sentry.LevelError, map[string]string{
				"path":   c.Path(),
				"method": c.Method(),
			})
		}
		return common.JSONError(c, code, msg)
	}
}

func addCORS(app *fiber.App, cfg *config.Config, logger *slog.Logger) {
	serverCfg := cfg.GetServerConfig()
	if !serverCfg.CorsEnabled {
		return
	}

	origins := strings.TrimSpace(serverCfg.CorsAllowOrigins)
	if origins == "" {
		origins = "*"
	}
	logger.Debug("CORS enabled", slog.String("origins", origins))

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders: strings.Join([]string{fiber.HeaderContentType, fiber.HeaderAuthorization, fiber.HeaderCacheControl}, ","),
	}))
}

func addRateLimit(router fiber.Router, cfg *config.Config) {
	serverCfg := cfg.GetServerConfig()
	if serverCfg.RateLimitMax <= 0 {
		return
	}

	router.Use(limiter.New(limiter.Config{
		Max:        serverCfg.RateLimitMax,
		Expiration: serverCfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			metrics.RateLimitHitsTotal().WithLabelValues(metrics.GetHandlerPattern(c.Path())).Inc()
			return common.JSONError(c, fiber.StatusTooManyRequests, "too many requests")
		},
	}))
}

// health handles GET /health
// @Summary Health check
// @Tags App
// @Success 200 "OK"
// @Router /health [get]
func health(c *fiber.Ctx) error {
	return c.SendString("OK")
}
