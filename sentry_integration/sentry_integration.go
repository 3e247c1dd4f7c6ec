package sentry_integration

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/JWebSmart/Nft-marketplace/config"
)

// Init configures the global hub. A nil config leaves sentry disabled and
// every capture below becomes a no-op.
func Init(cfg *config.SentryConfig, release string) error {
	if cfg == nil {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:                cfg.DSN,
		Environment:        cfg.Environment,
		Release:            release,
		SampleRate:         cfg.SampleRate,
		EnableTracing:      cfg.TracesSampleRate > 0,
		TracesSampleRate:   cfg.TracesSampleRate,
		ProfilesSampleRate: cfg.ProfilesSampleRate,
	})
}

// Flush waits for buffered events before shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}

func CaptureCurrentHubException(err error, level sentry.Level) {
	CaptureException(sentry.CurrentHub(), err, level)
}

func CaptureException(hub *sentry.Hub, err error, level sentry.Level) {
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		hub.CaptureException(err)
	})
}

// CaptureExceptionWithTags reports err with extra searchable tags, e.g. route or voucher uid.
func CaptureExceptionWithTags(err error, level sentry.Level, tags map[string]string) {
	hub := sentry.CurrentHub()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

func StartSentryTransaction(ctx context.Context, operation, description string) (*sentry.Span, context.Context) {
	transaction := sentry.StartTransaction(ctx, operation)
	transaction.Description = description
	return transaction, transaction.Context()
}

func StartSentrySpan(ctx context.Context, operation, description string) (*sentry.Span, context.Context) {
	span := sentry.StartSpan(ctx, operation)
	span.Description = description
	return span, span.Context()
}
