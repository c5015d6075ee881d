// Package observability exposes metrics and error reporting helpers.
package observability

import (
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

// ErrorReportingConfig configures Sentry.
type ErrorReportingConfig struct {
	DSN         string
	Environment string
	Release     string
}

// InitErrorReporting initialises Sentry. An empty DSN disables reporting.
func InitErrorReporting(cfg ErrorReportingConfig, logger *log.Logger) error {
	if cfg.DSN == "" {
		if logger != nil {
			logger.Printf("sentry DSN not configured, error reporting disabled")
		}
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Request != nil && event.Request.Headers != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	if logger != nil {
		logger.Printf("sentry initialised (environment=%s)", cfg.Environment)
	}
	return nil
}

// CaptureError reports err with optional context. It is a no-op when Sentry
// was not initialised.
func CaptureError(err error, context map[string]any) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range context {
			scope.SetContext(key, sentry.Context{"value": value})
		}
		sentry.CaptureException(err)
	})
}

// FlushErrors waits for buffered reports to be delivered.
func FlushErrors(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
