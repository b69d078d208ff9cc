// Package monitoring adapts Sentry to the core monitoring interface.
package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/pilgrimcast/config"
	coremon "github.com/kilianp07/pilgrimcast/core/monitoring"
)

const serviceName = "pilgrimcast"

// NewSentryMonitor initializes the Sentry SDK from cfg. An empty DSN yields a
// NopMonitor so that reporting stays optional.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		AttachStacktrace: true,
		BeforeSend:       scrubRequest,
	})
	if err != nil {
		return nil, err
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", serviceName)
	})
	return &sentryMonitor{}, nil
}

// scrubRequest drops HTTP bodies: prediction payloads are not needed to
// triage model or artifact failures.
func scrubRequest(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if ev != nil && ev.Request != nil {
		ev.Request.Data = ""
	}
	return ev
}

type sentryMonitor struct{}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Recover reports a panic and re-raises it after flushing.
func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
