/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package httpclient builds http.Client instances with a chain of round trippers
// for logging, Prometheus metrics, User-Agent and X-Request-ID headers.
package httpclient

import (
	"context"
	"net/http"

	"github.com/acronis/go-crptapi/log"
)

// Opts provides options for NewWithOpts function.
type Opts struct {
	// UserAgent is a user agent string.
	UserAgent string

	// RequestType is a type of request, e.g. "create-document". Used in logs and metrics.
	RequestType string

	// Delegate is the innermost RoundTripper in the chain.
	// A clone of http.DefaultTransport is used by default.
	Delegate http.RoundTripper

	// LoggerProvider is a function that provides a context-specific logger.
	LoggerProvider func(ctx context.Context) log.FieldLogger

	// RequestIDProvider is a function that provides a request ID.
	// If it is not set or returns an empty string, a new unique id is generated.
	RequestIDProvider func(ctx context.Context) string

	// Collector is a metrics collector.
	Collector MetricsCollector
}

// New wraps the default transport with logging, metrics and request id round trippers.
func New(cfg *Config) *http.Client {
	return NewWithOpts(cfg, Opts{})
}

// NewWithOpts wraps delegate transport with
// logging, metrics, user agent and request id round trippers.
// The request id round tripper is the outermost one, so the id is visible in logs.
func NewWithOpts(cfg *Config, opts Opts) *http.Client {
	delegate := opts.Delegate
	if delegate == nil {
		delegate = http.DefaultTransport.(*http.Transport).Clone()
	}

	if cfg.Logger.Enabled {
		delegate = NewLoggingRoundTripperWithOpts(delegate, opts.RequestType, LoggingRoundTripperOpts{
			LoggerProvider:       opts.LoggerProvider,
			Mode:                 cfg.Logger.Mode,
			SlowRequestThreshold: cfg.Logger.SlowRequestThreshold,
		})
	}

	if cfg.Metrics.Enabled && opts.Collector != nil {
		delegate = NewMetricsRoundTripper(delegate, opts.RequestType, opts.Collector)
	}

	if opts.UserAgent != "" {
		delegate = NewUserAgentRoundTripper(delegate, opts.UserAgent)
	}

	delegate = NewRequestIDRoundTripperWithOpts(delegate, RequestIDRoundTripperOpts{
		RequestIDProvider: opts.RequestIDProvider,
		GenerateIfEmpty:   true,
	})

	return &http.Client{Transport: delegate, Timeout: cfg.Timeout}
}
