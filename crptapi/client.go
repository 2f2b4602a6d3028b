/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crptapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/acronis/go-crptapi/document"
	"github.com/acronis/go-crptapi/httpclient"
	"github.com/acronis/go-crptapi/internal/libinfo"
	"github.com/acronis/go-crptapi/log"
	"github.com/acronis/go-crptapi/permit"
)

// RequestType is used as the request type of the underlying HTTP client in logs and metrics.
const RequestType = "crpt-create-document"

// MaxResponseBodySize is the maximum number of bytes of the response body kept in the Outcome.
const MaxResponseBodySize = 64 * 1024

// Opts represents options for the Client.
type Opts struct {
	// Logger is used for reporting outcomes. Disabled logger is used by default.
	Logger log.FieldLogger

	// MetricsCollector collects metrics of submissions. Nothing is collected by default.
	MetricsCollector MetricsCollector

	// HTTPMetricsCollector collects metrics of the underlying HTTP requests.
	HTTPMetricsCollector httpclient.MetricsCollector

	// Transport is the innermost round tripper of the HTTP client.
	Transport http.RoundTripper

	// Encoder encodes payloads. JSONEncoder is used by default.
	Encoder Encoder

	// UserAgent of the HTTP client. "go-crptapi/<version>" is used by default.
	UserAgent string

	// OnReplenish is called every time the permit pool is replenished.
	OnReplenish func()
}

// Client submits documents to the registration API.
// At most cfg.RateLimit.Limit submissions are admitted per window, the rest are reported as rate limited.
// Client is safe for concurrent use.
type Client struct {
	endpoint        string
	signatureHeader string
	pool            *permit.Pool
	httpClient      *http.Client
	encoder         Encoder
	logger          log.FieldLogger
	metrics         MetricsCollector
}

// New creates a new Client. *ConfigurationError is returned if the rate limit is misconfigured.
func New(cfg *Config) (*Client, error) {
	return NewWithOpts(cfg, Opts{})
}

// NewWithOpts creates a new Client with options.
// *ConfigurationError is returned if the rate limit is misconfigured.
func NewWithOpts(cfg *Config, opts Opts) (*Client, error) {
	window, err := cfg.RateLimit.Window()
	if err != nil {
		return nil, &ConfigurationError{err}
	}
	pool, err := permit.NewPoolWithOpts(cfg.RateLimit.Limit, window, permit.PoolOpts{OnReplenish: opts.OnReplenish})
	if err != nil {
		return nil, &ConfigurationError{err}
	}

	if opts.Logger == nil {
		opts.Logger = log.NewDisabledLogger()
	}
	if opts.MetricsCollector == nil {
		opts.MetricsCollector = disabledMetrics{}
	}
	if opts.Encoder == nil {
		opts.Encoder = JSONEncoder{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = libinfo.UserAgent()
	}
	signatureHeader := cfg.SignatureHeader
	if signatureHeader == "" {
		signatureHeader = DefaultSignatureHeader
	}

	httpCfg := cfg.Client
	if httpCfg == nil {
		httpCfg = httpclient.NewDefaultConfig()
	}
	httpClient := httpclient.NewWithOpts(httpCfg, httpclient.Opts{
		UserAgent:   opts.UserAgent,
		RequestType: RequestType,
		Delegate:    opts.Transport,
		Collector:   opts.HTTPMetricsCollector,
	})

	return &Client{
		endpoint:        cfg.Endpoint,
		signatureHeader: signatureHeader,
		pool:            pool,
		httpClient:      httpClient,
		encoder:         opts.Encoder,
		logger:          opts.Logger,
		metrics:         opts.MetricsCollector,
	}, nil
}

// Pool returns the permit pool of the client.
func (c *Client) Pool() *permit.Pool {
	return c.pool
}

// Close stops replenishment of the permit pool.
// Submissions still may use permits left in the current window.
func (c *Client) Close() {
	c.pool.Close()
}

// CreateDocument submits the document signed with the given signature.
func (c *Client) CreateDocument(ctx context.Context, doc *document.Document, signature string) Outcome {
	return c.Submit(ctx, doc, signature)
}

// Submit encodes the payload and posts it to the registration API if a permit is available.
// It never blocks waiting for a permit and never retries.
func (c *Client) Submit(ctx context.Context, payload interface{}, signature string) Outcome {
	start := time.Now()
	outcome := c.submit(ctx, payload, signature)
	elapsed := time.Since(start)
	c.report(outcome, elapsed)
	c.metrics.SubmissionDone(outcome, elapsed)
	return outcome
}

func (c *Client) submit(ctx context.Context, payload interface{}, signature string) Outcome {
	if !c.pool.TryAcquire() {
		return Outcome{Kind: OutcomeRateLimited}
	}

	body, err := c.encoder.Encode(payload)
	if err != nil {
		return Outcome{Kind: OutcomeSerializationFailed, Err: &SerializationError{err}}
	}

	requestID := httpclient.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = xid.New().String()
		ctx = httpclient.NewContextWithRequestID(ctx, requestID)
	}
	ctx = httpclient.NewContextWithLogger(ctx, c.logger)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Kind: OutcomeTransportFailed, RequestID: requestID, Err: &TransportError{err}}
	}
	req.Header.Set("Content-Type", c.encoder.ContentType())
	req.Header.Set(c.signatureHeader, signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{Kind: OutcomeTransportFailed, RequestID: requestID, Err: &TransportError{err}}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize))
	if err != nil {
		c.logger.Warn("failed to read registration API response body",
			log.String("request_id", requestID), log.Error(err))
	}
	return Outcome{Kind: OutcomeSent, StatusCode: resp.StatusCode, Body: respBody, RequestID: requestID}
}

func (c *Client) report(outcome Outcome, elapsed time.Duration) {
	fields := []log.Field{
		log.String("outcome", outcome.Kind.String()),
		log.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if outcome.RequestID != "" {
		fields = append(fields, log.String("request_id", outcome.RequestID))
	}

	switch outcome.Kind {
	case OutcomeRateLimited:
		c.logger.Warn("document submission rate limited",
			append(fields, log.Int("available_permits", c.pool.Available()))...)
	case OutcomeSerializationFailed:
		c.logger.Error("document serialization failed", append(fields, log.Error(outcome.Err))...)
	case OutcomeTransportFailed:
		c.logger.Error("document submission failed", append(fields, log.Error(outcome.Err))...)
	case OutcomeSent:
		fields = append(fields, log.Int("status", outcome.StatusCode))
		if outcome.IsSuccessful() {
			c.logger.Info("document submitted", fields...)
			return
		}
		c.logger.Error("document rejected by registration API",
			append(fields, log.String("response_body", string(outcome.Body)))...)
	}
}
