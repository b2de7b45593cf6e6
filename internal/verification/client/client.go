// Package client speaks the address verification service's HTTP protocol and
// classifies every response into an address.Outcome.
//
// Verify never returns an error: transport failures, timeouts, rejected keys
// and malformed bodies all classify into fail-open outcomes, so an outage of
// the service cannot block a form submission.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"avelements/internal/address"
	"avelements/internal/verification/denormalize"
	"avelements/internal/verification/metrics"
	"avelements/pkg/platform/circuit"
)

const (
	// DefaultTimeout bounds every call to the service.
	DefaultTimeout = 4 * time.Second

	// IntegrationTag is appended to every request for the service's telemetry.
	IntegrationTag = "av-elements"

	maxBodyBytes = 1 << 20
	tracerName   = "avelements/verification/client"
)

// Result is the classified outcome of one verification call.
type Result struct {
	Outcome address.Outcome
	// Kind is the message kind for outcomes that carry one.
	Kind address.ErrorKind
	// Code is the status reported to integrators: 401 for a rejected key,
	// 200 otherwise.
	Code int
	// Data is the raw (unwrapped) response payload, `{}` when there is none.
	Data json.RawMessage
	// Verified holds the service's street lines for address-level responses.
	Verified *denormalize.Verified
	// Category is empty for clean results and names the failure otherwise.
	Category ErrorCategory
	// International is set when the address routed to the international flow.
	International bool
}

// Client calls the verification service.
type Client struct {
	endpoints  Endpoints
	apiKey     string
	origin     string
	timeout    time.Duration
	verifyIntl bool
	messages   address.Messages
	httpClient *http.Client
	breaker    *circuit.Breaker
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the key sent as HTTP basic auth username.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithOrigin sets the integration origin URL reported to the service.
func WithOrigin(origin string) Option {
	return func(c *Client) {
		c.origin = origin
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithInternationalVerification makes Verify call the international endpoint
// instead of passing international addresses through unverified.
func WithInternationalVerification(enabled bool) Option {
	return func(c *Client) {
		c.verifyIntl = enabled
	}
}

// WithMessages sets the catalogue used to recognize message kinds returned by
// the service.
func WithMessages(m address.Messages) Option {
	return func(c *Client) {
		if m != nil {
			c.messages = m
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBreaker guards calls with a circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client for the given endpoints.
func New(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		endpoints:  endpoints,
		timeout:    DefaultTimeout,
		messages:   address.DefaultMessages(),
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify classifies the address held in fields. It returns within the
// configured timeout.
func (c *Client) Verify(ctx context.Context, fields address.Fields) Result {
	international := fields.IsInternational()
	if international && !c.verifyIntl {
		c.logger.DebugContext(ctx, "international address passed through unverified",
			"country", fields.Country,
		)
		return Result{
			Outcome:       address.OutcomeDeliverable,
			Code:          200,
			Data:          emptyData,
			International: true,
		}
	}

	endpointName, endpoint := "us_verify", c.endpoints.USVerify
	if international {
		endpointName, endpoint = "intl_verify", c.endpoints.IntlVerify
	}

	ctx, span := c.tracer.Start(ctx, "verification.verify", trace.WithAttributes(
		attribute.String("av.endpoint", endpointName),
		attribute.Bool("av.international", international),
	))
	defer span.End()

	status, body, err := c.post(ctx, endpointName, endpoint, buildPayload(fields, international))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CategoryOf(err)))
		c.logger.WarnContext(ctx, "verification call failed, allowing submission",
			"endpoint", endpointName,
			"category", CategoryOf(err),
			"error", err,
		)
		res := unavailable(CategoryOf(err), emptyData)
		res.International = international
		return res
	}

	res := classify(status, body, c.messages)
	res.International = international
	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("av.outcome", string(res.Outcome)),
	)

	switch res.Category {
	case CategoryMalformedResponse:
		c.logger.WarnContext(ctx, "verification response is not valid JSON",
			"endpoint", endpointName,
			"status", status,
		)
	case CategoryUnauthorized:
		c.logger.ErrorContext(ctx, "verification service rejected the API key; sign up for a valid key",
			"endpoint", endpointName,
		)
	case CategoryUnknownDeliverability:
		c.logger.WarnContext(ctx, "unrecognized deliverability classification",
			"endpoint", endpointName,
		)
	}
	return res
}

// post sends payload to endpoint and returns the status and body. Errors are
// always *Error values.
func (c *Client) post(ctx context.Context, name, endpoint string, payload any) (int, []byte, error) {
	op := "POST " + name

	if c.breaker != nil && !c.breaker.Allow() {
		c.metrics.IncBreakerSkipped()
		return 0, nil, &Error{Category: CategoryCircuitOpen, Op: op}
	}

	target, err := c.withTelemetry(endpoint)
	if err != nil {
		return 0, nil, &Error{Category: CategoryNetworkUnavailable, Op: op, Err: err}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, &Error{Category: CategoryNetworkUnavailable, Op: op, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, &Error{Category: CategoryNetworkUnavailable, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.apiKey+":")))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRemote(name, "error", time.Since(start).Seconds())
		category := transportCategory(ctx, err)
		if !errors.Is(err, context.Canceled) {
			c.recordFailure()
		}
		return 0, nil, &Error{Category: category, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.ObserveRemote(name, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	if err != nil {
		c.recordFailure()
		return 0, nil, &Error{Category: transportCategory(ctx, err), Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 500 {
		c.recordFailure()
	} else {
		c.recordSuccess()
	}
	return resp.StatusCode, body, nil
}

func (c *Client) withTelemetry(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("av_integration_origin", c.origin)
	q.Set("integration", IntegrationTag)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) recordFailure() {
	if c.breaker == nil {
		return
	}
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.Warn("verification circuit breaker opened", "breaker", c.breaker.Name())
		c.metrics.SetBreakerState(true)
	}
}

func (c *Client) recordSuccess() {
	if c.breaker == nil {
		return
	}
	_, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.Info("verification circuit breaker closed", "breaker", c.breaker.Name())
		c.metrics.SetBreakerState(false)
	}
}

func transportCategory(ctx context.Context, err error) ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}
	return CategoryNetworkUnavailable
}
