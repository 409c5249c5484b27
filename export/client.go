package export

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent = "geoweblog"

	DefaultTimeout                     = 5 * time.Minute
	DefaultRateLimitInterval           = time.Second
	DefaultRateLimitBurst              = 1
	DefaultCircuitBreakerOpenThreshold = 3
	DefaultCircuitBreakerCooldown      = time.Minute
)

// HTTPClient is a minimal interface of http.Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// ClientOptions configure a client. Zero values fall back to defaults.
type ClientOptions struct {
	UserAgent string
	Timeout   time.Duration

	// Splunk management port often runs with self-signed certificate.
	InsecureSkipVerify bool

	RateLimitInterval time.Duration
	RateLimitBurst    int

	CircuitBreakerOpenThreshold uint32
	CircuitBreakerCooldown      time.Duration
}

type httpClient struct {
	userAgent      string
	client         HTTPClient
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.circuitBreaker.Do(req.Context(), func(ctx context.Context) (*http.Response, error) {
		if err := h.rateLimiter.Wait(ctx); err != nil {
			return nil, ErrCircuitBreakerIgnore
		}

		resp, err := h.client.Do(req.WithContext(ctx))
		if err != nil {
			closeResponse(resp)

			return nil, err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			closeResponse(resp)

			return nil, fmt.Errorf("%w: splunk has responded with %s", ErrBadStatus, resp.Status)
		}

		return resp, nil
	})

	if resp == nil {
		return nil, err
	}

	return resp, err
}

func closeResponse(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	io.Copy(io.Discard, resp.Body) // nolint: errcheck
	resp.Body.Close()
}

// NewHTTPClient wraps a given client with rate limiter and circuit
// breaker and sets a user agent. If client is nil, a new one is
// created according to options.
//
// Rate limiter allows one request per RateLimitInterval with bursts of
// RateLimitBurst.
//
// Circuit breaker opens after CircuitBreakerOpenThreshold consecutive
// failures. An opened breaker lets a single trial request after
// CircuitBreakerCooldown.
func NewHTTPClient(client HTTPClient, opts ClientOptions) HTTPClient {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.RateLimitInterval <= 0 {
		opts.RateLimitInterval = DefaultRateLimitInterval
	}

	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = DefaultRateLimitBurst
	}

	if opts.CircuitBreakerOpenThreshold == 0 {
		opts.CircuitBreakerOpenThreshold = DefaultCircuitBreakerOpenThreshold
	}

	if opts.CircuitBreakerCooldown <= 0 {
		opts.CircuitBreakerCooldown = DefaultCircuitBreakerCooldown
	}

	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify, // nolint: gosec
		}

		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		}
	}

	return httpClient{
		userAgent:   opts.UserAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(opts.RateLimitInterval), opts.RateLimitBurst),
		circuitBreaker: newCircuitBreaker(opts.CircuitBreakerOpenThreshold,
			opts.CircuitBreakerCooldown),
	}
}
