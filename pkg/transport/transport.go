// Package transport implements the form-encoded HTTP POST used to talk to the
// Withings API.
//
// HTTPTransport only reports network-level failures as errors. Any HTTP status,
// including 4xx and 5xx, is returned in Response so that callers can tell the
// two apart.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"withings/pkg/logging"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single request including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerMinute is the provider's documented per-application quota.
	DefaultRequestsPerMinute = 120

	// DefaultUserAgent is sent when no other agent is configured.
	DefaultUserAgent = "withings-go"

	// maxBodyBytes caps how much of a response is read into memory.
	maxBodyBytes = 16 << 20
)

// ErrResponseTooLarge is returned when a response body exceeds the read limit.
// It does not count against the circuit breaker.
var ErrResponseTooLarge = errors.New("response too large")

// Response is the raw outcome of a POST that reached the server.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the HTTP status is 2xx.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// BreakerConfig tunes the circuit breaker that guards against a provider that is
// unreachable. Only network failures count; HTTP error statuses do not.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the breaker settings used by New.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "withings",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// HTTPTransport posts url-encoded forms over net/http.
type HTTPTransport struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	userAgent  string
	maxBody    int64
}

// Option configures an HTTPTransport.
type Option func(*HTTPTransport)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(t *HTTPTransport) {
		t.httpClient = httpClient
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(t *HTTPTransport) {
		t.httpClient = &http.Client{Timeout: timeout}
	}
}

// WithRateLimit limits outgoing requests per minute. Zero or less disables limiting.
func WithRateLimit(requestsPerMinute int) Option {
	return func(t *HTTPTransport) {
		if requestsPerMinute <= 0 {
			t.limiter = nil
			return
		}
		t.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(cfg BreakerConfig) Option {
	return func(t *HTTPTransport) {
		t.breaker = newBreaker(cfg)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(t *HTTPTransport) {
		t.userAgent = userAgent
	}
}

// New creates an HTTPTransport with the default timeout, rate limit and breaker.
func New(opts ...Option) *HTTPTransport {
	t := &HTTPTransport{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		breaker:    newBreaker(DefaultBreakerConfig()),
		userAgent:  DefaultUserAgent,
		maxBody:    maxBodyBytes,
	}
	WithRateLimit(DefaultRequestsPerMinute)(t)

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func newBreaker(cfg BreakerConfig) *gobreaker.CircuitBreaker {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = DefaultBreakerConfig().ConsecutiveFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrResponseTooLarge)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Transport", "Circuit breaker %s changed from %s to %s", name, from, to)
		},
	})
}

// BreakerState exposes the breaker state, mostly for diagnostics and tests.
func (t *HTTPTransport) BreakerState() gobreaker.State {
	return t.breaker.State()
}

// Post sends form as an application/x-www-form-urlencoded body to rawURL.
// A non-nil error means the request never produced an HTTP response.
func (t *HTTPTransport) Post(ctx context.Context, rawURL string, form url.Values, headers http.Header) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	result, err := t.breaker.Execute(func() (interface{}, error) {
		return t.do(ctx, rawURL, form, headers)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn("Transport", "Refusing POST %s: %v", redactURL(rawURL), err)
		}
		return nil, err
	}

	resp := result.(*Response)
	logging.Debug("Transport", "POST %s -> %d (%s)", redactURL(rawURL), resp.StatusCode, logging.Since(start))
	return resp, nil
}

func (t *HTTPTransport) do(ctx context.Context, rawURL string, form url.Values, headers http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes (HTTP %d)", ErrResponseTooLarge, t.maxBody, resp.StatusCode)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// redactURL strips the query string, which never carries anything useful for logs.
func redactURL(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
