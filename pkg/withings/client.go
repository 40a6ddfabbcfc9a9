package withings

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"withings/pkg/transport"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultMaxAttempts bounds the requests made for one logical call while the
	// provider keeps answering "unauthorized".
	DefaultMaxAttempts = 3

	// DefaultBackoffUnit is the first sleep between attempts; it doubles each time.
	DefaultBackoffUnit = time.Second
)

// API paths relative to the base URL.
const (
	PathSignature = "/v2/signature"
	PathOAuth2    = "/v2/oauth2"
	PathMeasure   = "/measure"
	PathMeasureV2 = "/v2/measure"
	PathSleep     = "/v2/sleep"
)

// Action names understood by the provider.
const (
	ActionGetNonce     = "getnonce"
	ActionRequestToken = "requesttoken"
	ActionGetMeas      = "getmeas"
	ActionGetActivity  = "getactivity"
	ActionGetSummary   = "getsummary"
)

// Transport posts a url-encoded form and returns the raw HTTP outcome. It must
// return an error only for network-level failures; HTTP error statuses are
// reported through the response.
type Transport interface {
	Post(ctx context.Context, url string, form url.Values, headers http.Header) (*transport.Response, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client performs signed and authenticated calls on behalf of one Credentials
// value. Calls are synchronous; the client never issues requests concurrently
// on its own.
type Client struct {
	creds     *Credentials
	transport Transport

	maxAttempts         int
	backoffUnit         time.Duration
	sleep               Sleeper
	now                 func() time.Time
	signedTokenRequests bool

	// refreshGroup collapses concurrent refreshes of the same credentials.
	refreshGroup singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithTransport sets the transport used for every request.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithMaxAttempts sets how many requests one logical call may make while the
// provider reports "unauthorized". Values below 1 are treated as 1.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.maxAttempts = n
	}
}

// WithBackoffUnit sets the first sleep between attempts.
func WithBackoffUnit(d time.Duration) Option {
	return func(c *Client) {
		c.backoffUnit = d
	}
}

// WithSleeper replaces the function used to wait between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleep = s
	}
}

// WithClock replaces the clock used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithSignedTokenRequests makes token requests authenticate with a nonce and
// signature instead of sending the client secret.
func WithSignedTokenRequests(enabled bool) Option {
	return func(c *Client) {
		c.signedTokenRequests = enabled
	}
}

// NewClient creates a Client for creds. Without WithTransport it uses a default
// transport.HTTPTransport.
func NewClient(creds *Credentials, opts ...Option) *Client {
	c := &Client{
		creds:       creds,
		maxAttempts: DefaultMaxAttempts,
		backoffUnit: DefaultBackoffUnit,
		sleep:       sleepContext,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = transport.New()
	}

	return c
}

// Credentials returns the credentials this client reads and updates.
func (c *Client) Credentials() *Credentials {
	return c.creds
}

func (c *Client) timestamp() int64 {
	return c.now().Unix()
}

// post sends form to path and wraps network failures in TransportError. The HTTP
// status is not inspected.
func (c *Client) post(ctx context.Context, path string, form url.Values, headers http.Header) (*Response, error) {
	target := c.creds.BaseURL() + path
	resp, err := c.transport.Post(ctx, target, form, headers)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	return &Response{HTTPStatus: resp.StatusCode, Raw: resp.Body}, nil
}

// authHeaders returns the bearer header for the current access token, if any.
func (c *Client) authHeaders() http.Header {
	headers := http.Header{}
	if access := c.creds.AccessToken(); access != "" {
		headers.Set("Authorization", "Bearer "+access)
	}
	return headers
}

// sleepContext waits for d unless ctx is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
