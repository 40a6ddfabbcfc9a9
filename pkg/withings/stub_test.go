package withings

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"withings/pkg/transport"
)

const testBaseURL = "https://api.test"

// reply is one scripted transport outcome.
type reply struct {
	status int
	body   string
	err    error
}

func okReply(body string) reply { return reply{status: http.StatusOK, body: body} }

// sentRequest records what the client handed to the transport.
type sentRequest struct {
	Path    string
	Form    url.Values
	Headers http.Header
}

// stubTransport replays scripted replies per path. The last reply for a path is
// repeated once the script runs out.
type stubTransport struct {
	mu       sync.Mutex
	replies  map[string][]reply
	requests []sentRequest
}

func newStub() *stubTransport {
	return &stubTransport{replies: make(map[string][]reply)}
}

func (s *stubTransport) on(path string, replies ...reply) *stubTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[path] = append(s.replies[path], replies...)
	return s
}

func (s *stubTransport) Post(_ context.Context, rawURL string, form url.Values, headers http.Header) (*transport.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.TrimPrefix(rawURL, testBaseURL)
	s.requests = append(s.requests, sentRequest{Path: path, Form: form, Headers: headers.Clone()})

	script := s.replies[path]
	if len(script) == 0 {
		return &transport.Response{StatusCode: http.StatusNotFound, Body: []byte(`{"status":404}`)}, nil
	}
	r := script[0]
	if len(script) > 1 {
		s.replies[path] = script[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return &transport.Response{StatusCode: r.status, Body: []byte(r.body)}, nil
}

// sent returns the requests made to path.
func (s *stubTransport) sent(path string) []sentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentRequest
	for _, r := range s.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// sleepRecorder captures backoff sleeps instead of blocking.
type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	r.slept = append(r.slept, d)
	r.mu.Unlock()
	return nil
}

var fixedNow = time.Unix(1700000000, 0)

func newTestClient(stub *stubTransport, opts ...Option) (*Client, *Credentials, *sleepRecorder) {
	creds := NewCredentials(testBaseURL, "client-id", "client-secret", WithTokens("old-access", "old-refresh"))
	rec := &sleepRecorder{}
	all := append([]Option{
		WithTransport(stub),
		WithSleeper(rec.sleep),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewClient(creds, all...), creds, rec
}

const (
	nonceReply        = `{"status":0,"body":{"nonce":"abc123"}}`
	freshTokensReply  = `{"status":0,"body":{"userid":"42","access_token":"new-access","refresh_token":"new-refresh","expires_in":10800,"scope":"user.metrics","token_type":"Bearer"}}`
	unauthorizedReply = `{"status":401,"body":{},"error":"XRequestID: Not provided invalid_token: The access token provided is invalid"}`
	measuresReply     = `{"status":0,"body":{"updatetime":1700000000,"measuregrps":[{"grpid":1}]}}`
)

// transportFunc adapts a function to Transport, ignoring the request.
type transportFunc func() (*transport.Response, error)

func (f transportFunc) Post(context.Context, string, url.Values, http.Header) (*transport.Response, error) {
	return f()
}
