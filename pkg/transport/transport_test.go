package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_SendsFormAndHeaders(t *testing.T) {
	var gotForm url.Values
	var gotHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotHeaders = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":0,"body":{}}`)
	}))
	defer server.Close()

	tr := New(WithHTTPClient(server.Client()), WithRateLimit(0), WithUserAgent("test-agent"))

	headers := http.Header{}
	headers.Set("Authorization", "Bearer abc")

	resp, err := tr.Post(context.Background(), server.URL+"/v2/measure", url.Values{
		"action":     {"getactivity"},
		"lastupdate": {"0"},
	}, headers)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"status":0,"body":{}}`, string(resp.Body))

	assert.Equal(t, "getactivity", gotForm.Get("action"))
	assert.Equal(t, "0", gotForm.Get("lastupdate"))
	assert.Equal(t, "Bearer abc", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/x-www-form-urlencoded", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "application/json", gotHeaders.Get("Accept"))
	assert.Equal(t, "test-agent", gotHeaders.Get("User-Agent"))
}

func TestPost_HTTPErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer server.Close()

	tr := New(WithHTTPClient(server.Client()), WithRateLimit(0))

	resp, err := tr.Post(context.Background(), server.URL, url.Values{}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, "upstream down", string(resp.Body))
	assert.Equal(t, gobreaker.StateClosed, tr.BreakerState())
}

func TestPost_NetworkFailureIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	tr := New(WithRateLimit(0))

	resp, err := tr.Post(context.Background(), addr, url.Values{}, nil)
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestPost_BreakerOpensAfterConsecutiveNetworkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	tr := New(
		WithRateLimit(0),
		WithBreaker(BreakerConfig{Name: "test", ConsecutiveFailures: 2, Timeout: time.Minute}),
	)

	for i := 0; i < 2; i++ {
		_, err := tr.Post(context.Background(), addr, url.Values{}, nil)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, tr.BreakerState())

	_, err := tr.Post(context.Background(), addr, url.Values{}, nil)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "expected open-state error, got %v", err)
}

func TestPost_OversizedBodyIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":0,"body":{"padding":"0123456789"}}`)
	}))
	defer server.Close()

	tr := New(
		WithHTTPClient(server.Client()),
		WithRateLimit(0),
		WithBreaker(BreakerConfig{Name: "test", ConsecutiveFailures: 1, Timeout: time.Minute}),
	)
	tr.maxBody = 16

	resp, err := tr.Post(context.Background(), server.URL, url.Values{}, nil)
	assert.Nil(t, resp)
	require.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Equal(t, gobreaker.StateClosed, tr.BreakerState(), "oversized replies are not network failures")

	// A body exactly at the limit is accepted
	tr.maxBody = int64(len(`{"status":0,"body":{"padding":"0123456789"}}`))
	resp, err = tr.Post(context.Background(), server.URL, url.Values{}, nil)
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestPost_RateLimiterHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	tr := New(WithHTTPClient(server.Client()), WithRateLimit(1))

	_, err := tr.Post(context.Background(), server.URL, url.Values{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = tr.Post(ctx, server.URL, url.Values{}, nil)
	assert.Error(t, err, "second request should wait on the limiter and fail with the context")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://wbsapi.withings.net/v2/oauth2", redactURL("https://wbsapi.withings.net/v2/oauth2?code=x"))
	assert.Equal(t, "https://wbsapi.withings.net/measure", redactURL("https://wbsapi.withings.net/measure"))
}
