package withings

import (
	"errors"
	"fmt"

	pkgstrings "withings/pkg/strings"
)

// ErrNoRefreshToken is returned (wrapped in TokenRefreshError) when a refresh is
// attempted without a stored refresh token.
var ErrNoRefreshToken = errors.New("no refresh token available")

// TransportError reports a request that failed at the network level or came back
// with a non-2xx HTTP status. It is never retried by the client.
type TransportError struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error calling %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transport error calling %s: unexpected HTTP status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying network error, if any.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NonceUnavailableError reports a nonce response without a usable body.nonce.
type NonceUnavailableError struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *NonceUnavailableError) Error() string {
	return fmt.Sprintf("nonce not found in response (HTTP %d)", e.StatusCode)
}

// SigningError reports that a signature could not be produced because the nonce
// it depends on could not be obtained.
type SigningError struct {
	Action string
	Err    error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign %q request: %v", e.Action, e.Err)
}

// Unwrap returns the cause.
func (e *SigningError) Unwrap() error {
	return e.Err
}

// TokenExchangeError reports a failed authorization-code exchange. Body holds the
// raw provider reply for diagnostics.
type TokenExchangeError struct {
	StatusCode int
	Status     int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *TokenExchangeError) Error() string {
	return tokenErrorString("failed to get access token", e.StatusCode, e.Body, e.Err)
}

// Unwrap returns the cause.
func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}

// TokenRefreshError reports a failed refresh. The stored tokens are unchanged.
type TokenRefreshError struct {
	StatusCode int
	Status     int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *TokenRefreshError) Error() string {
	return tokenErrorString("failed to refresh access token", e.StatusCode, e.Body, e.Err)
}

// Unwrap returns the cause.
func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}

func tokenErrorString(prefix string, statusCode int, body []byte, err error) string {
	switch {
	case len(body) > 0 && err != nil:
		return fmt.Sprintf("%s: %v (HTTP %d): %s", prefix, err, statusCode, pkgstrings.Snippet(body, pkgstrings.DefaultSnippetMaxLen))
	case len(body) > 0:
		return fmt.Sprintf("%s (HTTP %d): %s", prefix, statusCode, pkgstrings.Snippet(body, pkgstrings.DefaultSnippetMaxLen))
	case err != nil:
		return fmt.Sprintf("%s: %v", prefix, err)
	default:
		return prefix
	}
}

// RetriesExhaustedError reports that the provider kept answering "unauthorized"
// until the attempt limit was reached.
type RetriesExhaustedError struct {
	Action   string
	Attempts int
}

// Error implements the error interface.
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s: still unauthorized after %d attempts (with exponential backoff)", e.Action, e.Attempts)
}

// ProviderError is a business-level failure reported in the response envelope.
type ProviderError struct {
	Action  string
	Status  int
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s failed with provider status %d: %s", e.Action, e.Status, e.Message)
}

// IsAuthError reports whether err means the stored credentials cannot be used and
// the user has to authenticate again.
func IsAuthError(err error) bool {
	var exchangeErr *TokenExchangeError
	var refreshErr *TokenRefreshError
	var exhaustedErr *RetriesExhaustedError
	return errors.As(err, &exchangeErr) ||
		errors.As(err, &refreshErr) ||
		errors.As(err, &exhaustedErr)
}
