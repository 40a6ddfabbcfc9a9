package withings

import (
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://wbsapi.withings.net"

// Credentials is the client identity plus the current token pair.
//
// The base URL, client ID and client secret are fixed at construction. The access
// and refresh tokens are either both absent (never authenticated) or replaced
// together by SetTokens after a successful exchange or refresh.
//
// Reads and writes of the pair are atomic. A Credentials value shared by several
// Clients still needs external serialization around refresh-and-retry sequences.
type Credentials struct {
	baseURL      string
	clientID     string
	clientSecret Secret

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// CredentialsOption configures Credentials at construction.
type CredentialsOption func(*Credentials)

// WithTokens pre-seeds a previously obtained token pair.
func WithTokens(accessToken, refreshToken string) CredentialsOption {
	return func(c *Credentials) {
		c.accessToken = accessToken
		c.refreshToken = refreshToken
	}
}

// NewCredentials creates Credentials for the given application. An empty baseURL
// selects DefaultBaseURL; a trailing slash is dropped.
func NewCredentials(baseURL, clientID, clientSecret string, opts ...CredentialsOption) *Credentials {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Credentials{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: NewSecret(clientSecret),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Credentials) BaseURL() string { return c.baseURL }

// ClientID returns the application client ID.
func (c *Credentials) ClientID() string { return c.clientID }

// ClientSecret returns the application secret.
func (c *Credentials) ClientSecret() Secret { return c.clientSecret }

// Tokens returns the current access and refresh token as a consistent pair.
func (c *Credentials) Tokens() (accessToken, refreshToken string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

// AccessToken returns the current access token, or "" if never authenticated.
func (c *Credentials) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// SetTokens replaces both tokens in one step.
func (c *Credentials) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
	c.mu.Unlock()
}

// Authenticated reports whether an access token is present.
func (c *Credentials) Authenticated() bool {
	return c.AccessToken() != ""
}

// HasRefreshToken reports whether a refresh token is present.
func (c *Credentials) HasRefreshToken() bool {
	_, refresh := c.Tokens()
	return refresh != ""
}

// OAuth2Token converts the pair to an oauth2.Token for use with
// golang.org/x/oauth2 based code. It returns nil when no access token is held.
func (c *Credentials) OAuth2Token() *oauth2.Token {
	access, refresh := c.Tokens()
	if access == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: refresh,
	}
}
