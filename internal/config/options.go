package config

import (
	"time"

	"withings/pkg/transport"
	"withings/pkg/withings"
)

// parseDuration returns the duration in s, or fallback when s is empty. Values
// have already passed validation.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Credentials builds the client credentials, seeding tokens from the config
// when both are present.
func (c Config) Credentials() *withings.Credentials {
	var opts []withings.CredentialsOption
	if c.AccessToken != "" && c.RefreshToken != "" {
		opts = append(opts, withings.WithTokens(c.AccessToken, c.RefreshToken))
	}
	return withings.NewCredentials(c.BaseURL, c.ClientID, c.ClientSecret, opts...)
}

// TransportOptions converts the transport settings.
func (c Config) TransportOptions() []transport.Option {
	opts := []transport.Option{
		transport.WithTimeout(parseDuration(c.Timeout, transport.DefaultTimeout)),
		transport.WithRateLimit(c.RateLimit),
	}
	if c.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(c.UserAgent))
	}
	return opts
}

// ClientOptions converts the retry and signing settings, using a transport
// built from TransportOptions.
func (c Config) ClientOptions() []withings.Option {
	return []withings.Option{
		withings.WithTransport(transport.New(c.TransportOptions()...)),
		withings.WithMaxAttempts(c.MaxAttempts),
		withings.WithBackoffUnit(parseDuration(c.BackoffUnit, withings.DefaultBackoffUnit)),
		withings.WithSignedTokenRequests(c.SignedTokenRequests),
	}
}
