package config

import (
	"withings/pkg/transport"
	"withings/pkg/withings"
)

const (
	// DefaultAuthorizeURL is the consent page users are sent to.
	DefaultAuthorizeURL = "https://account.withings.com/oauth2_user/authorize2"

	// DefaultTokenFileName is the token file inside the config directory.
	DefaultTokenFileName = "tokens.json"
)

// DefaultScopes grants access to the services the CLI can query.
var DefaultScopes = []string{"user.info", "user.metrics", "user.activity"}

// GetDefaultConfig returns the configuration used before any file or environment
// overrides are applied.
func GetDefaultConfig() Config {
	return Config{
		BaseURL:      withings.DefaultBaseURL,
		AuthorizeURL: DefaultAuthorizeURL,
		Scopes:       append([]string(nil), DefaultScopes...),
		MaxAttempts:  withings.DefaultMaxAttempts,
		BackoffUnit:  withings.DefaultBackoffUnit.String(),
		Timeout:      transport.DefaultTimeout.String(),
		RateLimit:    transport.DefaultRequestsPerMinute,
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
