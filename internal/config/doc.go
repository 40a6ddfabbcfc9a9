// Package config loads settings for the withings CLI.
//
// Configuration is assembled in layers, later layers winning:
//   - built-in defaults (GetDefaultConfig)
//   - the config file, ~/.config/withings/config.yaml unless --config is given;
//     .toml files are read as TOML, everything else as YAML
//   - a .env file in the working directory
//   - WITHINGS_* process environment variables
//
// The result is validated before use. Problems are reported as a single
// ConfigurationError whose DetailedError lists every invalid setting.
//
// # Example
//
//	baseURL: https://wbsapi.withings.net
//	clientID: my-app
//	clientSecret: s3cret
//	redirectURI: https://example.com/callback
//	maxAttempts: 3
//	backoffUnit: 1s
//	log:
//	  level: debug
//	  file: /var/log/withings.log
//
// # Environment
//
// WITHINGS_CLIENT_ID, WITHINGS_CLIENT_SECRET, WITHINGS_BASE_URL,
// WITHINGS_ACCESS_TOKEN, WITHINGS_REFRESH_TOKEN, WITHINGS_REDIRECT_URI,
// WITHINGS_TOKEN_FILE, WITHINGS_MAX_ATTEMPTS, WITHINGS_BACKOFF_UNIT,
// WITHINGS_TIMEOUT, WITHINGS_RATE_LIMIT, WITHINGS_SIGNED_TOKEN_REQUESTS,
// WITHINGS_LOG_LEVEL, WITHINGS_LOG_FORMAT and WITHINGS_LOG_FILE.
package config
