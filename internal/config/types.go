package config

// Config is the top-level configuration for the withings CLI.
type Config struct {
	// BaseURL is the API host, e.g. https://wbsapi.withings.net.
	BaseURL string `yaml:"baseURL" toml:"baseURL" validate:"required,url"`
	// ClientID and ClientSecret identify the registered application.
	ClientID     string `yaml:"clientID" toml:"clientID" validate:"required"`
	ClientSecret string `yaml:"clientSecret" toml:"clientSecret" validate:"required"`

	// AccessToken and RefreshToken optionally pre-seed a token pair. They must be
	// set together.
	AccessToken  string `yaml:"accessToken,omitempty" toml:"accessToken,omitempty" validate:"required_with=RefreshToken"`
	RefreshToken string `yaml:"refreshToken,omitempty" toml:"refreshToken,omitempty" validate:"required_with=AccessToken"`

	// RedirectURI is the callback registered with the application.
	RedirectURI string `yaml:"redirectURI,omitempty" toml:"redirectURI,omitempty" validate:"omitempty,url"`
	// AuthorizeURL is the user-facing consent page.
	AuthorizeURL string   `yaml:"authorizeURL,omitempty" toml:"authorizeURL,omitempty" validate:"required,url"`
	Scopes       []string `yaml:"scopes,omitempty" toml:"scopes,omitempty"`

	// TokenFile is where the CLI keeps the token pair between runs.
	TokenFile string `yaml:"tokenFile,omitempty" toml:"tokenFile,omitempty"`

	MaxAttempts int    `yaml:"maxAttempts,omitempty" toml:"maxAttempts,omitempty" validate:"min=1,max=10"`
	BackoffUnit string `yaml:"backoffUnit,omitempty" toml:"backoffUnit,omitempty" validate:"duration"`
	Timeout     string `yaml:"timeout,omitempty" toml:"timeout,omitempty" validate:"duration"`
	// RateLimit is the number of requests allowed per minute; 0 disables limiting.
	RateLimit int `yaml:"rateLimit" toml:"rateLimit" validate:"min=0"`
	// SignedTokenRequests authenticates token requests with a nonce signature
	// instead of the client secret.
	SignedTokenRequests bool   `yaml:"signedTokenRequests,omitempty" toml:"signedTokenRequests,omitempty"`
	UserAgent           string `yaml:"userAgent,omitempty" toml:"userAgent,omitempty"`

	Log LogConfig `yaml:"log,omitempty" toml:"log,omitempty"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty" validate:"oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty" validate:"oneof=text json"`
	// File, when set, receives logs instead of stderr and is rotated by size.
	File       string `yaml:"file,omitempty" toml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"maxSizeMB,omitempty" toml:"maxSizeMB,omitempty" validate:"min=0"`
	MaxBackups int    `yaml:"maxBackups,omitempty" toml:"maxBackups,omitempty" validate:"min=0"`
}
