package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"withings/pkg/logging"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/withings"
	configFileName = "config.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "WITHINGS_"
)

// osUserHomeDir is swapped in tests.
var osUserHomeDir = os.UserHomeDir

// DefaultConfigDir returns ~/.config/withings.
func DefaultConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Options controls where Load looks for its inputs.
type Options struct {
	// Path is the config file. Empty selects ~/.config/withings/config.yaml.
	Path string
	// DotEnvPath is a .env file merged under the process environment. Empty
	// selects .env in the working directory.
	DotEnvPath string
	// LookupEnv reads the process environment; nil selects os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds the configuration from defaults, the config file, a .env file and
// WITHINGS_* environment variables, in increasing order of precedence, then
// validates the result.
func Load(opts Options) (Config, error) {
	cfg := GetDefaultConfig()

	path := opts.Path
	if path == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(dir, configFileName)
	}

	if err := loadFile(path, &cfg); err != nil {
		return Config{}, err
	}

	dotEnvPath := opts.DotEnvPath
	if dotEnvPath == "" {
		dotEnvPath = ".env"
	}
	dotEnv, err := godotenv.Read(dotEnvPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("ConfigLoader", "Failed to read %s: %v", dotEnvPath, err)
		}
		dotEnv = nil
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotEnv[key]
		return v, ok
	}); err != nil {
		return Config{}, err
	}

	if cfg.TokenFile == "" {
		cfg.TokenFile = filepath.Join(filepath.Dir(path), DefaultTokenFileName)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes path into cfg according to its extension. A missing file
// leaves cfg untouched.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config file found at %s, using defaults", path)
			return nil
		}
		return &ConfigurationError{FilePath: path, ErrorType: "io", Message: err.Error()}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, cfg)
	default:
		return &ConfigurationError{
			FilePath:  path,
			ErrorType: "format",
			Message:   fmt.Sprintf("unsupported config file extension %q", filepath.Ext(path)),
			Suggestions: []string{
				"use a .yaml, .yml or .toml file",
			},
		}
	}
	if err != nil {
		return &ConfigurationError{FilePath: path, ErrorType: "parse", Message: err.Error()}
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return nil
}

// applyEnv overrides cfg fields from WITHINGS_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	stringFields := map[string]*string{
		"BASE_URL":      &cfg.BaseURL,
		"CLIENT_ID":     &cfg.ClientID,
		"CLIENT_SECRET": &cfg.ClientSecret,
		"ACCESS_TOKEN":  &cfg.AccessToken,
		"REFRESH_TOKEN": &cfg.RefreshToken,
		"REDIRECT_URI":  &cfg.RedirectURI,
		"TOKEN_FILE":    &cfg.TokenFile,
		"BACKOFF_UNIT":  &cfg.BackoffUnit,
		"TIMEOUT":       &cfg.Timeout,
		"LOG_LEVEL":     &cfg.Log.Level,
		"LOG_FORMAT":    &cfg.Log.Format,
		"LOG_FILE":      &cfg.Log.File,
	}
	for name, field := range stringFields {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = v
		}
	}

	intFields := map[string]*int{
		"MAX_ATTEMPTS": &cfg.MaxAttempts,
		"RATE_LIMIT":   &cfg.RateLimit,
	}
	for name, field := range intFields {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{
				FilePath:  "environment",
				ErrorType: "parse",
				Message:   fmt.Sprintf("%s%s must be an integer, got %q", EnvPrefix, name, v),
			}
		}
		*field = n
	}

	if v, ok := lookup(EnvPrefix + "SIGNED_TOKEN_REQUESTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigurationError{
				FilePath:  "environment",
				ErrorType: "parse",
				Message:   fmt.Sprintf("%sSIGNED_TOKEN_REQUESTS must be a boolean, got %q", EnvPrefix, v),
			}
		}
		cfg.SignedTokenRequests = b
	}

	return nil
}
