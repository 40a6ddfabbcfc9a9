package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"withings/internal/config"
	"withings/internal/tokenstore"
	"withings/pkg/logging"
	"withings/pkg/withings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/natefinch/lumberjack.v2"
)

// redactedValue replaces token values in printed responses.
const redactedValue = "[REDACTED]"

// session bundles what a command needs to talk to the API.
type session struct {
	cfg    config.Config
	client *withings.Client
	store  *tokenstore.Store

	// stored is the token file content at start, nil when there was none.
	stored *tokenstore.Token
	// seededAccess and seededRefresh are the pair the client started with.
	seededAccess  string
	seededRefresh string
}

// loadConfig reads the configuration and initializes logging from it.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.Options{Path: o.configPath})
	if err != nil {
		var ce *config.ConfigurationError
		if errors.As(err, &ce) {
			return config.Config{}, errors.New(ce.DetailedError())
		}
		return config.Config{}, err
	}

	if err := o.initLogging(cfg.Log, cmd.ErrOrStderr()); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// initLogging applies the log settings, letting flags override the config.
func (o *rootOptions) initLogging(lc config.LogConfig, stderr io.Writer) error {
	if o.logLevel != "" {
		lc.Level = o.logLevel
	}
	if o.logFormat != "" {
		lc.Format = o.logFormat
	}
	if o.logFile != "" {
		lc.File = o.logFile
	}

	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return err
	}

	var out io.Writer = stderr
	if lc.File != "" {
		out = &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
		}
	}

	logging.InitWithFormat(level, lc.Format, out)
	return nil
}

// newSession loads the config and token file and builds a client. When
// requireTokens is set the command fails unless a token pair is available.
func (o *rootOptions) newSession(cmd *cobra.Command, requireTokens bool) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:   cfg,
		store: tokenstore.New(cfg.TokenFile),
	}

	creds := cfg.Credentials()
	stored, err := s.store.Load()
	switch {
	case err == nil:
		s.stored = stored
		// Config tokens only seed the first run. Refresh tokens rotate, so the
		// file always holds the newer pair once it exists.
		creds.SetTokens(stored.AccessToken, stored.RefreshToken)
	case errors.Is(err, tokenstore.ErrNotFound):
	default:
		logging.Warn("CLI", "Ignoring unreadable token file: %v", err)
	}

	if requireTokens && !creds.Authenticated() {
		return nil, &notAuthenticatedError{tokenFile: cfg.TokenFile}
	}

	s.seededAccess, s.seededRefresh = creds.Tokens()
	s.client = withings.NewClient(creds, cfg.ClientOptions()...)
	return s, nil
}

// saveIfRefreshed writes the token pair back when a call refreshed it.
func (s *session) saveIfRefreshed() error {
	access, refresh := s.client.Credentials().Tokens()
	if access == s.seededAccess && refresh == s.seededRefresh {
		return nil
	}

	tok := tokenstore.Token{AccessToken: access, RefreshToken: refresh}
	if s.stored != nil {
		tok.UserID = s.stored.UserID
	}
	if err := s.store.Save(tok); err != nil {
		return fmt.Errorf("tokens were refreshed but could not be saved: %w", err)
	}
	s.seededAccess, s.seededRefresh = access, refresh
	return nil
}

// saveExchanged stores the pair from an exchange reply with its metadata.
func (s *session) saveExchanged(resp *withings.Response, now time.Time) error {
	access, refresh := s.client.Credentials().Tokens()
	tok := tokenstore.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       resp.Get("body.userid").String(),
	}
	if secs := resp.Get("body.expires_in").Int(); secs > 0 {
		tok.Expiry = now.Add(time.Duration(secs) * time.Second)
	}
	if err := s.store.Save(tok); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	s.seededAccess, s.seededRefresh = access, refresh
	return nil
}

// redactTokens blanks the token fields of a token reply.
func redactTokens(raw []byte) []byte {
	out := raw
	for _, path := range []string{"body.access_token", "body.refresh_token"} {
		if !gjson.GetBytes(out, path).Exists() {
			continue
		}
		redacted, err := sjson.SetBytes(out, path, redactedValue)
		if err != nil {
			continue
		}
		out = redacted
	}
	return out
}

// printJSON writes raw indented, falling back to the bytes as received.
func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, werr := fmt.Fprintln(w, string(raw))
		return werr
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
