package cmd

import (
	"fmt"
	"strings"
	"time"

	"withings/pkg/withings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Withings authentication",
		Long: `Manage the OAuth2 tokens used by the data commands.

Examples:
  withings auth url                      # Print the authorization link
  withings auth exchange CODE            # Trade the code from the callback for tokens
  withings auth status                   # Show stored token information
  withings auth refresh                  # Force a token refresh
  withings auth logout                   # Remove stored tokens`,
	}

	cmd.AddCommand(newAuthURLCmd(opts))
	cmd.AddCommand(newAuthExchangeCmd(opts))
	cmd.AddCommand(newAuthRefreshCmd(opts))
	cmd.AddCommand(newAuthStatusCmd(opts))
	cmd.AddCommand(newAuthLogoutCmd(opts))
	return cmd
}

func newAuthURLCmd(opts *rootOptions) *cobra.Command {
	var (
		state  string
		scopes []string
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print the URL where the user grants access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.RedirectURI == "" {
				return fmt.Errorf("redirectURI must be configured to build an authorization URL")
			}
			if len(scopes) == 0 {
				scopes = cfg.Scopes
			}
			if state == "" {
				state = uuid.NewString()
			}

			oauthCfg := oauth2.Config{
				ClientID:    cfg.ClientID,
				RedirectURL: cfg.RedirectURI,
				// Withings expects a comma-separated scope list.
				Scopes: []string{strings.Join(scopes, ",")},
				Endpoint: oauth2.Endpoint{
					AuthURL:  cfg.AuthorizeURL,
					TokenURL: cfg.BaseURL + withings.PathOAuth2,
				},
			}

			fmt.Fprintln(cmd.OutOrStdout(), oauthCfg.AuthCodeURL(state))
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "opaque state echoed back to the redirect URI (default: random)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scopes to request (default from config)")
	return cmd
}

func newAuthExchangeCmd(opts *rootOptions) *cobra.Command {
	var (
		redirectURI string
		showTokens  bool
	)

	cmd := &cobra.Command{
		Use:   "exchange CODE",
		Short: "Exchange an authorization code for tokens and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, false)
			if err != nil {
				return err
			}
			if redirectURI == "" {
				redirectURI = s.cfg.RedirectURI
			}

			resp, err := s.client.ExchangeCode(cmd.Context(), args[0], redirectURI)
			if err != nil {
				return err
			}
			if err := s.saveExchanged(resp, time.Now()); err != nil {
				return err
			}

			raw := resp.Raw
			if !showTokens {
				raw = redactTokens(raw)
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}

	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI used for the authorization (default from config)")
	cmd.Flags().BoolVar(&showTokens, "show-tokens", false, "print token values instead of redacting them")
	return cmd
}

func newAuthRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a token refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, true)
			if err != nil {
				return err
			}
			if err := s.client.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := s.saveIfRefreshed(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Access token refreshed\n", text.FgGreen.Sprint("✓"))
			return nil
		},
	}
}

func newAuthLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, false)
			if err != nil {
				return err
			}
			if err := s.store.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed tokens from %s\n", text.FgGreen.Sprint("✓"), s.store.Path())
			return nil
		},
	}
}
