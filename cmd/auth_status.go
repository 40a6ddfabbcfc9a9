package cmd

import (
	"fmt"
	"io"
	"time"

	"withings/internal/tokenstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newAuthStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored token information",
		Long: `Show the configured application and the state of the stored tokens.

No request is made; token values are never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, false)
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), s, time.Now())
			return nil
		},
	}
}

func renderStatus(w io.Writer, s *session, now time.Time) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})

	creds := s.client.Credentials()
	t.AppendRow(table.Row{"Base URL", creds.BaseURL()})
	t.AppendRow(table.Row{"Client ID", creds.ClientID()})
	t.AppendRow(table.Row{"Token file", s.store.Path()})
	t.AppendRow(table.Row{"Authenticated", authenticatedText(creds.Authenticated())})

	if s.stored != nil {
		if s.stored.UserID != "" {
			t.AppendRow(table.Row{"User ID", s.stored.UserID})
		}
		t.AppendRow(table.Row{"Updated", s.stored.UpdatedAt.Local().Format(time.RFC3339)})
		t.AppendRow(table.Row{"Access token", expiryText(s.stored, now)})
	}

	t.Render()
}

func authenticatedText(ok bool) string {
	if ok {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgRed.Sprint("no")
}

// expiryText describes when the stored access token expires.
func expiryText(tok *tokenstore.Token, now time.Time) string {
	if tok.Expiry.IsZero() {
		return "expiry unknown"
	}
	if tok.Expired(now) {
		return text.FgYellow.Sprintf("expired %s ago (refreshed on next use)", formatDuration(now.Sub(tok.Expiry)))
	}
	return fmt.Sprintf("valid for %s", formatDuration(tok.Expiry.Sub(now)))
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
