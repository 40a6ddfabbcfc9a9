package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"withings/pkg/withings"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates the stored tokens are missing or no longer usable.
	ExitCodeAuthRequired = 2
	// ExitCodeProviderError indicates the API answered with a failure status.
	ExitCodeProviderError = 3
	// ExitCodeTransportError indicates the API could not be reached.
	ExitCodeTransportError = 4
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
}

// rootCmd represents the base command for the withings application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "withings",
		Short: "Talk to the Withings health data API",
		Long: `withings authenticates against the Withings public API and fetches
body measures, activity and sleep summaries.

Run "withings auth url" to obtain an authorization link, then
"withings auth exchange CODE" to store tokens. Data commands refresh the
access token automatically when the API reports it expired.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $HOME/.config/withings/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file with size-based rotation (overrides config)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAuthCmd(opts))
	cmd.AddCommand(newNonceCmd(opts))
	cmd.AddCommand(newSignCmd(opts))
	cmd.AddCommand(newMeasuresCmd(opts))
	cmd.AddCommand(newActivityCmd(opts))
	cmd.AddCommand(newSleepCmd(opts))

	return cmd
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "withings version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	// Authentication problems first: token errors may wrap transport failures.
	var notAuthenticated *notAuthenticatedError
	if errors.As(err, &notAuthenticated) || withings.IsAuthError(err) {
		return ExitCodeAuthRequired
	}

	var providerErr *withings.ProviderError
	var nonceErr *withings.NonceUnavailableError
	if errors.As(err, &providerErr) || errors.As(err, &nonceErr) {
		return ExitCodeProviderError
	}

	var transportErr *withings.TransportError
	if errors.As(err, &transportErr) {
		return ExitCodeTransportError
	}

	return ExitCodeError
}

// notAuthenticatedError is returned when a command needs tokens and none are stored.
type notAuthenticatedError struct {
	tokenFile string
}

func (e *notAuthenticatedError) Error() string {
	return "not authenticated: no tokens in " + e.tokenFile + `; run "withings auth url" and "withings auth exchange CODE"`
}

