// Package logging provides the structured, subsystem-tagged logger used across
// the withings client and CLI.
//
// It is a thin layer over Go's slog package: a package-level logger is configured
// once at startup and every call site names the subsystem it logs for.
//
// # Usage
//
//	import "withings/pkg/logging"
//
//	logging.InitWithFormat(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Client", "Fetched nonce in %s", logging.Since(start))
//	logging.Debug("Transport", "POST %s -> %d", url, status)
//	logging.Warn("Client", "Provider reported unauthorized, refreshing token")
//	logging.Error("TokenStore", err, "Failed to persist tokens")
//
// Calls made before initialization are dropped.
//
// # Subsystems
//
//   - Client: signing, nonce, token exchange and the retrying call wrapper
//   - Transport: HTTP requests, rate limiting and the circuit breaker
//   - Config: configuration loading
//   - TokenStore: the CLI token file
//   - CLI: command execution
//
// Token values and the client secret are never passed to the logger.
package logging
