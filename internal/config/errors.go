package config

import (
	"fmt"
	"strings"
)

// ConfigurationError describes a configuration problem and where it came from.
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`
	ErrorType   string   `json:"errorType"` // io, parse, format or validation
	Message     string   `json:"message"`
	Details     []string `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ce.ErrorType, ce.FilePath, ce.Message)
}

// DetailedError returns a multi-line message with all context
func (ce *ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration error (%s)", ce.ErrorType))
	parts = append(parts, fmt.Sprintf("  Source: %s", ce.FilePath))
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	for _, detail := range ce.Details {
		parts = append(parts, fmt.Sprintf("    - %s", detail))
	}

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}
