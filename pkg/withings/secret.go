package withings

// Secret wraps a sensitive string such as the client secret to prevent
// accidental logging.
//
// Secret implements fmt.Stringer, fmt.GoStringer and the text/JSON marshalers so
// that every formatting or serialization path yields "[REDACTED]". The wrapped
// value is only reachable through Value.
type Secret struct {
	value string
}

// NewSecret creates a Secret wrapping value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Value returns the wrapped value. Never log the result.
func (s Secret) Value() string {
	return s.value
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "withings.Secret{[REDACTED]}"
}

// IsEmpty returns true if the wrapped value is empty.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
