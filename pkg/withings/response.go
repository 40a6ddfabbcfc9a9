package withings

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Business status codes carried in the "status" field of every API envelope.
const (
	StatusOK           = 0
	StatusUnauthorized = 401
)

// Response is a provider reply: the HTTP status plus the raw JSON envelope
// {"status": int, "body": {...}, "error": "..."}.
type Response struct {
	HTTPStatus int
	Raw        []byte
}

// HTTPOK reports whether the HTTP status was 2xx.
func (r *Response) HTTPOK() bool {
	return r.HTTPStatus >= 200 && r.HTTPStatus < 300
}

// Status returns the business status and whether the envelope carried one.
func (r *Response) Status() (int, bool) {
	v := gjson.GetBytes(r.Raw, "status")
	if v.Type != gjson.Number {
		return 0, false
	}
	return int(v.Int()), true
}

// Get returns the value at a gjson path such as "body.nonce".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// Body returns the "body" member of the envelope.
func (r *Response) Body() gjson.Result {
	return r.Get("body")
}

// ErrorMessage returns the provider's "error" text, or "Unknown error".
func (r *Response) ErrorMessage() string {
	if msg := r.Get("error").String(); msg != "" {
		return msg
	}
	return "Unknown error"
}

// Decode unmarshals the whole envelope into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// stringAt returns the string at path, or "" when it is missing or not a string.
func (r *Response) stringAt(path string) string {
	v := r.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}
