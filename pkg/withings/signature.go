package withings

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

// Signature computes the lowercase hex HMAC-SHA256 of the comma-joined values
// action, clientID, timestamp and nonce, keyed by secret. An empty nonce is left
// out of the message, which is how the nonce request itself is signed.
func Signature(secret, action, clientID string, timestamp int64, nonce string) string {
	values := []string{action, clientID, strconv.FormatInt(timestamp, 10)}
	if nonce != "" {
		values = append(values, nonce)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(values, ",")))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignedParams are the values sent with a signed request.
type SignedParams struct {
	Action    string
	ClientID  string
	Timestamp int64
	Nonce     string
	Signature string
}

// Form returns the parameters as form fields. The nonce field is omitted when
// empty.
func (p *SignedParams) Form() url.Values {
	form := url.Values{
		"action":    {p.Action},
		"client_id": {p.ClientID},
		"timestamp": {strconv.FormatInt(p.Timestamp, 10)},
		"signature": {p.Signature},
	}
	if p.Nonce != "" {
		form.Set("nonce", p.Nonce)
	}
	return form
}

// Sign produces the signed parameters for action. Every action except getnonce
// first obtains a fresh nonce from the provider; if that fails a SigningError is
// returned and nothing is signed.
func (c *Client) Sign(ctx context.Context, action string) (*SignedParams, error) {
	var nonce string
	if action != ActionGetNonce {
		n, err := c.Nonce(ctx)
		if err != nil {
			return nil, &SigningError{Action: action, Err: err}
		}
		nonce = n
	}
	return c.sign(action, nonce), nil
}

// sign signs action with a nonce that is already known.
func (c *Client) sign(action, nonce string) *SignedParams {
	ts := c.timestamp()
	return &SignedParams{
		Action:    action,
		ClientID:  c.creds.ClientID(),
		Timestamp: ts,
		Nonce:     nonce,
		Signature: Signature(c.creds.ClientSecret().Value(), action, c.creds.ClientID(), ts, nonce),
	}
}
