package withings

import (
	"context"

	"withings/pkg/logging"
)

// Nonce requests a one-time nonce from the signature service. The request is
// signed over action, client ID and timestamp only.
//
// A reply without body.nonce yields NonceUnavailableError whatever its HTTP
// status. Network failures and non-2xx replies that do carry a nonce yield
// TransportError.
func (c *Client) Nonce(ctx context.Context) (string, error) {
	params := c.sign(ActionGetNonce, "")

	resp, err := c.post(ctx, PathSignature, params.Form(), nil)
	if err != nil {
		logging.Error("Client", err, "Nonce request failed")
		return "", err
	}

	nonce := resp.stringAt("body.nonce")
	if nonce == "" {
		return "", &NonceUnavailableError{StatusCode: resp.HTTPStatus, Body: resp.Raw}
	}
	if !resp.HTTPOK() {
		return "", &TransportError{URL: c.creds.BaseURL() + PathSignature, StatusCode: resp.HTTPStatus, Body: resp.Raw}
	}

	logging.Debug("Client", "Obtained nonce")
	return nonce, nil
}
