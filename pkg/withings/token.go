package withings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"withings/pkg/logging"
)

// OAuth2 grant types used with the requesttoken action.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

var errMissingTokens = errors.New("response does not contain both access_token and refresh_token")

// ExchangeCode trades an authorization code for a token pair. On success both
// tokens are stored on the credentials and the full provider reply is returned so
// callers can read fields such as body.userid or body.expires_in.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*Response, error) {
	form, err := c.tokenForm(ctx, GrantAuthorizationCode)
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	resp, err := c.post(ctx, PathOAuth2, form, nil)
	if err != nil {
		return nil, &TokenExchangeError{Err: err}
	}

	access, refresh, status, err := tokenPair(resp)
	if err != nil {
		logging.Error("Client", err, "Authorization code exchange rejected (HTTP %d)", resp.HTTPStatus)
		return nil, &TokenExchangeError{StatusCode: resp.HTTPStatus, Status: status, Body: resp.Raw, Err: err}
	}

	c.creds.SetTokens(access, refresh)
	logging.Info("Client", "Exchanged authorization code for tokens")
	return resp, nil
}

// Refresh obtains a new token pair with the stored refresh token. Both tokens are
// replaced on success; on any failure a TokenRefreshError is returned and the
// previous pair is kept. Concurrent calls on one Client share a single request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, shared := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	})
	if shared {
		logging.Debug("Client", "Joined an in-flight token refresh")
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	_, refreshToken := c.creds.Tokens()
	if refreshToken == "" {
		return &TokenRefreshError{Err: ErrNoRefreshToken}
	}

	form, err := c.tokenForm(ctx, GrantRefreshToken)
	if err != nil {
		return &TokenRefreshError{Err: err}
	}
	form.Set("refresh_token", refreshToken)

	resp, err := c.post(ctx, PathOAuth2, form, nil)
	if err != nil {
		logging.Error("Client", err, "Token refresh request failed")
		return &TokenRefreshError{Err: err}
	}

	access, refresh, status, err := tokenPair(resp)
	if err != nil {
		logging.Error("Client", err, "Token refresh rejected (HTTP %d)", resp.HTTPStatus)
		return &TokenRefreshError{StatusCode: resp.HTTPStatus, Status: status, Body: resp.Raw, Err: err}
	}

	c.creds.SetTokens(access, refresh)
	logging.Info("Client", "Refreshed access token")
	return nil
}

// tokenForm builds the common requesttoken fields. The client authenticates with
// its secret, or with a nonce and signature when signed token requests are on.
func (c *Client) tokenForm(ctx context.Context, grantType string) (url.Values, error) {
	form := url.Values{
		"action":     {ActionRequestToken},
		"client_id":  {c.creds.ClientID()},
		"grant_type": {grantType},
	}

	if !c.signedTokenRequests {
		form.Set("client_secret", c.creds.ClientSecret().Value())
		return form, nil
	}

	params, err := c.Sign(ctx, ActionRequestToken)
	if err != nil {
		return nil, err
	}
	form.Set("nonce", params.Nonce)
	form.Set("signature", params.Signature)
	form.Set("timestamp", strconv.FormatInt(params.Timestamp, 10))
	return form, nil
}

// tokenPair validates a requesttoken reply and extracts both tokens. It also
// returns the business status, or -1 when the envelope has none.
func tokenPair(resp *Response) (access, refresh string, status int, err error) {
	status = -1
	if s, ok := resp.Status(); ok {
		status = s
	}

	if resp.HTTPStatus != http.StatusOK {
		return "", "", status, fmt.Errorf("unexpected HTTP status %d", resp.HTTPStatus)
	}
	if status != -1 && status != StatusOK {
		return "", "", status, fmt.Errorf("provider status %d: %s", status, resp.ErrorMessage())
	}

	access = resp.stringAt("body.access_token")
	refresh = resp.stringAt("body.refresh_token")
	if access == "" || refresh == "" {
		return "", "", status, errMissingTokens
	}
	return access, refresh, status, nil
}
