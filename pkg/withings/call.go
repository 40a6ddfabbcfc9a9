package withings

import (
	"context"
	"net/url"
	"time"

	"withings/pkg/logging"
	pkgstrings "withings/pkg/strings"

	"github.com/google/uuid"
)

// Call describes one authenticated API request.
type Call struct {
	// Path is appended to the base URL, e.g. PathMeasure.
	Path string
	// Action is sent as the "action" form field.
	Action string
	// Params are sent alongside the action. They are not modified.
	Params url.Values
}

func (call Call) form() url.Values {
	form := url.Values{}
	for k, v := range call.Params {
		form[k] = append([]string(nil), v...)
	}
	form.Set("action", call.Action)
	return form
}

// Do performs an authenticated call and returns the reply once the provider
// reports success.
//
// Failure handling:
//   - network failures and non-2xx HTTP statuses return TransportError at once
//   - business status 401 refreshes the token, sleeps, doubles the sleep and
//     tries again; reaching the attempt limit returns RetriesExhaustedError and a
//     failed refresh returns its TokenRefreshError at once
//   - any other business status returns ProviderError
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	callID := uuid.NewString()
	form := call.form()
	backoff := c.backoffUnit
	attempts := 0
	start := time.Now()

	for {
		resp, err := c.post(ctx, call.Path, form, c.authHeaders())
		if err != nil {
			logging.Error("Client", err, "[%s] %s request failed", callID, call.Action)
			return nil, err
		}

		if !resp.HTTPOK() {
			logging.Error("Client", nil, "[%s] %s unexpected HTTP status %d: %s", callID, call.Action, resp.HTTPStatus,
				pkgstrings.Snippet(resp.Raw, pkgstrings.DefaultSnippetMaxLen))
			return nil, &TransportError{URL: c.creds.BaseURL() + call.Path, StatusCode: resp.HTTPStatus, Body: resp.Raw}
		}

		status, ok := resp.Status()
		if !ok {
			return nil, &ProviderError{Action: call.Action, Status: -1, Message: "response has no status field"}
		}

		switch status {
		case StatusOK:
			logging.Debug("Client", "[%s] %s succeeded after %d attempt(s) in %s", callID, call.Action, attempts+1, logging.Since(start))
			return resp, nil

		case StatusUnauthorized:
			attempts++
			if attempts >= c.maxAttempts {
				logging.Error("Client", nil, "[%s] %s still unauthorized after %d attempts", callID, call.Action, attempts)
				return nil, &RetriesExhaustedError{Action: call.Action, Attempts: attempts}
			}

			logging.Warn("Client", "[%s] %s unauthorized, refreshing access token (attempt %d/%d)", callID, call.Action, attempts, c.maxAttempts)
			if err := c.Refresh(ctx); err != nil {
				return nil, err
			}
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2

		default:
			perr := &ProviderError{Action: call.Action, Status: status, Message: resp.ErrorMessage()}
			logging.Error("Client", perr, "[%s] %s rejected by provider", callID, call.Action)
			return nil, perr
		}
	}
}
