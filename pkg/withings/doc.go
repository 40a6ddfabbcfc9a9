// Package withings is a client for the Withings health-data API.
//
// It covers the parts of the API that need more than a plain HTTP call:
//
//   - request signing: an HMAC-SHA256 over action, client ID, timestamp and a
//     server-issued nonce (Sign, Nonce, Signature)
//   - the token lifecycle: exchanging an authorization code and refreshing the
//     access token, always replacing both tokens together (ExchangeCode, Refresh)
//   - authenticated calls that refresh the token and retry with exponential
//     backoff when the provider reports status 401 (Do)
//
// The data services (Measures, Activity, SleepSummary) are thin call sites of Do
// and return the provider envelope untouched.
//
// # Usage
//
//	creds := withings.NewCredentials(withings.DefaultBaseURL, clientID, clientSecret,
//		withings.WithTokens(accessToken, refreshToken))
//	client := withings.NewClient(creds)
//
//	resp, err := client.Measures(ctx, withings.MeasuresQuery{LastUpdate: since})
//	if err != nil {
//		var perr *withings.ProviderError
//		if errors.As(err, &perr) {
//			// business failure, perr.Message holds the provider text
//		}
//		return err
//	}
//	groups := resp.Get("body.measuregrps")
//
// # Concurrency
//
// Calls block until they succeed, fail or run out of attempts. Credentials
// keeps the token pair consistent, and concurrent refreshes on one Client share
// a single request. Callers that share Credentials across Clients must serialize
// their calls themselves.
//
// # Storage
//
// The client never persists tokens. Read Credentials.Tokens after ExchangeCode or
// any call that may have refreshed, and store them as the application sees fit.
package withings
