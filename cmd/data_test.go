package cmd

import (
	"testing"

	"withings/internal/tokenstore"
	"withings/pkg/withings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataCommands(t *testing.T) {
	tests := []struct {
		args   []string
		action string
	}{
		{[]string{"measures", "--lastupdate", "1700000000"}, "getmeas"},
		{[]string{"activity", "--data-fields", "steps"}, "getactivity"},
		{[]string{"sleep"}, "getsummary"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			api, srv := newFakeAPI(t)
			env := newTestEnv(t, srv.URL)
			env.writeTokens(t, "fresh-access", "fresh-refresh")

			out, err := env.run(tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, `"action": "`+tt.action+`"`)
			assert.Equal(t, 1, api.count(tt.action))
			assert.Equal(t, 0, api.count("requesttoken"))
		})
	}
}

func TestDataCommand_RefreshesAndSavesTokens(t *testing.T) {
	api, srv := newFakeAPI(t)
	env := newTestEnv(t, srv.URL)
	env.writeTokens(t, "stale-access", "old-refresh")

	out, err := env.run("measures")
	require.NoError(t, err)
	assert.Contains(t, out, "getmeas")
	assert.Equal(t, 2, api.count("getmeas"))
	assert.Equal(t, 1, api.count("requesttoken"))

	tok, err := tokenstore.New(env.tokenFile).Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)
	assert.Equal(t, "fresh-refresh", tok.RefreshToken)
}

func TestDataCommand_RetriesExhausted(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.validAccess = "never-valid"
	env := newTestEnv(t, srv.URL)
	env.writeTokens(t, "stale-access", "old-refresh")

	_, err := env.run("measures")
	require.Error(t, err)

	var exhausted *withings.RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
	assert.Equal(t, 3, api.count("getmeas"))
	assert.Equal(t, 2, api.count("requesttoken"))

	// The refreshed pair is still worth keeping
	tok, err := tokenstore.New(env.tokenFile).Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)
}

func TestDataCommand_ProviderError(t *testing.T) {
	api, srv := newFakeAPI(t)
	api.dataStatus = 503
	env := newTestEnv(t, srv.URL)
	env.writeTokens(t, "fresh-access", "fresh-refresh")

	_, err := env.run("sleep")
	require.Error(t, err)

	var providerErr *withings.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, 503, providerErr.Status)
	assert.Equal(t, "maintenance", providerErr.Message)
	assert.Equal(t, ExitCodeProviderError, getExitCode(err))
	assert.Equal(t, 0, api.count("requesttoken"))
}

func TestDataCommand_NotAuthenticated(t *testing.T) {
	api, srv := newFakeAPI(t)
	env := newTestEnv(t, srv.URL)

	_, err := env.run("activity")
	require.Error(t, err)
	assert.Equal(t, ExitCodeAuthRequired, getExitCode(err))
	assert.Equal(t, 0, api.count("getactivity"))
}

func TestDataCommand_TransportError(t *testing.T) {
	_, srv := newFakeAPI(t)
	env := newTestEnv(t, srv.URL)
	env.writeTokens(t, "fresh-access", "fresh-refresh")
	srv.Close()

	_, err := env.run("measures")
	require.Error(t, err)
	assert.Equal(t, ExitCodeTransportError, getExitCode(err))
}

func TestDataCommand_TokenFileWinsOverConfigTokens(t *testing.T) {
	api, srv := newFakeAPI(t)
	env := newTestEnv(t, srv.URL)
	env.pinTokens(t, "stale-access", "old-refresh")

	// First run starts from the config pair, refreshes and saves the new pair.
	_, err := env.run("measures")
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("requesttoken"))
	assert.Equal(t, 2, api.count("getmeas"))

	// Second run must use the saved pair, not the config one.
	_, err = env.run("measures")
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("requesttoken"))
	assert.Equal(t, 3, api.count("getmeas"))

	tok, err := tokenstore.New(env.tokenFile).Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)
	assert.Equal(t, "fresh-refresh", tok.RefreshToken)
}
