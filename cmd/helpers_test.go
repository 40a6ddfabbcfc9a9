package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal stand-in for the Withings API.
type fakeAPI struct {
	mu sync.Mutex
	// validAccess is the only access token data calls accept.
	validAccess string
	// dataStatus, when non-zero, is returned by data calls with a valid token.
	dataStatus int
	calls      map[string]int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{validAccess: "fresh-access", calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) count(action string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[action]
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	action := r.PostForm.Get("action")

	a.mu.Lock()
	a.calls[action]++
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch action {
	case "getnonce":
		fmt.Fprint(w, `{"status":0,"body":{"nonce":"nonce-1"}}`)
	case "requesttoken":
		if r.PostForm.Get("grant_type") == "authorization_code" && r.PostForm.Get("code") != "good-code" {
			fmt.Fprint(w, `{"status":503,"error":"Invalid code"}`)
			return
		}
		fmt.Fprint(w, `{"status":0,"body":{"userid":"42","access_token":"fresh-access","refresh_token":"fresh-refresh","expires_in":10800}}`)
	case "getmeas", "getactivity", "getsummary":
		if r.Header.Get("Authorization") != "Bearer "+a.validAccess {
			fmt.Fprint(w, `{"status":401,"error":"invalid_token"}`)
			return
		}
		if a.dataStatus != 0 {
			fmt.Fprintf(w, `{"status":%d,"error":"maintenance"}`, a.dataStatus)
			return
		}
		fmt.Fprintf(w, `{"status":0,"body":{"action":%q,"more":false}}`, action)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

// testEnv is a config file pointing at a fake API plus its token file.
type testEnv struct {
	configPath string
	tokenFile  string
}

func newTestEnv(t *testing.T, baseURL string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		configPath: filepath.Join(dir, "config.yaml"),
		tokenFile:  filepath.Join(dir, "tokens.json"),
	}
	content := fmt.Sprintf(`baseURL: %s
clientID: test-client
clientSecret: test-secret
redirectURI: https://example.com/callback
tokenFile: %s
rateLimit: 0
backoffUnit: 1ms
log:
  level: error
`, baseURL, env.tokenFile)
	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0600))
	return env
}

// writeTokens seeds the token file.
func (e testEnv) writeTokens(t *testing.T, access, refresh string) {
	t.Helper()
	content := fmt.Sprintf(`{"access_token":%q,"refresh_token":%q,"user_id":"42","updated_at":"2024-01-01T00:00:00Z"}`, access, refresh)
	require.NoError(t, os.WriteFile(e.tokenFile, []byte(content), 0600))
}

// pinTokens adds a token pair to the config file.
func (e testEnv) pinTokens(t *testing.T, access, refresh string) {
	t.Helper()
	f, err := os.OpenFile(e.configPath, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	defer f.Close()
	_, err = fmt.Fprintf(f, "accessToken: %s\nrefreshToken: %s\n", access, refresh)
	require.NoError(t, err)
}

// run executes the CLI with the env's config and returns stdout.
func (e testEnv) run(args ...string) (string, error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.Execute()
	return out.String(), err
}
