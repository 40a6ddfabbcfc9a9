package withings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	resp := &Response{HTTPStatus: 200, Raw: []byte(`{"status":0,"body":{"nonce":"n","list":[1,2]}}`)}

	status, found := resp.Status()
	assert.True(t, found)
	assert.Equal(t, StatusOK, status)
	assert.True(t, resp.HTTPOK())
	assert.Equal(t, "n", resp.stringAt("body.nonce"))
	assert.Equal(t, int64(2), resp.Body().Get("list.#").Int())
	assert.Equal(t, "Unknown error", resp.ErrorMessage())

	var envelope struct {
		Status int            `json:"status"`
		Body   map[string]any `json:"body"`
	}
	require.NoError(t, resp.Decode(&envelope))
	assert.Equal(t, "n", envelope.Body["nonce"])
}

func TestResponse_StatusMustBeNumeric(t *testing.T) {
	resp := &Response{HTTPStatus: 200, Raw: []byte(`{"status":"0"}`)}
	_, found := resp.Status()
	assert.False(t, found)

	resp = &Response{HTTPStatus: 200, Raw: []byte(`not json`)}
	_, found = resp.Status()
	assert.False(t, found)
	assert.Error(t, resp.Decode(&struct{}{}))
}
