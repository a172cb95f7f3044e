package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func withStatePath(t *testing.T) {
	prev := statePath
	statePath = filepath.Join(t.TempDir(), "cli", "state.json")
	t.Cleanup(func() { statePath = prev })
}

func TestState(t *testing.T) {
	withStatePath(t)

	_, err := getState()
	require.Error(t, err)

	require.NoError(t, setState(map[string]string{"rpcserver": "localhost:9070"}))
	require.NoError(t, setState(map[string]string{"foo": "bar"}))

	state, err := getState()
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"rpcserver": "localhost:9070",
		"foo":       "bar",
	}, state)

	client, err := getClient()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9070", client.baseURL)
}

func TestClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/status":
			json.NewEncoder(w).Encode(map[string]interface{}{"logged_in": true})
		case "/v1/quote":
			body := map[string]string{}
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "partner failure " + body["currency"],
				"code":  "INVALID_REQUEST",
			})
		case "/v1/checkout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL + "/")

	res := map[string]interface{}{}
	require.NoError(t, c.get("/v1/status", nil, &res))
	require.Equal(t, true, res["logged_in"])

	err := c.post("/v1/quote", map[string]string{"currency": "EUR"}, nil)
	require.Error(t, err)
	apiErr, ok := err.(*apiError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Equal(t, "partner failure EUR (INVALID_REQUEST)", apiErr.Error())

	require.NoError(t, c.delete("/v1/checkout"))

	err = c.get("/v1/unknown", nil, nil)
	require.EqualError(t, err, "Not Found")
}
