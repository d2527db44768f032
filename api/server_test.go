package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duskdawn/mintd/mint"
	"github.com/duskdawn/mintd/store"
)

const testAdminKey = "f00f00f00f00"

func TestServerMintFlow(t *testing.T) {
	require := require.New(t)
	ts := testServer(t)

	trace := postJSON(t, ts, "/admin/jump", map[string]interface{}{
		"key":   testAdminKey,
		"phase": "public",
		"cap":   4,
		"price": "0.1",
	})["trace_id"].(string)
	waitSettled(t, ts, trace)

	wallet := "0x00000000000000000000000000000000dadd0001"
	trace = postJSON(t, ts, "/mint/public", map[string]interface{}{
		"wallet":  wallet,
		"origin":  wallet,
		"payment": "0.1",
	})["trace_id"].(string)
	r := waitSettled(t, ts, trace)
	require.Equal("settled", r["state"])

	state := getJSON(t, ts, "/state", http.StatusOK)
	require.Equal("public", state["phase"])
	require.Equal(float64(1), state["issued"])
	require.Equal("0.1", state["vault"])

	uri := getJSON(t, ts, "/tokens/1/uri", http.StatusOK)
	require.Contains([]interface{}{"ipfs://dawn", "ipfs://dusk"}, uri["uri"])
	getJSON(t, ts, "/tokens/9/uri", http.StatusNotFound)
}

func TestServerRejections(t *testing.T) {
	require := require.New(t)
	ts := testServer(t)

	body, _ := json.Marshal(map[string]interface{}{
		"wallet":  "not-an-address",
		"payment": "0.1",
	})
	resp, err := http.Post(ts.URL+"/mint/raffle", "application/json", bytes.NewReader(body))
	require.Nil(err)
	defer resp.Body.Close()
	require.Equal(http.StatusBadRequest, resp.StatusCode)

	// a queued mint in the wrong phase settles as dropped, not as an http error
	wallet := "0x00000000000000000000000000000000dadd0002"
	trace := postJSON(t, ts, "/mint/public", map[string]interface{}{
		"wallet":  wallet,
		"origin":  wallet,
		"payment": "0.1",
	})["trace_id"].(string)
	r := waitSettled(t, ts, trace)
	require.Equal("dropped", r["state"])
	require.Equal(mint.ReasonWrongPhase, r["reason"])

	resp, err = http.Get(ts.URL + "/requests/unknown-trace")
	require.Nil(err)
	defer resp.Body.Close()
	require.Equal(http.StatusNotFound, resp.StatusCode)
}

func testServer(t *testing.T) *httptest.Server {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := store.OpenBadger(ctx, t.TempDir())
	require.Nil(t, err)
	t.Cleanup(func() { db.Close() })

	conf := &mint.Configuration{}
	conf.Admin.Key = testAdminKey
	conf.Mint.Cap = 8
	conf.Mint.DawnURI = "ipfs://dawn"
	conf.Mint.DuskURI = "ipfs://dusk"
	engine, err := mint.BuildEngine(db, conf)
	require.Nil(t, err)
	go engine.Run(ctx)

	srv := httptest.NewServer(NewServer(engine, db, conf).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body map[string]interface{}) map[string]interface{} {
	b, err := json.Marshal(body)
	require.Nil(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	require.Nil(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.Nil(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func getJSON(t *testing.T, ts *httptest.Server, path string, status int) map[string]interface{} {
	resp, err := http.Get(ts.URL + path)
	require.Nil(t, err)
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode)
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return out
}

func waitSettled(t *testing.T, ts *httptest.Server, trace string) map[string]interface{} {
	var out map[string]interface{}
	require.Eventually(t, func() bool {
		out = getJSON(t, ts, "/requests/"+trace, http.StatusOK)
		return out["state"] != "pending"
	}, 5*time.Second, 10*time.Millisecond)
	return out
}
