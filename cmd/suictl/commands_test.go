package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullnode answers JSON-RPC calls from a fixed method->result table and
// records the params of the last call.
func fullnode(t *testing.T, results map[string]any) (*httptest.Server, *[]json.RawMessage) {
	t.Helper()
	var last []json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     string            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		last = req.Params
		result, ok := results[req.Method]
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := RootApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"suictl"}, args...))
	return out.String(), err
}

func TestChainID(t *testing.T) {
	srv, _ := fullnode(t, map[string]any{"sui_getChainIdentifier": "4c78adac"})

	out, err := run(t, "--rpc", srv.URL, "chain-id")
	require.NoError(t, err)
	assert.Equal(t, "4c78adac\n", out)

	out, err = run(t, "--rpc", srv.URL, "--json", "chain-id")
	require.NoError(t, err)
	assert.JSONEq(t, `{"chainId":"4c78adac"}`, out)
}

func TestCheckpointDefaultsToLatest(t *testing.T) {
	srv, params := fullnode(t, map[string]any{
		"sui_getLatestCheckpointSequenceNumber": "1024",
		"sui_getCheckpoint": map[string]any{
			"epoch":                    "7",
			"sequenceNumber":           "1024",
			"digest":                   "9Xh2",
			"networkTotalTransactions": "5000",
			"timestampMs":              "1700000000000",
			"transactions":             []string{"tx1"},
		},
	})

	out, err := run(t, "--rpc", srv.URL, "checkpoint")
	require.NoError(t, err)
	assert.Equal(t, "checkpoint 1024 epoch 7 digest 9Xh2 txs 1 at 2023-11-14T22:13:20Z\n", out)
	require.Len(t, *params, 1)
	assert.JSONEq(t, `"1024"`, string((*params)[0]))
}

func TestCheckpointRejectsBadSequence(t *testing.T) {
	_, err := run(t, "--rpc", "http://127.0.0.1:1", "checkpoint", "latest")
	assert.EqualError(t, err, `invalid checkpoint sequence number "latest"`)
}

func TestGasPrice(t *testing.T) {
	srv, _ := fullnode(t, map[string]any{"suix_getReferenceGasPrice": "750"})

	out, err := run(t, "--rpc", srv.URL, "gas-price")
	require.NoError(t, err)
	assert.Equal(t, "750\n", out)
}

func TestEventsByType(t *testing.T) {
	srv, params := fullnode(t, map[string]any{
		"suix_queryEvents": map[string]any{
			"data": []map[string]any{{
				"id":     map[string]string{"txDigest": "Dg1", "eventSeq": "2"},
				"sender": "0x1",
				"type":   "0xabc::events::New",
			}},
			"hasNextPage": false,
		},
	})

	out, err := run(t, "--rpc", srv.URL, "events", "--type", "0xabc::events::New", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, "Dg1:2 0xabc::events::New 0x1\n", out)

	require.Len(t, *params, 4)
	assert.JSONEq(t, `{"MoveEventType":"0xabc::events::New"}`, string((*params)[0]))
	assert.JSONEq(t, `null`, string((*params)[1]))
	assert.JSONEq(t, `5`, string((*params)[2]))
	assert.JSONEq(t, `true`, string((*params)[3]))
}

func TestEventsByModuleNormalizesPackage(t *testing.T) {
	srv, params := fullnode(t, map[string]any{
		"suix_queryEvents": map[string]any{"data": []any{}, "hasNextPage": false},
	})

	_, err := run(t, "--rpc", srv.URL, "events", "--package", "0xABC")
	require.NoError(t, err)
	require.NotEmpty(t, *params)
	assert.JSONEq(t,
		`{"MoveEventModule":{"package":"0x0000000000000000000000000000000000000000000000000000000000000abc","module":"events"}}`,
		string((*params)[0]))
}

func TestEventsRequiresFilter(t *testing.T) {
	_, err := run(t, "--rpc", "http://127.0.0.1:1", "events")
	assert.ErrorIs(t, err, errNoEventFilter)
}

func TestUnknownNetwork(t *testing.T) {
	_, err := run(t, "--network", "betanet", "chain-id")
	assert.Error(t, err)
}

func TestAddressRejectsHardenedIndex(t *testing.T) {
	_, err := run(t, "address", "--xpub", "xpub-does-not-matter", "--index", "2147483648")
	assert.EqualError(t, err, "index 2147483648 is hardened")
}
