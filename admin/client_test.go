package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	_, err := NewClient("", time.Second)
	require.Error(t, err)
	_, err = NewClient("not a url", time.Second)
	require.Error(t, err)

	c, err := NewClient("http://127.0.0.1:11556/rpc", 0)
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, c.timeout)
}

func TestClientCall(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	SetPrivateKey(key)
	defer func() { keyWrapper = nil }()

	var gotMethod string
	var gotArgs *CallArgs
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int      `json:"id"`
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Params) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		gotMethod = req.Method
		call, err := DecodeCall(req.Params[0])
		if err == nil {
			_, gotArgs, err = VerifyCall(call, time.Now())
		}
		if err != nil {
			fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"error":{"code":-32000,"message":%q}}`, req.ID, err.Error())
			return
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"Success"}`, req.ID)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second)
	require.NoError(t, err)
	result, err := c.Call(context.Background(), "reloadgateways", []string{"gateways.toml"})
	require.NoError(t, err)
	require.Equal(t, "Success", result)
	require.Equal(t, "swap.AdminCall", gotMethod)
	require.Equal(t, "reloadgateways", gotArgs.Method)
	require.Equal(t, []string{"gateways.toml"}, gotArgs.Params)
}
