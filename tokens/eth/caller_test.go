package eth

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/tokens"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

func newEthCallServer(t *testing.T, result []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		if req.Method != "eth_call" {
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32601,"message":"method not found"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":"` + hexutil.Encode(result) + `"}`))
	}))
}

func TestCallerFallback(t *testing.T) {
	word := common.LeftPadBytes(big.NewInt(42).Bytes(), 32)
	good := newEthCallServer(t, word)
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	caller := NewCaller(map[uint64][]string{1: {bad.URL, good.URL}})
	defer caller.Close()

	reader := NewContractReader(caller)
	spokePool := common.HexToAddress("0x5c7BCd6E7De5423a257D81B442095A1a6ced35C5")
	depositID, err := reader.GetUnsafeDepositID(context.Background(), 1, spokePool, spokePool, spokePool, big.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, "42", depositID.String())

	_, err = caller.CallContract(context.Background(), 10, spokePool, nil)
	require.ErrorIs(t, err, tokens.ErrRPCQueryError)

	caller.SetGateways(1, []string{bad.URL})
	_, err = caller.CallContract(context.Background(), 1, spokePool, nil)
	require.ErrorIs(t, err, tokens.ErrUpstreamTransient)
}
