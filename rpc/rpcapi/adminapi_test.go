package rpcapi

import (
	"crypto/ecdsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/admin"
	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/mongodb"
	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/router/bridge"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

func setupAdmin(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	cfg := testutil.LoadConfig(t)
	cfg.Server = &params.ServerConfig{
		Admins: []string{crypto.PubkeyToAddress(key.PublicKey).Hex()},
	}
	s, err := bridge.NewServices(cfg, &bridge.Deps{
		Provider: &testutil.FakeBridgeProvider{FeeBps: 10},
		Caller:   testutil.NewFakeCaller(),
	})
	require.NoError(t, err)
	bridge.SetServices(s)
	t.Cleanup(func() { bridge.SetServices(nil) })
	return key
}

func adminCall(t *testing.T, key *ecdsa.PrivateKey, method string, params ...string) (string, error) {
	rawCall, err := admin.SignWithKey(key, &admin.CallArgs{
		Method:    method,
		Params:    params,
		Timestamp: time.Now().Unix(),
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/rpc", nil)
	var result string
	err = new(RouterSwapAPI).AdminCall(req, &rawCall, &result)
	return result, err
}

func TestAdminCall(t *testing.T) {
	key := setupAdmin(t)

	_, err := adminCall(t, key, "unknown")
	require.ErrorContains(t, err, "unknown admin method")

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = adminCall(t, other, reloadGatewaysCmd)
	require.ErrorContains(t, err, "is not admin")

	_, err = adminCall(t, key, reloadGatewaysCmd, "a.toml", "b.toml")
	require.ErrorContains(t, err, "wrong number of params")

	_, err = adminCall(t, key, recordSponsorshipCmd, "0x1234", "10")
	require.ErrorIs(t, err, tokens.ErrInvalidParam)

	user := crypto.PubkeyToAddress(key.PublicKey).Hex()
	_, err = adminCall(t, key, recordSponsorshipCmd, user, "-1")
	require.ErrorIs(t, err, tokens.ErrInvalidParam)

	_, err = adminCall(t, key, recordSponsorshipCmd, user, "10", "maybe")
	require.ErrorIs(t, err, tokens.ErrInvalidParam)

	_, err = adminCall(t, key, recordSponsorshipCmd, user, "10", "true")
	require.ErrorIs(t, err, mongodb.ErrNotInitialized)

	rawCall := "0x1234"
	var result string
	err = new(RouterSwapAPI).AdminCall(httptest.NewRequest(http.MethodPost, "/rpc", nil), &rawCall, &result)
	require.Error(t, err)
}

func TestAdminCallWithoutAdmins(t *testing.T) {
	bridge.SetServices(nil)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = adminCall(t, key, reloadGatewaysCmd)
	require.ErrorContains(t, err, "no admin is configed")
}
