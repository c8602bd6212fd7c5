package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/internal/testutil"
	"github.com/anyswap/CrossSwap-Router/tokens"
	"github.com/anyswap/CrossSwap-Router/tokens/across"
	"github.com/anyswap/CrossSwap-Router/tokens/eth"
	"github.com/anyswap/CrossSwap-Router/tokens/sponsored"
)

type fakeHeights map[string]uint64

func (h fakeHeights) GetLatestBlockNumberOf(_ context.Context, url string) (uint64, error) {
	height, exist := h[url]
	if !exist {
		return 0, errors.New("unreachable")
	}
	return height, nil
}

func TestAdjustGatewayOrder(t *testing.T) {
	heights := fakeHeights{
		"http://a": 100,
		"http://b": 105,
		"http://d": 105,
	}
	ordered := AdjustGatewayOrder(context.Background(), heights, []string{"http://a", "http://b", "http://c", "http://d"})
	require.Equal(t, []string{"http://b", "http://d", "http://a", "http://c"}, ordered)
}

func TestConvertGateways(t *testing.T) {
	gateways, err := convertGateways(map[string][]string{"1": {"http://a"}, "10": {"http://b"}})
	require.NoError(t, err)
	require.Equal(t, map[uint64][]string{1: {"http://a"}, 10: {"http://b"}}, gateways)

	_, err = convertGateways(map[string][]string{"eth": {"http://a"}})
	require.Error(t, err)
}

func TestNewServices(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	caller := eth.NewCaller(map[uint64][]string{1: {"http://a"}})
	s, err := NewServices(cfg, &Deps{
		Provider: &testutil.FakeBridgeProvider{FeeBps: 10},
		Caller:   caller,
	})
	require.NoError(t, err)
	require.Equal(t, across.Name, s.Registry.DefaultStrategy().Name())
	require.Same(t, caller, s.Caller)
	require.NotNil(t, s.Composer)
	require.NotNil(t, s.Gasless)

	_, exist := s.Registry.GetStrategy(sponsored.SponsoredIntentName)
	require.True(t, exist)

	var strategy tokens.BridgeStrategy
	strategy, exist = s.Registry.GetStrategy(across.Name)
	require.True(t, exist)
	require.True(t, strategy.Capabilities().SupportsGasless)
}

func TestReloadGatewayConfig(t *testing.T) {
	cfg := testutil.LoadConfig(t)
	caller := eth.NewCaller(map[uint64][]string{1: {"http://old"}})
	s, err := NewServices(cfg, &Deps{
		Provider: &testutil.FakeBridgeProvider{},
		Caller:   caller,
	})
	require.NoError(t, err)
	SetServices(s)
	defer SetServices(nil)

	file := filepath.Join(t.TempDir(), "gateways.toml")
	content := "[Gateways]\n1 = [\"http://new1\", \"http://new2\"]\n424242 = [\"http://unknown\"]\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	require.NoError(t, ReloadGatewayConfig(file))
	require.Equal(t, []string{"http://new1", "http://new2"}, caller.GetGateways(1))
	require.Empty(t, caller.GetGateways(424242))

	require.Error(t, ReloadGatewayConfig(filepath.Join(t.TempDir(), "absent.toml")))
}
