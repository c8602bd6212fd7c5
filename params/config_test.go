package params

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T) *RouterConfig {
	t.Helper()
	config := &RouterConfig{}
	_, err := toml.DecodeFile("testdata/config.toml", config)
	require.NoError(t, err)
	require.NoError(t, config.CheckConfig(true))
	return config
}

func TestCheckConfig(t *testing.T) {
	config := loadTestConfig(t)

	require.Equal(t, "across", config.Routing.DefaultStrategy)
	require.Equal(t, "0.5", config.Routing.GetOriginSwapMarkup().String())
	require.Equal(t, 2, config.Routing.GetA2AChunkSize())
	require.True(t, config.Routing.IsPreferredBridgeToken("usdt"))

	mintBurn := config.Routing.MintBurn
	require.Equal(t, "0.8", mintBurn.GetUtilizationThreshold().String())
	require.Equal(t, "cctp", mintBurn.GetMintBurnStrategy("usdc"))
	require.True(t, mintBurn.IsFastSettlingChain(8453))
	require.False(t, mintBurn.IsFastSettlingChain(1))

	require.True(t, config.Sponsorship.IsEligiblePair("USDC", "USDH"))
	require.False(t, config.Sponsorship.IsEligiblePair("USDH", "USDC"))
}

func TestTokenLookup(t *testing.T) {
	config := loadTestConfig(t)

	addr, decimals, exist := config.GetTokenAddress(1337, "USDC")
	require.True(t, exist)
	require.Equal(t, uint8(8), decimals)
	require.Equal(t, "0x2000000000000000000000000000000000000000", addr)

	_, decimals, exist = config.GetTokenAddress(1, "usdc")
	require.True(t, exist)
	require.Equal(t, uint8(6), decimals)

	_, _, exist = config.GetTokenAddress(1337, "WETH")
	require.False(t, exist)

	require.Equal(t, "WETH", config.GetTokenSymbol(10, "0x4200000000000000000000000000000000000006"))
}

func TestRouteLookup(t *testing.T) {
	config := loadTestConfig(t)

	require.True(t, config.HasRoute(1, 10, "usdc", "USDC"))
	require.False(t, config.HasRoute(10, 8453, "USDC", "USDC"))
	require.True(t, config.IsInputBridgeable(8453, 10, "DAI"))
	require.False(t, config.IsInputBridgeable(8453, 10, "WETH"))
	require.False(t, config.IsOutputBridgeable(8453, 10, "USDC"))
	require.Len(t, config.GetRoutesBetween(8453, 10), 2)
}

func TestCheckConfigErrors(t *testing.T) {
	config := loadTestConfig(t)
	config.Identifier = RouterSwapPrefixID
	require.Error(t, config.CheckConfig(false))

	config = loadTestConfig(t)
	config.Routing.MintBurn.UtilizationThreshold = "1.5"
	require.Error(t, config.CheckConfig(false))

	config = loadTestConfig(t)
	config.Routes = append(config.Routes, &RouteConfig{
		OriginChainID: 1,
		DestChainID:   1337,
		InputSymbol:   "WETH",
		OutputSymbol:  "WETH",
	})
	require.Error(t, config.CheckConfig(false))
}
