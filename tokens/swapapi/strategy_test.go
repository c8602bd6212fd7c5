package swapapi

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/CrossSwap-Router/params"
	"github.com/anyswap/CrossSwap-Router/tokens"
)

var (
	wethBase = tokens.Token{Address: common.HexToAddress("0x4200000000000000000000000000000000000006"), ChainID: 8453, Symbol: "WETH", Decimals: 18}
	usdcBase = tokens.Token{Address: common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), ChainID: 8453, Symbol: "USDC", Decimals: 6}
)

func newSwap() *tokens.Swap {
	return &tokens.Swap{
		ChainID:   8453,
		TokenIn:   wethBase,
		TokenOut:  usdcBase,
		Amount:    big.NewInt(1e18),
		Depositor: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Recipient: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Slippage:  tokens.NewSlippage(1),
	}
}

func newTestStrategy(t *testing.T, handler http.HandlerFunc, sources []string) (*Strategy, func()) {
	server := httptest.NewServer(handler)
	cfg := &params.SwapAPIConfig{
		Name:     "test",
		BaseURL:  server.URL,
		APIKey:   "secret",
		ChainIDs: []uint64{8453},
		Routers:  map[string]string{"8453": "0x6fF5693b99212Da76ad316178A184AB56D299b43"},
		Sources:  sources,
	}
	return NewStrategy(cfg, &params.RouterConfig{}, 5), server.Close
}

func TestFetch(t *testing.T) {
	strategy, closer := newTestStrategy(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		q := r.URL.Query()
		require.Equal(t, "exactInput", q.Get("tradeType"))
		require.Equal(t, "0.5", q.Get("slippageTolerance"))
		require.Equal(t, "curve", q.Get("sources"))
		_, _ = w.Write([]byte(`{
			"maximumAmountIn":"1000000000000000000",
			"minAmountOut":"2970000000",
			"expectedAmountIn":"1000000000000000000",
			"expectedAmountOut":"3000000000",
			"sources":["curve"],
			"tx":{"to":"0x6fF5693b99212Da76ad316178A184AB56D299b43","data":"0x3593564c","value":"0"}
		}`))
	}, []string{"uniswap_v3", "curve"})
	defer closer()

	quote, err := strategy.Fetch(context.Background(), newSwap(), tokens.ExactInput, &tokens.QuoteFetchOpts{
		SplitSlippage: true,
		Sources:       &tokens.SourcesFilter{Include: []string{"Curve", "unknown"}},
	})
	require.NoError(t, err)
	require.Equal(t, "2970000000", quote.MinAmountOut.String())
	require.Equal(t, "3000000000", quote.ExpectedAmountOut.String())
	require.Equal(t, "0.5", quote.SlippageTolerance.String())
	require.Len(t, quote.SwapTxns, 1)
	require.Equal(t, "test", quote.SwapProvider.Name)
	require.Equal(t, []string{"curve"}, quote.SwapProvider.Sources)
}

func TestFetchErrors(t *testing.T) {
	strategy, closer := newTestStrategy(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("amount") {
		case "1":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"NO_LIQUIDITY"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}, nil)
	defer closer()

	swap := newSwap()
	swap.Amount = big.NewInt(1)
	_, err := strategy.Fetch(context.Background(), swap, tokens.ExactInput, nil)
	require.ErrorIs(t, err, tokens.ErrSwapLiquidityUnavailable)

	swap.Amount = big.NewInt(2)
	_, err = strategy.Fetch(context.Background(), swap, tokens.ExactInput, nil)
	require.ErrorIs(t, err, tokens.ErrUpstreamUnavailable)

	_, err = strategy.Fetch(context.Background(), swap, tokens.ExactInput, &tokens.QuoteFetchOpts{
		Sources: &tokens.SourcesFilter{Exclude: []string{"curve"}},
	})
	require.ErrorIs(t, err, tokens.ErrSourcesNotSupported)

	_, err = strategy.Fetch(context.Background(), swap, tokens.ExactInput, &tokens.QuoteFetchOpts{SellEntireBalance: true})
	require.ErrorIs(t, err, tokens.ErrPreconditionFailed)

	swap.ChainID = 1
	_, err = strategy.Fetch(context.Background(), swap, tokens.ExactInput, nil)
	require.ErrorIs(t, err, tokens.ErrRouteNotSupported)
}

func TestGetSources(t *testing.T) {
	strategy := NewStrategy(&params.SwapAPIConfig{Name: "lifi", Sources: []string{"uniswap_v3", "curve", "balancer"}}, &params.RouterConfig{}, 0)

	sources, err := strategy.GetSources(1, nil)
	require.NoError(t, err)
	require.Nil(t, sources)

	sources, err = strategy.GetSources(1, &tokens.SourcesFilter{Exclude: []string{"CURVE"}})
	require.NoError(t, err)
	require.Equal(t, []string{"uniswap_v3", "balancer"}, sources)

	_, err = strategy.GetSources(1, &tokens.SourcesFilter{Include: []string{"sushiswap"}})
	require.ErrorIs(t, err, tokens.ErrSourcesNotSupported)
}
